// Package match implements the size-bucketed FIFO matchmaking queue. Teams
// wait in the bucket for their exact size and are paired strictly in arrival
// order; there is no skill- or wait-time-based reordering.
package match

import (
	"log/slog"

	"github.com/aurora-0025/onam-game/internal/game/team"
	"github.com/aurora-0025/onam-game/internal/protocol"
)

// Sender delivers a message to a single connected player.
type Sender interface {
	Send(playerID string, msg protocol.Message)
}

// Factory is handed two equally-sized teams the moment they are matched. It
// is expected to snapshot them into a game session; the queue holds no
// reference to either team afterwards.
type Factory func(a, b *team.Team)

// Queue maps team size to the teams waiting at that size. All methods run on
// the hub goroutine; matching is attempted synchronously from Enqueue and
// never from a timer, so no two match attempts for a bucket can overlap.
type Queue struct {
	sender  Sender
	factory Factory
	log     *slog.Logger

	buckets map[int][]*team.Team
}

// NewQueue builds an empty queue feeding matched pairs into factory.
func NewQueue(sender Sender, factory Factory, log *slog.Logger) *Queue {
	return &Queue{
		sender:  sender,
		factory: factory,
		log:     log,
		buckets: make(map[int][]*team.Team),
	}
}

// Enqueue appends t to the bucket for its current size and immediately tries
// to form a match there. Enqueueing an already-queued team is a no-op.
func (q *Queue) Enqueue(t *team.Team) {
	size := t.Size()
	for _, waiting := range q.buckets[size] {
		if waiting == t {
			return
		}
	}

	q.buckets[size] = append(q.buckets[size], t)
	t.Queued = true
	q.log.Info("team queued", "team", t.ID, "size", size, "bucket", len(q.buckets[size]))

	queued := protocol.New(protocol.EvtTeamMatchQueued, protocol.MatchQueued{TeamID: t.ID, Size: size})
	q.broadcast(t, queued)

	q.attemptMatch(size)
}

// Dequeue removes t from its bucket, if queued, and tells its members why.
func (q *Queue) Dequeue(t *team.Team, reason string) {
	if !t.Queued {
		return
	}
	size := t.Size()
	bucket := q.buckets[size]
	for i, waiting := range bucket {
		if waiting == t {
			q.buckets[size] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(q.buckets[size]) == 0 {
		delete(q.buckets, size)
	}
	t.Queued = false

	q.log.Info("team dequeued", "team", t.ID, "reason", reason)
	cancelled := protocol.New(protocol.EvtTeamMatchCancelled, protocol.MatchCancelled{TeamID: t.ID, Reason: reason})
	q.broadcast(t, cancelled)
}

// Waiting returns how many teams sit in the bucket for size.
func (q *Queue) Waiting(size int) int {
	return len(q.buckets[size])
}

// attemptMatch pops pairs off the front of the bucket while at least two
// teams wait there, handing each pair to the session factory.
func (q *Queue) attemptMatch(size int) {
	for len(q.buckets[size]) >= 2 {
		bucket := q.buckets[size]
		a, b := bucket[0], bucket[1]
		q.buckets[size] = bucket[2:]
		if len(q.buckets[size]) == 0 {
			delete(q.buckets, size)
		}
		a.Queued = false
		b.Queued = false

		q.log.Info("match found", "size", size, "teamA", a.ID, "teamB", b.ID)
		q.factory(a, b)
	}
}

func (q *Queue) broadcast(t *team.Team, msg protocol.Message) {
	for _, id := range t.MemberIDs() {
		q.sender.Send(id, msg)
	}
}
