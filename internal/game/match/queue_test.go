package match_test

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-0025/onam-game/internal/game/match"
	"github.com/aurora-0025/onam-game/internal/game/team"
	"github.com/aurora-0025/onam-game/internal/protocol"
)

type recorder struct {
	sent map[string][]protocol.Message
}

func newRecorder() *recorder {
	return &recorder{sent: make(map[string][]protocol.Message)}
}

func (r *recorder) Send(playerID string, msg protocol.Message) {
	r.sent[playerID] = append(r.sent[playerID], msg)
}

type pair struct{ a, b *team.Team }

func newTestQueue() (*match.Queue, *recorder, *[]pair) {
	rec := newRecorder()
	matched := &[]pair{}
	q := match.NewQueue(rec, func(a, b *team.Team) {
		*matched = append(*matched, pair{a, b})
	}, slog.Default())
	return q, rec, matched
}

func makeTeam(id string, size int) *team.Team {
	t := &team.Team{ID: id, Name: id}
	for i := 0; i < size; i++ {
		pid := id + "-" + string(rune('a'+i))
		t.Members = append(t.Members, &team.Player{ID: pid, Name: pid})
	}
	t.LeaderID = t.Members[0].ID
	return t
}

func TestEnqueueBroadcastsAndWaits(t *testing.T) {
	q, rec, matched := newTestQueue()
	red := makeTeam("red", 2)

	q.Enqueue(red)

	assert.True(t, red.Queued)
	assert.Equal(t, 1, q.Waiting(2))
	assert.Empty(t, *matched)

	for _, p := range red.Members {
		require.Len(t, rec.sent[p.ID], 1)
		msg := rec.sent[p.ID][0]
		assert.Equal(t, protocol.EvtTeamMatchQueued, msg.Type)
		var payload protocol.MatchQueued
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "red", payload.TeamID)
		assert.Equal(t, 2, payload.Size)
	}
}

func TestEnqueueIsIdempotent(t *testing.T) {
	q, rec, _ := newTestQueue()
	red := makeTeam("red", 1)

	q.Enqueue(red)
	q.Enqueue(red)

	assert.Equal(t, 1, q.Waiting(1))
	assert.Len(t, rec.sent["red-a"], 1, "no second queued broadcast")
}

func TestFIFOPairing(t *testing.T) {
	q, _, matched := newTestQueue()
	red := makeTeam("red", 1)
	blue := makeTeam("blue", 1)

	q.Enqueue(red)
	q.Enqueue(blue)

	require.Len(t, *matched, 1)
	assert.Same(t, red, (*matched)[0].a, "longest-waiting team is first")
	assert.Same(t, blue, (*matched)[0].b)
	assert.False(t, red.Queued)
	assert.False(t, blue.Queued)
	assert.Equal(t, 0, q.Waiting(1), "bucket removed once emptied")
}

func TestThirdTeamKeepsWaiting(t *testing.T) {
	q, _, matched := newTestQueue()
	q.Enqueue(makeTeam("red", 1))
	q.Enqueue(makeTeam("blue", 1))
	green := makeTeam("green", 1)
	q.Enqueue(green)

	require.Len(t, *matched, 1)
	assert.Equal(t, 1, q.Waiting(1))
	assert.True(t, green.Queued)
}

func TestSizeBucketsDoNotMix(t *testing.T) {
	q, _, matched := newTestQueue()
	q.Enqueue(makeTeam("solo", 1))
	q.Enqueue(makeTeam("duo", 2))

	assert.Empty(t, *matched, "differently sized teams never pair")
	assert.Equal(t, 1, q.Waiting(1))
	assert.Equal(t, 1, q.Waiting(2))
}

func TestDequeue(t *testing.T) {
	q, rec, _ := newTestQueue()
	red := makeTeam("red", 1)
	q.Enqueue(red)

	q.Dequeue(red, "leader cancelled")

	assert.False(t, red.Queued)
	assert.Equal(t, 0, q.Waiting(1))

	msgs := rec.sent["red-a"]
	require.Len(t, msgs, 2)
	assert.Equal(t, protocol.EvtTeamMatchCancelled, msgs[1].Type)
	var payload protocol.MatchCancelled
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &payload))
	assert.Equal(t, "leader cancelled", payload.Reason)

	// Dequeueing an unqueued team is a no-op.
	q.Dequeue(red, "again")
	assert.Len(t, rec.sent["red-a"], 2)
}
