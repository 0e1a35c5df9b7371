// Package game holds configuration shared by the transport-free core
// packages underneath it.
package game

import "time"

// Config carries the tunables of the tug-of-war contest. Zero values are
// never meaningful; start from DefaultConfig.
type Config struct {
	// MaxTeamSize caps how many players a team may hold.
	MaxTeamSize int

	// ClickPower is how much a single click moves a side's total.
	ClickPower int

	// WinThreshold is the absolute bar position at which a side wins.
	WinThreshold int

	// CountdownSeconds is the pre-game countdown length.
	CountdownSeconds int

	// FinishedSessionTTL is how long a finished session with players still
	// present survives waiting for restart votes before it is reaped.
	FinishedSessionTTL time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTeamSize:        5,
		ClickPower:         1,
		WinThreshold:       25,
		CountdownSeconds:   3,
		FinishedSessionTTL: 2 * time.Minute,
	}
}
