// Package session tracks which processing action a user selected from the
// menu. A session lives until the user finishes a job, cancels, or stays
// idle past the TTL.
package session

import (
	"context"
	"errors"
	"time"

	coreconfig "github.com/m3rciful/audiobot/core/config"
)

// Action identifies a processing mode picked from the inline menu.
type Action string

const (
	ActionAnalyze Action = "analyze"
	ActionEnhance Action = "enhance"
	ActionStereo  Action = "stereo"
	ActionFull    Action = "full"
)

// ValidAction reports whether s names a known processing action.
func ValidAction(s string) bool {
	switch Action(s) {
	case ActionAnalyze, ActionEnhance, ActionStereo, ActionFull:
		return true
	}
	return false
}

// Session holds the pending choice for a single user.
type Session struct {
	UserID    int64     `json:"user_id"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when no live session exists for a user.
var ErrNotFound = errors.New("session: not found")

// Store keeps per-user sessions with a sliding TTL.
// Get refreshes the TTL on a hit, so active users are never evicted mid-flow.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, userID int64) error
	Close() error
}

// NewStore picks the backend from config: Redis when a URL is set,
// in-process memory otherwise. The TTL semantics are identical either way.
func NewStore(cfg coreconfig.SessionConfig) (Store, error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if cfg.RedisURL != "" {
		return NewRedisStore(cfg.RedisURL, ttl)
	}
	sweep := time.Duration(cfg.SweepIntervalSeconds) * time.Second
	return NewMemoryStore(ttl, sweep), nil
}
