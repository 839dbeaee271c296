// Package session persists layout sessions of the HTTP API.
//
// A session is everything needed to rebuild a simulated host and its engine
// between requests: the scenario configuration with the current data set,
// the selection and the engine snapshot. Requests are stateless; each one
// opens the session, applies an operation and stores it back.
//
// Backends:
//   - [MemoryStore]: in-process, for development and tests
//   - [CacheStore]: any [cache.Cache]: a directory, Redis or MongoDB
//
// # Usage
//
//	sess, err := session.New(cfg, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	st, err := sess.Open(logger)
//	if err != nil {
//	    return err
//	}
//	if _, err := st.Apply(scenario.Step{Op: scenario.OpScroll, Delta: 200}); err != nil {
//	    return err
//	}
//	sess.Capture(st)
//	err = store.Set(ctx, sess)
package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	lverrors "github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/scenario"
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 24 * time.Hour

// Session is the stored form of one API client's layout: the data set and
// viewport it scrolls, its selection and the engine snapshot.
type Session struct {
	ID        string           `json:"id"`
	Config    scenario.Config  `json:"config"`
	Checked   []string         `json:"checked,omitempty"`
	Snapshot  *layout.Snapshot `json:"snapshot,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Expired reports whether the session outlived its TTL at now.
func (s *Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Touch marks the session updated and pushes its expiry ttl into the future.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Store persists sessions. Get returns nil, nil for unknown and expired IDs
// so that callers map both to SESSION_NOT_FOUND.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	// Cleanup drops expired sessions that the backend does not evict itself.
	Cleanup(ctx context.Context) error
}

// GenerateID returns a new random session ID.
func GenerateID() string { return uuid.NewString() }

// ValidateID rejects IDs that [GenerateID] cannot have produced before they
// are turned into store keys.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return lverrors.Wrap(lverrors.ErrCodeInvalidKey, err, "session id %q", id)
	}
	return nil
}

// New creates a session for cfg. Generated items are expanded so the
// session carries the full data set.
func New(cfg scenario.Config, ttl time.Duration) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Items = cfg.DataSet()
	cfg.Generate = nil

	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Open rebuilds the host and engine of the session and lays them out at
// the saved snapshot.
func (s *Session) Open(logger *log.Logger) (*scenario.State, error) {
	st, err := scenario.Start(s.Config, logger)
	if err != nil {
		return nil, err
	}
	st.Host.SetCheckedIDs(s.Checked)
	if s.Snapshot != nil {
		if err := st.Resume(*s.Snapshot); err != nil {
			return nil, err
		}
	}
	if err := st.Engine.Layout(); err != nil {
		return nil, err
	}
	return st, nil
}

// Capture records the state of st in the session.
func (s *Session) Capture(st *scenario.State) {
	s.Config.Items = st.Host.Items()
	s.Config.Viewport = st.Host.Viewport()
	s.Config.Orientation = st.Engine.Orientation()
	if g, ok := st.Engine.Policy().(interface{ Size() (int, int) }); ok {
		s.Config.Columns, s.Config.Rows = g.Size()
	}
	s.Checked = st.Host.CheckedIDs()
	snap := st.Engine.Save()
	s.Snapshot = &snap
}
