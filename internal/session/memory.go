// Package session is Session Memory: per-session_id last-appointment
// context, backed by the KV store with a sliding 30-minute TTL. Adapted
// from the example stack's Redis-backed session manager, trimmed to the
// single `last_appt` field this spec's SessionContext actually needs --
// no multi-tenant isolation, no message history, no local LRU layer.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/front-desk-ai/rag-orchestrator/internal/kvstore"
)

// TTL is the sliding session window fixed by §3/§4.6.
const TTL = 30 * time.Minute

// LastAppt is a weak reference to an appointment (§9: "treat as an
// identifier, not a pointer" -- the appointment may since have been
// cancelled).
type LastAppt struct {
	Patient   string    `json:"patient"`
	SlotISO   string    `json:"slot_iso"`
	Location  string    `json:"location"`
	ApptID    string    `json:"appt_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is the per-session state. The zero value (LastAppt == nil)
// represents "no prior appointment in this session".
type Context struct {
	LastAppt *LastAppt `json:"last_appt,omitempty"`
}

// Memory is the Session Memory component. Writes are optimistic
// read-modify-write, last-writer-wins (§5) -- acceptable because a
// session is single-user.
type Memory struct {
	kv     kvstore.Store
	logger *zap.Logger
}

func NewMemory(kv kvstore.Store, logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{kv: kv, logger: logger}
}

// Get reads a session's context. A cache miss (including one the
// backing store reports as a connection failure) returns an empty
// Context with ok=false -- per I2, a missing cache entry changes
// latency, never the turn's correctness; the caller simply treats it
// as "no prior appointment".
func (m *Memory) Get(ctx context.Context, sessionID string) (Context, bool) {
	raw, ok := m.kv.Get(ctx, key(sessionID))
	if !ok {
		return Context{}, false
	}
	var c Context
	if err := json.Unmarshal(raw, &c); err != nil {
		m.logger.Debug("session context unmarshal failed, treating as miss", zap.Error(err))
		return Context{}, false
	}
	return c, true
}

// PutLastAppt overwrites last_appt for sessionID and refreshes the TTL.
func (m *Memory) PutLastAppt(ctx context.Context, sessionID string, appt LastAppt) error {
	c := Context{LastAppt: &appt}
	buf, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.kv.Set(ctx, key(sessionID), buf, TTL)
	return nil
}

// Touch refreshes a session's TTL without changing its contents.
func (m *Memory) Touch(ctx context.Context, sessionID string) {
	m.kv.Expire(ctx, key(sessionID), TTL)
}

func key(sessionID string) string {
	return fmt.Sprintf("memory:%s", sessionID)
}
