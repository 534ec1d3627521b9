// Package schedule is the Schedule Interface: a thin proxy over
// appointment records. Per §2 the appointment store itself is "a simple
// keyed record store specified only by its interface" and no external
// appointment-store component appears anywhere else in the spec's
// external interfaces (§6) beyond the KV store's `appt:` / `appts:all`
// namespaces -- so this package treats the KV store entries as the
// store of record, not merely a cache in front of one.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/front-desk-ai/rag-orchestrator/internal/kvstore"
)

// ApptTTL is the 7-day retention fixed by §4.6.
const ApptTTL = 7 * 24 * time.Hour

// ErrNotFound is returned by Reschedule when appt_id names no known
// appointment -- a business-invariant violation per §7(d), surfaced to
// the orchestrator as a tagged result, never a panic or bare error string.
var ErrNotFound = errors.New("appointment not found")

// Status values for Appointment.Status.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Appointment is the managed record (§3).
type Appointment struct {
	ApptID             string     `json:"appt_id"`
	Patient            string     `json:"patient"`
	NormalizedSlotISO  string     `json:"normalized_slot_iso"`
	Location           string     `json:"location"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// Interface is the Schedule Interface component.
type Interface struct {
	kv     kvstore.Store
	logger *zap.Logger
	Clock  func() time.Time
}

func NewInterface(kv kvstore.Store, logger *zap.Logger) *Interface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interface{kv: kv, logger: logger, Clock: time.Now}
}

func (s *Interface) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Create books a new appointment.
func (s *Interface) Create(ctx context.Context, patient string, slot time.Time, location string) (Appointment, error) {
	appt := Appointment{
		ApptID:            uuid.NewString(),
		Patient:           patient,
		NormalizedSlotISO: slot.UTC().Format(time.RFC3339),
		Location:          location,
		Status:            StatusScheduled,
		CreatedAt:         s.now(),
	}
	s.save(ctx, appt)
	s.kv.SAdd(ctx, "appts:all", appt.ApptID)
	return appt, nil
}

// Reschedule changes an existing appointment's slot. ErrNotFound if
// appt_id is unknown.
func (s *Interface) Reschedule(ctx context.Context, apptID string, newSlot time.Time) (Appointment, error) {
	appt, ok := s.Get(ctx, apptID)
	if !ok {
		return Appointment{}, ErrNotFound
	}
	appt.NormalizedSlotISO = newSlot.UTC().Format(time.RFC3339)
	updated := s.now()
	appt.UpdatedAt = &updated
	s.save(ctx, appt)
	return appt, nil
}

// Cancel marks an appointment cancelled. Session memory may still name
// it afterward -- §9 treats last_appt.appt_id as a weak reference, not
// an ownership pointer.
func (s *Interface) Cancel(ctx context.Context, apptID string) error {
	appt, ok := s.Get(ctx, apptID)
	if !ok {
		return ErrNotFound
	}
	appt.Status = StatusCancelled
	updated := s.now()
	appt.UpdatedAt = &updated
	s.save(ctx, appt)
	s.kv.SRem(ctx, "appts:all", apptID)
	return nil
}

// Get looks up an appointment by id.
func (s *Interface) Get(ctx context.Context, apptID string) (Appointment, bool) {
	raw, ok := s.kv.Get(ctx, apptKey(apptID))
	if !ok {
		return Appointment{}, false
	}
	var appt Appointment
	if err := json.Unmarshal(raw, &appt); err != nil {
		s.logger.Debug("appointment unmarshal failed", zap.Error(err))
		return Appointment{}, false
	}
	return appt, true
}

// ListAll returns every live (non-cancelled-at-removal) appointment id.
func (s *Interface) ListAll(ctx context.Context) []string {
	return s.kv.SMembers(ctx, "appts:all")
}

func (s *Interface) save(ctx context.Context, appt Appointment) {
	buf, err := json.Marshal(appt)
	if err != nil {
		s.logger.Debug("appointment marshal failed", zap.Error(err))
		return
	}
	s.kv.Set(ctx, apptKey(appt.ApptID), buf, ApptTTL)
}

func apptKey(apptID string) string {
	return "appt:" + apptID
}
