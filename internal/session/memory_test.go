package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}
func (f *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.ttls[key] = ttl
}
func (f *fakeStore) SetAsync(key string, value []byte, ttl time.Duration) {
	f.Set(context.Background(), key, value, ttl)
}
func (f *fakeStore) Del(_ context.Context, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
}
func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = ttl
}
func (f *fakeStore) SAdd(context.Context, string, ...string)   {}
func (f *fakeStore) SRem(context.Context, string, ...string)   {}
func (f *fakeStore) SMembers(context.Context, string) []string { return nil }
func (f *fakeStore) Close() error                              { return nil }

func TestMemoryPutAndGetRoundTrips(t *testing.T) {
	store := newFakeStore()
	mem := NewMemory(store, nil)
	ctx := context.Background()

	appt := LastAppt{Patient: "Chen", SlotISO: "2026-07-31T10:30:00Z", Location: "Midtown", ApptID: "appt-1"}
	require.NoError(t, mem.PutLastAppt(ctx, "s2", appt))

	got, ok := mem.Get(ctx, "s2")
	require.True(t, ok)
	require.NotNil(t, got.LastAppt)
	assert.Equal(t, "Chen", got.LastAppt.Patient)
	assert.Equal(t, TTL, store.ttls["memory:s2"])
}

func TestMemoryGetMissReturnsFalse(t *testing.T) {
	store := newFakeStore()
	mem := NewMemory(store, nil)

	_, ok := mem.Get(context.Background(), "unknown-session")
	assert.False(t, ok)
}

func TestMemoryOverwriteLastWriterWins(t *testing.T) {
	store := newFakeStore()
	mem := NewMemory(store, nil)
	ctx := context.Background()

	require.NoError(t, mem.PutLastAppt(ctx, "s2", LastAppt{Patient: "Chen", ApptID: "appt-1"}))
	require.NoError(t, mem.PutLastAppt(ctx, "s2", LastAppt{Patient: "Chen", ApptID: "appt-2", SlotISO: "2026-07-31T11:00:00Z"}))

	got, ok := mem.Get(ctx, "s2")
	require.True(t, ok)
	assert.Equal(t, "appt-2", got.LastAppt.ApptID)
}
