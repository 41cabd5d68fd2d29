package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

var baseTime = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequentialIDs) Generate(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s_%d", prefix, s.n)
}

func newTestCore(t *testing.T, opts ...Option) (*Core, *testClock) {
	t.Helper()
	clock := &testClock{now: baseTime}
	all := append([]Option{WithClock(clock), WithIDGenerator(&sequentialIDs{})}, opts...)
	c := NewInMemory(all...)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func at(d time.Duration) string {
	return baseTime.Add(d).Format(time.RFC3339)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

type memoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (l *memoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

func (l *memoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEntry(nil), l.entries...)
}
