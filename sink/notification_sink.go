// Package sink holds the outbound edges of the engine: delivery of
// enforcement notices to users.
package sink

import (
	"log/slog"
	"sync"

	"chatsphere/contract"
)

// LogNotificationSink records enforcement notices in the structured log.
// It is the default sink when no delivery channel is configured; delivery
// is best-effort by contract, so losing a notice is never an error.
type LogNotificationSink struct {
	log *slog.Logger
}

var _ contract.NotificationSink = (*LogNotificationSink)(nil)

func NewLogNotificationSink(log *slog.Logger) *LogNotificationSink {
	return &LogNotificationSink{log: log}
}

func (s *LogNotificationSink) Notify(userID, message string) {
	s.log.Info("Moderation notice", "user_id", userID, "message", message)
}

// MemoryNotificationSink buffers notices in memory. Used by the e2e
// scenarios to assert on what users would have seen.
type MemoryNotificationSink struct {
	mu      sync.Mutex
	notices map[string][]string
}

var _ contract.NotificationSink = (*MemoryNotificationSink)(nil)

func NewMemoryNotificationSink() *MemoryNotificationSink {
	return &MemoryNotificationSink{notices: make(map[string][]string)}
}

func (s *MemoryNotificationSink) Notify(userID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[userID] = append(s.notices[userID], message)
}

func (s *MemoryNotificationSink) NoticesFor(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.notices[userID]))
	copy(out, s.notices[userID])
	return out
}
