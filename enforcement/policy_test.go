package enforcement

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chatsphere/domain"
	"chatsphere/repositories"
)

func newTestPolicy(t *testing.T) (*Policy, *repositories.MemoryLedgerRepository, *time.Time) {
	t.Helper()
	ledger := repositories.NewMemoryLedgerRepository()
	policy := NewPolicy(ledger, logs.GetLoggerFromLevel(slog.LevelDebug))

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy.now = func() time.Time { return clock }
	return policy, ledger, &clock
}

func violationAt(userID string, severity domain.Severity, at time.Time) domain.Violation {
	return domain.Violation{
		ID:       fmt.Sprintf("violation-%s-%d", severity, at.UnixNano()),
		UserID:   userID,
		Type:     domain.ViolationHateSpeech,
		Severity: severity,
		Reason:   fmt.Sprintf("detected hate_speech content: %q", "example"),
		At:       at,
	}
}

func TestRecordAndDecideEscalationLadder(t *testing.T) {
	req := require.New(t)
	policy, ledger, clock := newTestPolicy(t)

	// First critical violation in a quiet window mutes.
	action, msg := policy.RecordAndDecide(violationAt("alice", domain.SeverityCritical, *clock))
	req.Equal(domain.ActionMute, action)
	req.Contains(msg, "muted for severe violation")

	// Second critical still mutes (count is 2, below the ban threshold).
	*clock = clock.Add(time.Minute)
	action, _ = policy.RecordAndDecide(violationAt("alice", domain.SeverityCritical, *clock))
	req.Equal(domain.ActionMute, action)

	// Third critical inside the window bans.
	*clock = clock.Add(time.Minute)
	action, msg = policy.RecordAndDecide(violationAt("alice", domain.SeverityCritical, *clock))
	req.Equal(domain.ActionBan, action)
	req.Contains(msg, "banned for multiple severe violations")

	history, err := ledger.GetHistory("alice")
	req.NoError(err)
	req.Equal(domain.StatusBanned, history.Status)
	req.Equal(2, history.MuteCount)
	req.Equal(1, history.BanCount)
	req.Len(history.Violations, 3)
}

func TestRecordAndDecideHighSeverity(t *testing.T) {
	req := require.New(t)
	policy, _, clock := newTestPolicy(t)

	action, msg := policy.RecordAndDecide(violationAt("bob", domain.SeverityHigh, *clock))
	req.Equal(domain.ActionWarning, action)
	req.Contains(msg, "warning for high-severity violation")

	*clock = clock.Add(time.Minute)
	action, _ = policy.RecordAndDecide(violationAt("bob", domain.SeverityHigh, *clock))
	req.Equal(domain.ActionWarning, action)

	*clock = clock.Add(time.Minute)
	action, msg = policy.RecordAndDecide(violationAt("bob", domain.SeverityHigh, *clock))
	req.Equal(domain.ActionMute, action)
	req.Contains(msg, "muted for multiple high-severity violations")
}

func TestRecordAndDecideMediumAndLow(t *testing.T) {
	req := require.New(t)
	policy, _, clock := newTestPolicy(t)

	// Four medium violations draw no action, the fifth draws a warning.
	for i := 0; i < 4; i++ {
		action, msg := policy.RecordAndDecide(violationAt("carol", domain.SeverityMedium, *clock))
		req.Equal(domain.ActionNone, action)
		req.Contains(msg, "no action taken")
		*clock = clock.Add(time.Minute)
	}
	action, msg := policy.RecordAndDecide(violationAt("carol", domain.SeverityMedium, *clock))
	req.Equal(domain.ActionWarning, action)
	req.Contains(msg, "warning for multiple violations")

	action, msg = policy.RecordAndDecide(violationAt("dave", domain.SeverityLow, *clock))
	req.Equal(domain.ActionNone, action)
	req.Contains(msg, "Minor violation")
}

func TestRecordAndDecideWindowExpiry(t *testing.T) {
	req := require.New(t)
	policy, _, clock := newTestPolicy(t)

	policy.RecordAndDecide(violationAt("erin", domain.SeverityCritical, *clock))
	*clock = clock.Add(time.Hour)
	policy.RecordAndDecide(violationAt("erin", domain.SeverityCritical, *clock))

	// 25 hours later the earlier violations have aged out, so the third
	// critical is treated as a first offence again.
	*clock = clock.Add(25 * time.Hour)
	action, _ := policy.RecordAndDecide(violationAt("erin", domain.SeverityCritical, *clock))
	req.Equal(domain.ActionMute, action)
}

func TestStatusIsMonotonic(t *testing.T) {
	req := require.New(t)
	policy, ledger, clock := newTestPolicy(t)

	policy.RecordAndDecide(violationAt("frank", domain.SeverityCritical, *clock))
	history, err := ledger.GetHistory("frank")
	req.NoError(err)
	req.Equal(domain.StatusMuted, history.Status)

	// A later warning never demotes a muted user back to warned.
	*clock = clock.Add(time.Minute)
	policy.RecordAndDecide(violationAt("frank", domain.SeverityHigh, *clock))
	history, err = ledger.GetHistory("frank")
	req.NoError(err)
	req.Equal(domain.StatusMuted, history.Status)
	req.Equal(domain.StatusMuted, policy.Status("frank"))
}

func TestStatusUnknownUserIsActive(t *testing.T) {
	req := require.New(t)
	policy, _, _ := newTestPolicy(t)
	req.Equal(domain.StatusActive, policy.Status("nobody"))
}

func TestRecordAndDecideConcurrentUsers(t *testing.T) {
	req := require.New(t)
	policy, ledger, clock := newTestPolicy(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		userID := fmt.Sprintf("user-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				policy.RecordAndDecide(violationAt(userID, domain.SeverityHigh, *clock))
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		history, err := ledger.GetHistory(fmt.Sprintf("user-%d", i))
		req.NoError(err)
		req.Len(history.Violations, 3)
		req.Equal(domain.StatusMuted, history.Status)
	}
}
