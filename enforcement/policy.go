// Package enforcement turns classified violations into moderation actions
// and keeps the per-user ledger consistent while doing so.
package enforcement

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chatsphere/domain"
	"chatsphere/repositories"
)

// DefaultWindow is the rolling period over which repeat violations
// escalate the action taken.
const DefaultWindow = 24 * time.Hour

// Policy decides the action for each incoming violation from the user's
// recent record, stamps the violation with it, and persists the updated
// history. Decisions for one user are serialized; different users proceed
// concurrently.
type Policy struct {
	ledger repositories.ILedgerRepository
	window time.Duration
	log    *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPolicy(ledger repositories.ILedgerRepository, log *slog.Logger) *Policy {
	return &Policy{
		ledger: ledger,
		window: DefaultWindow,
		log:    log,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (p *Policy) userLock(userID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[userID] = lock
	}
	return lock
}

// RecordAndDecide applies the escalation table to one violation and records
// it. The count of recent violations includes the one being decided, so a
// user's very first critical violation in a quiet window draws a mute, not
// a ban. Enforcement never fails the message pipeline: when the ledger is
// unreachable the decision is still made, from an empty record, and logged.
func (p *Policy) RecordAndDecide(v domain.Violation) (domain.Action, string) {
	lock := p.userLock(v.UserID)
	lock.Lock()
	defer lock.Unlock()

	history, err := p.ledger.GetHistory(v.UserID)
	if err != nil {
		p.log.Error("Reading violation history failed, deciding from empty record",
			"user_id", v.UserID, "error", err)
		history = domain.NewViolationHistory(v.UserID)
	}

	since := p.now().Add(-p.window)
	recent := history.CountSince(since) + 1

	action, message := decide(v, recent)
	v.ActionTaken = action
	history.Record(v)

	if err := p.ledger.SaveHistory(history); err != nil {
		p.log.Error("Saving violation history failed",
			"user_id", v.UserID, "violation_id", v.ID, "error", err)
	}

	p.log.Info("Violation recorded",
		"user_id", v.UserID,
		"violation_type", v.Type,
		"severity", v.Severity,
		"action", action,
		"recent_count", recent,
		"status", history.Status)

	return action, message
}

// Status returns the user's current moderation status. Users without any
// recorded violation are active.
func (p *Policy) Status(userID string) domain.UserStatus {
	history, err := p.ledger.GetHistory(userID)
	if err != nil {
		p.log.Error("Reading violation history failed", "user_id", userID, "error", err)
		return domain.StatusActive
	}
	return history.Status
}

// decide is the escalation table. recent counts violations inside the
// rolling window, including the one being decided.
func decide(v domain.Violation, recent int) (domain.Action, string) {
	switch v.Severity {
	case domain.SeverityCritical:
		if recent >= 3 {
			return domain.ActionBan,
				fmt.Sprintf("User automatically banned for multiple severe violations: %s", v.Reason)
		}
		return domain.ActionMute,
			fmt.Sprintf("User automatically muted for severe violation: %s", v.Reason)
	case domain.SeverityHigh:
		if recent >= 3 {
			return domain.ActionMute,
				fmt.Sprintf("User automatically muted for multiple high-severity violations: %s", v.Reason)
		}
		return domain.ActionWarning,
			fmt.Sprintf("User received automatic warning for high-severity violation: %s", v.Reason)
	case domain.SeverityMedium:
		if recent >= 5 {
			return domain.ActionWarning,
				fmt.Sprintf("User received automatic warning for multiple violations: %s", v.Reason)
		}
		return domain.ActionNone,
			fmt.Sprintf("Violation detected but no action taken: %s", v.Reason)
	default:
		return domain.ActionNone,
			fmt.Sprintf("Minor violation detected but no action taken: %s", v.Reason)
	}
}
