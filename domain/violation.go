package domain

import "time"

type ViolationType string

const (
	ViolationSpam          ViolationType = "spam"
	ViolationHateSpeech    ViolationType = "hate_speech"
	ViolationHarassment    ViolationType = "harassment"
	ViolationInappropriate ViolationType = "inappropriate"
	ViolationAdvertising   ViolationType = "advertising"
	ViolationScam          ViolationType = "scam"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

func (s Severity) Rank() int { return severityRank[s] }

// Downgrade lowers the severity by exactly one step, flooring at low.
func (s Severity) Downgrade() Severity {
	switch s {
	case SeverityCritical:
		return SeverityHigh
	case SeverityHigh:
		return SeverityMedium
	case SeverityMedium:
		return SeverityLow
	default:
		return SeverityLow
	}
}

type Action string

const (
	ActionNone    Action = "none"
	ActionWarning Action = "warning"
	ActionMute    Action = "mute"
	ActionBan     Action = "ban"
)

type Reviewer string

const (
	ReviewedAutomated Reviewer = "automated"
	ReviewedHuman     Reviewer = "human"
)

// Violation is one classified policy breach for a single message.
type Violation struct {
	ID           string        `json:"id"`
	MessageID    string        `json:"message_id"`
	UserID       string        `json:"user_id"`
	RoomID       string        `json:"room_id"`
	Type         ViolationType `json:"violation_type"`
	Severity     Severity      `json:"severity"`
	DetectedText string        `json:"detected_text"`
	Reason       string        `json:"reason"`
	At           time.Time     `json:"timestamp"`
	ActionTaken  Action        `json:"action_taken"`
	ReviewedBy   Reviewer      `json:"reviewed_by"`
}

type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusWarning UserStatus = "warning"
	StatusMuted   UserStatus = "muted"
	StatusBanned  UserStatus = "banned"
)

var statusRank = map[UserStatus]int{
	StatusActive:  0,
	StatusWarning: 1,
	StatusMuted:   2,
	StatusBanned:  3,
}

// ViolationHistory is the per-user moderation ledger entry. It is created
// lazily on the first violation and only ever grows.
type ViolationHistory struct {
	UserID          string      `json:"user_id"`
	Violations      []Violation `json:"violations"`
	WarningCount    int         `json:"warning_count"`
	MuteCount       int         `json:"mute_count"`
	BanCount        int         `json:"ban_count"`
	LastViolationAt time.Time   `json:"last_violation_at"`
	Status          UserStatus  `json:"status"`
}

func NewViolationHistory(userID string) ViolationHistory {
	return ViolationHistory{UserID: userID, Status: StatusActive}
}

// CountSince reports how many recorded violations fall inside the rolling
// window starting at since.
func (h *ViolationHistory) CountSince(since time.Time) int {
	count := 0
	for _, v := range h.Violations {
		if v.At.After(since) {
			count++
		}
	}
	return count
}

// Record appends the violation, bumps the matching counter and advances
// the status. Status only moves forward along
// active -> warning -> muted -> banned; reinstatement is an administrative
// action outside this engine.
func (h *ViolationHistory) Record(v Violation) {
	h.Violations = append(h.Violations, v)
	h.LastViolationAt = v.At

	next := h.Status
	switch v.ActionTaken {
	case ActionWarning:
		h.WarningCount++
		next = StatusWarning
	case ActionMute:
		h.MuteCount++
		next = StatusMuted
	case ActionBan:
		h.BanCount++
		next = StatusBanned
	}
	if statusRank[next] > statusRank[h.Status] {
		h.Status = next
	}
}
