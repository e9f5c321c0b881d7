// Package services wires the moderation pipeline in front of the room
// engine: classify the message, record and enforce each violation, then
// deliver or suppress.
package services

import (
	"fmt"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"chatsphere/contract"
	"chatsphere/domain"
	"chatsphere/enforcement"
	"chatsphere/lifecycle"
	"chatsphere/moderation"
	"chatsphere/repositories"
)

// PostOutcome reports what happened to one posted message. A suppressed
// message was never appended to the room; its violations are still
// recorded.
type PostOutcome struct {
	Delivered  bool
	Violations []domain.Violation
	Actions    []domain.Action
}

type RoomService struct {
	manager    *lifecycle.Manager
	settings   repositories.ISettingsRepository
	classifier *moderation.Classifier
	policy     *enforcement.Policy
	index      *repositories.ViolationIndex
	sink       contract.NotificationSink
	log        *slog.Logger
}

func NewRoomService(
	manager *lifecycle.Manager,
	settings repositories.ISettingsRepository,
	classifier *moderation.Classifier,
	policy *enforcement.Policy,
	index *repositories.ViolationIndex,
	sink contract.NotificationSink,
	log *slog.Logger,
) *RoomService {
	return &RoomService{
		manager:    manager,
		settings:   settings,
		classifier: classifier,
		policy:     policy,
		index:      index,
		sink:       sink,
		log:        log,
	}
}

// PostMessage runs the full pipeline for one user message. Classification
// and enforcement always complete; the message itself is withheld from the
// room when any violation draws a mute or a ban. Moderation trouble never
// loses a clean message: when the settings store is unreachable the
// message goes through with the shipped defaults.
func (s *RoomService) PostMessage(roomID string, msg domain.Message) (PostOutcome, error) {
	settings, err := s.settings.Get()
	if err != nil {
		s.log.Error("Loading moderation settings failed, using defaults", "error", err)
		settings = domain.DefaultModerationSettings()
	}

	violations := s.classifier.Classify(msg.Text, settings)

	outcome := PostOutcome{Delivered: true}
	for _, v := range violations {
		v.MessageID = msg.ID.String()
		v.UserID = msg.SenderID
		v.RoomID = roomID

		info := whatlanggo.Detect(msg.Text)
		s.log.Warn("Message flagged",
			"room_id", roomID,
			"user_id", msg.SenderID,
			"violation_type", v.Type,
			"severity", v.Severity,
			"lang", info.Lang.Iso6391())

		action, explanation := s.policy.RecordAndDecide(v)
		v.ActionTaken = action

		if s.index != nil {
			if err := s.index.Index(v); err != nil {
				s.log.Error("Indexing violation failed", "violation_id", v.ID, "error", err)
			}
		}
		s.sink.Notify(msg.SenderID, explanation)

		if action == domain.ActionMute || action == domain.ActionBan {
			outcome.Delivered = false
		}
		outcome.Violations = append(outcome.Violations, v)
		outcome.Actions = append(outcome.Actions, action)
	}

	if !outcome.Delivered {
		s.log.Info("Message suppressed", "room_id", roomID, "user_id", msg.SenderID)
		return outcome, nil
	}

	if err := s.manager.PostMessage(roomID, msg); err != nil {
		return PostOutcome{}, fmt.Errorf("post message to %s: %w", roomID, err)
	}
	return outcome, nil
}
