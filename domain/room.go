package domain

import (
	"time"

	"github.com/samber/lo"
)

type RoomType string

const (
	RoomPublic  RoomType = "public"
	RoomPrivate RoomType = "private"
)

// Room is an ephemeral chat room. Participants keep insertion order for
// display; membership tests are order-insensitive. KickedIDs is a per-room
// blacklist and stays disjoint from Participants at all times.
type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	HostID       string    `json:"host_id,omitempty"` // empty for official rooms
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	IsOfficial   bool      `json:"is_official"`
	Type         RoomType  `json:"room_type"`
	InvitedIDs   []string  `json:"invited_ids,omitempty"`
	KickedIDs    []string  `json:"kicked_ids,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Room) HasParticipant(userID string) bool {
	return lo.Contains(r.Participants, userID)
}

func (r *Room) IsKicked(userID string) bool {
	return lo.Contains(r.KickedIDs, userID)
}

func (r *Room) IsInvited(userID string) bool {
	return lo.Contains(r.InvitedIDs, userID)
}

// Join adds the user to the participant list. It reports false when the
// user is already present, so callers can skip the "joined" announcement.
func (r *Room) Join(userID string) bool {
	if r.HasParticipant(userID) {
		return false
	}
	r.Participants = append(r.Participants, userID)
	return true
}

// Leave removes the user. Reports false when the user was not a participant.
func (r *Room) Leave(userID string) bool {
	if !r.HasParticipant(userID) {
		return false
	}
	r.Participants = lo.Without(r.Participants, userID)
	return true
}

// Kick removes the user from the participants and records them on the
// blacklist. Idempotent: kicking an already kicked user changes nothing.
func (r *Room) Kick(userID string) {
	r.Participants = lo.Without(r.Participants, userID)
	if !r.IsKicked(userID) {
		r.KickedIDs = append(r.KickedIDs, userID)
	}
}

// Unkick removes the user from the blacklist. The user does not rejoin
// automatically.
func (r *Room) Unkick(userID string) {
	r.KickedIDs = lo.Without(r.KickedIDs, userID)
}

// Invite records the user on the invitation list. Idempotent.
func (r *Room) Invite(userID string) {
	if !r.IsInvited(userID) {
		r.InvitedIDs = append(r.InvitedIDs, userID)
	}
}

func (r *Room) PostMessage(message Message) {
	r.Messages = append(r.Messages, message)
}

// Age reports how long the room has existed at the given instant.
func (r *Room) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}
