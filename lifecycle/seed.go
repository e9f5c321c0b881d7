package lifecycle

import (
	"errors"
	"fmt"

	"chatsphere/domain"
	apperrors "chatsphere/errors"
)

type officialRoomSeed struct {
	id      string
	name    string
	icon    string
	welcome string
}

var officialRooms = []officialRoomSeed{
	{
		id:   "official-1",
		name: "The Coffee Corner",
		icon: "☕",
		welcome: "Welcome to The Coffee Corner! A cozy place to chat about anything " +
			"from technology to art and music. Grab a cup and join the conversation.",
	},
	{
		id:   "official-2",
		name: "Global Travelers",
		icon: "✈️",
		welcome: "Welcome, fellow traveler! Share your favorite destinations, " +
			"travel stories, and cultural experiences with us.",
	},
	{
		id:   "official-3",
		name: "Wellness Hub",
		icon: "💪",
		welcome: "Join us in the Wellness Hub to discuss fitness, healthy recipes, " +
			"and mindfulness. Let's get motivated together!",
	},
	{
		id:   "official-4",
		name: "Late Night Talks",
		icon: "🌙",
		welcome: "The world is quiet. What's on your mind? Share your late-night " +
			"thoughts, dreams, or just unwind with us.",
	},
}

// SeedOfficialRooms creates the permanent rooms on first start. Rooms that
// already exist are left untouched, so reseeding on every boot is safe.
func (m *Manager) SeedOfficialRooms() error {
	now := m.now()
	for _, seed := range officialRooms {
		_, err := m.store.GetRoom(seed.id)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("check official room %s: %w", seed.id, err)
		}

		room := domain.Room{
			ID:           seed.id,
			Name:         seed.name,
			Participants: []string{},
			IsOfficial:   true,
			Type:         domain.RoomPublic,
			Icon:         seed.icon,
			CreatedAt:    now,
		}
		room.PostMessage(domain.NewSystemMessage(seed.welcome, now))

		if err := m.store.SaveRoom(room); err != nil {
			return fmt.Errorf("seed official room %s: %w", seed.id, err)
		}
		m.log.Info("Official room seeded", "room_id", seed.id, "name", seed.name)
	}
	return nil
}
