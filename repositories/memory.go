package repositories

import (
	"fmt"
	"sync"
	"time"

	"chatsphere/domain"
	apperrors "chatsphere/errors"
)

// MemoryRoomRepository is the in-memory IRoomRepository used by tests and
// by callers embedding the engine without a disk store.
type MemoryRoomRepository struct {
	mu           sync.RWMutex
	rooms        map[string]domain.Room
	supplemental map[string][]domain.Message
}

func NewMemoryRoomRepository() *MemoryRoomRepository {
	return &MemoryRoomRepository{
		rooms:        make(map[string]domain.Room),
		supplemental: make(map[string][]domain.Message),
	}
}

func (m *MemoryRoomRepository) SaveRoom(room domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	return nil
}

func (m *MemoryRoomRepository) GetRoom(id string) (domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, fmt.Errorf("room %s: %w", id, apperrors.ErrNotFound)
	}
	return room, nil
}

func (m *MemoryRoomRepository) DeleteRoom(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	return nil
}

func (m *MemoryRoomRepository) ListRooms() ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rooms := make([]domain.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (m *MemoryRoomRepository) ListRoomsByHost(hostID string) ([]domain.Room, error) {
	rooms, _ := m.ListRooms()
	var out []domain.Room
	for _, room := range rooms {
		if room.HostID == hostID {
			out = append(out, room)
		}
	}
	return out, nil
}

func (m *MemoryRoomRepository) ListRoomsByParticipant(userID string) ([]domain.Room, error) {
	rooms, _ := m.ListRooms()
	var out []domain.Room
	for _, room := range rooms {
		if room.HasParticipant(userID) {
			out = append(out, room)
		}
	}
	return out, nil
}

func (m *MemoryRoomRepository) AppendSupplementalMessage(roomID string, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supplemental[roomID] = append(m.supplemental[roomID], msg)
	return nil
}

func (m *MemoryRoomRepository) SupplementalMessages(roomID string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Message, len(m.supplemental[roomID]))
	copy(out, m.supplemental[roomID])
	return out, nil
}

func (m *MemoryRoomRepository) PruneSupplementalBefore(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for roomID, messages := range m.supplemental {
		var kept []domain.Message
		for _, msg := range messages {
			if msg.SentAt.Before(cutoff) {
				pruned++
				continue
			}
			kept = append(kept, msg)
		}
		m.supplemental[roomID] = kept
	}
	return pruned, nil
}

// MemoryLedgerRepository is the in-memory ILedgerRepository counterpart.
type MemoryLedgerRepository struct {
	mu        sync.RWMutex
	histories map[string]domain.ViolationHistory
}

func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{histories: make(map[string]domain.ViolationHistory)}
}

func (m *MemoryLedgerRepository) GetHistory(userID string) (domain.ViolationHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history, ok := m.histories[userID]
	if !ok {
		return domain.NewViolationHistory(userID), nil
	}
	return history, nil
}

func (m *MemoryLedgerRepository) SaveHistory(history domain.ViolationHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[history.UserID] = history
	return nil
}

func (m *MemoryLedgerRepository) AllViolations() ([]domain.Violation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var violations []domain.Violation
	for _, history := range m.histories {
		violations = append(violations, history.Violations...)
	}
	return violations, nil
}

func (m *MemoryLedgerRepository) Stats(now time.Time) (ViolationStats, error) {
	violations, _ := m.AllViolations()
	return aggregateStats(violations, now), nil
}

// MemorySettingsRepository keeps the moderation settings in memory,
// starting from the shipped defaults.
type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings domain.ModerationSettings
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{settings: domain.DefaultModerationSettings()}
}

func (m *MemorySettingsRepository) Get() (domain.ModerationSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *MemorySettingsRepository) Update(settings domain.ModerationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}
