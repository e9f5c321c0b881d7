// Package lifecycle owns rooms from creation to expiry: membership,
// invitations, the per-host creation quota and the host-presence expiry
// rule.
package lifecycle

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"chatsphere/contract"
	"chatsphere/domain"
	apperrors "chatsphere/errors"
	"chatsphere/repositories"
)

var validate = validator.New()

type Config struct {
	CreationWindow time.Duration
	CreationLimit  int
	ExpiryAfter    time.Duration
	RetentionAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		CreationWindow: time.Hour,
		CreationLimit:  2,
		ExpiryAfter:    6 * time.Hour,
		RetentionAfter: 7 * 24 * time.Hour,
	}
}

type CreateRoomRequest struct {
	Name   string          `validate:"required"`
	HostID string          `validate:"required"`
	Type   domain.RoomType `validate:"required,oneof=public private"`
	Icon   string
}

// Manager serializes mutations per room while letting distinct rooms
// proceed concurrently. Reads go straight to the store.
type Manager struct {
	store    repositories.IRoomRepository
	presence contract.PresenceOracle
	identity contract.IdentityProvider
	cfg      Config
	log      *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(
	store repositories.IRoomRepository,
	presence contract.PresenceOracle,
	identity contract.IdentityProvider,
	cfg Config,
	log *slog.Logger,
) *Manager {
	return &Manager{
		store:    store,
		presence: presence,
		identity: identity,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Manager) roomLock(roomID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[roomID] = lock
	}
	return lock
}

// CreateRoom validates the request, enforces the per-host creation quota
// and persists the new room with its opening announcement. The quota
// counts rooms the host created inside the rolling window; when exceeded,
// the returned RateLimitedError says how long until the oldest counted
// room falls out of the window.
func (m *Manager) CreateRoom(req CreateRoomRequest) (domain.Room, error) {
	if err := validate.Struct(req); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.Room{}, fmt.Errorf("%w: room name must not be blank", apperrors.ErrValidation)
	}

	now := m.now()
	if err := m.checkCreationQuota(req.HostID, now); err != nil {
		return domain.Room{}, err
	}

	nickname := m.identity.Nickname(req.HostID)
	room := domain.Room{
		ID:           "room-" + uuid.NewString(),
		Name:         req.Name,
		HostID:       req.HostID,
		Participants: []string{req.HostID},
		Type:         req.Type,
		Icon:         req.Icon,
		CreatedAt:    now,
	}
	room.PostMessage(domain.NewSystemMessage(
		fmt.Sprintf("%s created the %s room %q!", nickname, req.Type, req.Name), now))

	if err := m.store.SaveRoom(room); err != nil {
		return domain.Room{}, fmt.Errorf("save room %s: %w", room.ID, err)
	}
	m.log.Info("Room created", "room_id", room.ID, "host_id", req.HostID, "room_type", req.Type)
	return room, nil
}

func (m *Manager) checkCreationQuota(hostID string, now time.Time) error {
	rooms, err := m.store.ListRoomsByHost(hostID)
	if err != nil {
		return fmt.Errorf("list rooms by host %s: %w", hostID, err)
	}

	windowStart := now.Add(-m.cfg.CreationWindow)
	var recent []domain.Room
	for _, room := range rooms {
		if room.CreatedAt.After(windowStart) {
			recent = append(recent, room)
		}
	}
	if len(recent) < m.cfg.CreationLimit {
		return nil
	}

	oldest := recent[0]
	for _, room := range recent[1:] {
		if room.CreatedAt.Before(oldest.CreatedAt) {
			oldest = room
		}
	}
	return &apperrors.RateLimitedError{
		RetryAfter: oldest.CreatedAt.Add(m.cfg.CreationWindow).Sub(now),
		Limit:      m.cfg.CreationLimit,
	}
}

// JoinRoom adds the user to the room. Kicked users are refused for good
// until the host unkicks them; private rooms admit only invitees and the
// host. Joining a room you are already in is a no-op.
func (m *Manager) JoinRoom(roomID, userID string) (domain.Room, error) {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.GetRoom(roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if room.IsKicked(userID) {
		return domain.Room{}, apperrors.ErrAlreadyKicked
	}
	if room.Type == domain.RoomPrivate && !room.IsInvited(userID) && userID != room.HostID {
		return domain.Room{}, fmt.Errorf("%w: room is private", apperrors.ErrForbidden)
	}

	if !room.Join(userID) {
		return room, nil
	}
	room.PostMessage(domain.NewSystemMessage(
		fmt.Sprintf("%s joined the room", m.identity.Nickname(userID)), m.now()))

	if err := m.store.SaveRoom(room); err != nil {
		return domain.Room{}, fmt.Errorf("save room %s: %w", roomID, err)
	}
	return room, nil
}

// LeaveRoom removes the user. Leaving a room you are not in is a no-op.
func (m *Manager) LeaveRoom(roomID, userID string) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.GetRoom(roomID)
	if err != nil {
		return err
	}
	if !room.Leave(userID) {
		return nil
	}
	room.PostMessage(domain.NewSystemMessage(
		fmt.Sprintf("%s left the room", m.identity.Nickname(userID)), m.now()))

	if err := m.store.SaveRoom(room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	return nil
}

// KickUser removes the target from the room and blacklists them. Only the
// host may kick, and the host cannot kick themselves. Kicking an already
// kicked user succeeds without change.
func (m *Manager) KickUser(roomID, requestedBy, targetID string) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.GetRoom(roomID)
	if err != nil {
		return err
	}
	if requestedBy != room.HostID {
		return fmt.Errorf("%w: only the host can kick users", apperrors.ErrForbidden)
	}
	if targetID == room.HostID {
		return fmt.Errorf("%w: the host cannot be kicked", apperrors.ErrForbidden)
	}

	room.Kick(targetID)
	if err := m.store.SaveRoom(room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	m.log.Info("User kicked", "room_id", roomID, "user_id", targetID)
	return nil
}

// UnkickUser lifts the blacklist entry. The user does not rejoin
// automatically.
func (m *Manager) UnkickUser(roomID, requestedBy, targetID string) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.GetRoom(roomID)
	if err != nil {
		return err
	}
	if requestedBy != room.HostID {
		return fmt.Errorf("%w: only the host can unkick users", apperrors.ErrForbidden)
	}

	room.Unkick(targetID)
	if err := m.store.SaveRoom(room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	return nil
}

// InviteUser grants a user access to a private room. Inviting twice is a
// no-op.
func (m *Manager) InviteUser(roomID, requestedBy, targetID string) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.GetRoom(roomID)
	if err != nil {
		return err
	}
	if room.Type != domain.RoomPrivate {
		return fmt.Errorf("%w: only private rooms take invitations", apperrors.ErrValidation)
	}
	if requestedBy != room.HostID {
		return fmt.Errorf("%w: only the host can invite users", apperrors.ErrForbidden)
	}

	room.Invite(targetID)
	if err := m.store.SaveRoom(room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	return nil
}

// PostMessage appends the message to the room. For permanent rooms the
// message is also written to the supplemental log, where the retention
// sweep ages it out.
func (m *Manager) PostMessage(roomID string, msg domain.Message) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.GetRoom(roomID)
	if err != nil {
		return err
	}

	room.PostMessage(msg)
	if err := m.store.SaveRoom(room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	if room.IsOfficial {
		if err := m.store.AppendSupplementalMessage(roomID, msg); err != nil {
			return fmt.Errorf("append supplemental message to %s: %w", roomID, err)
		}
	}
	return nil
}

func (m *Manager) GetRoom(roomID string) (domain.Room, error) {
	return m.store.GetRoom(roomID)
}

// IsExpired applies the liveness rule: permanent rooms never expire; a
// user room younger than the expiry age is alive; past that age it
// survives only while its host is still active somewhere. A room without
// a host is expired as soon as it reaches the age.
func (m *Manager) IsExpired(room domain.Room) bool {
	if room.IsOfficial {
		return false
	}
	if room.Age(m.now()) < m.cfg.ExpiryAfter {
		return false
	}
	if room.HostID == "" {
		return true
	}
	return !m.presence.IsUserActiveAnywhere(room.HostID)
}

// ListActiveRooms returns every room that has not expired. Expired rooms
// are hidden here even before the sweep removes them.
func (m *Manager) ListActiveRooms() ([]domain.Room, error) {
	rooms, err := m.store.ListRooms()
	if err != nil {
		return nil, err
	}
	active := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if !m.IsExpired(room) {
			active = append(active, room)
		}
	}
	return active, nil
}

func (m *Manager) ListRoomsByHost(hostID string) ([]domain.Room, error) {
	return m.store.ListRoomsByHost(hostID)
}

// SweepExpired deletes every expired room and reports how many went.
func (m *Manager) SweepExpired() (int, error) {
	rooms, err := m.store.ListRooms()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, room := range rooms {
		if !m.IsExpired(room) {
			continue
		}
		if err := m.store.DeleteRoom(room.ID); err != nil {
			return deleted, fmt.Errorf("delete room %s: %w", room.ID, err)
		}
		m.log.Info("Expired room removed", "room_id", room.ID, "host_id", room.HostID)
		deleted++
	}
	return deleted, nil
}
