package lifecycle

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chatsphere/domain"
	apperrors "chatsphere/errors"
	"chatsphere/mocks"
	"chatsphere/repositories"
)

func newTestManager(t *testing.T) (*Manager, *repositories.MemoryRoomRepository, *mocks.MockPresenceOracle, *time.Time) {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := repositories.NewMemoryRoomRepository()
	presence := mocks.NewMockPresenceOracle(ctrl)
	identity := mocks.NewMockIdentityProvider(ctrl)
	identity.EXPECT().Nickname(gomock.Any()).DoAndReturn(func(userID string) string {
		return "nick-" + userID
	}).AnyTimes()

	manager := NewManager(store, presence, identity, DefaultConfig(), logs.GetLoggerFromLevel(slog.LevelDebug))
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return clock }
	return manager, store, presence, &clock
}

func TestCreateRoomValidation(t *testing.T) {
	req := require.New(t)
	manager, _, _, _ := newTestManager(t)

	_, err := manager.CreateRoom(CreateRoomRequest{Name: "", HostID: "alice", Type: domain.RoomPublic})
	req.ErrorIs(err, apperrors.ErrValidation)

	_, err = manager.CreateRoom(CreateRoomRequest{Name: "   ", HostID: "alice", Type: domain.RoomPublic})
	req.ErrorIs(err, apperrors.ErrValidation)

	_, err = manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "", Type: domain.RoomPublic})
	req.ErrorIs(err, apperrors.ErrValidation)
}

func TestCreateRoomAnnouncesAndHosts(t *testing.T) {
	req := require.New(t)
	manager, _, _, _ := newTestManager(t)

	room, err := manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "alice", Type: domain.RoomPrivate})
	req.NoError(err)
	req.Equal("alice", room.HostID)
	req.Equal([]string{"alice"}, room.Participants)
	req.Len(room.Messages, 1)
	req.Equal(domain.SystemSenderID, room.Messages[0].SenderID)
	req.Equal(`nick-alice created the private room "Lounge"!`, room.Messages[0].Text)
}

func TestCreateRoomRateLimit(t *testing.T) {
	req := require.New(t)
	manager, _, _, clock := newTestManager(t)

	for i := 0; i < 2; i++ {
		_, err := manager.CreateRoom(CreateRoomRequest{
			Name: fmt.Sprintf("Room %d", i), HostID: "alice", Type: domain.RoomPublic,
		})
		req.NoError(err)
		*clock = clock.Add(10 * time.Minute)
	}

	// Third room within the hour is refused; the wait is measured from the
	// oldest room counted against the quota.
	_, err := manager.CreateRoom(CreateRoomRequest{Name: "Room 2", HostID: "alice", Type: domain.RoomPublic})
	req.ErrorIs(err, apperrors.ErrRateLimited)
	var rateErr *apperrors.RateLimitedError
	req.ErrorAs(err, &rateErr)
	req.Equal(40, rateErr.RetryAfterMinutes())

	// A different host is not affected.
	_, err = manager.CreateRoom(CreateRoomRequest{Name: "Other", HostID: "bob", Type: domain.RoomPublic})
	req.NoError(err)

	// 61 minutes after the first room it has left the window.
	*clock = clock.Add(41 * time.Minute)
	_, err = manager.CreateRoom(CreateRoomRequest{Name: "Room 2", HostID: "alice", Type: domain.RoomPublic})
	req.NoError(err)
}

func TestJoinRoom(t *testing.T) {
	req := require.New(t)
	manager, _, _, _ := newTestManager(t)

	room, err := manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "alice", Type: domain.RoomPublic})
	req.NoError(err)

	joined, err := manager.JoinRoom(room.ID, "bob")
	req.NoError(err)
	req.True(joined.HasParticipant("bob"))
	req.Equal("nick-bob joined the room", joined.Messages[len(joined.Messages)-1].Text)

	// Joining again changes nothing, no duplicate announcement.
	again, err := manager.JoinRoom(room.ID, "bob")
	req.NoError(err)
	req.Equal(len(joined.Messages), len(again.Messages))
	req.Len(again.Participants, 2)

	_, err = manager.JoinRoom("room-missing", "bob")
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func TestJoinPrivateRoomRequiresInvitation(t *testing.T) {
	req := require.New(t)
	manager, _, _, _ := newTestManager(t)

	room, err := manager.CreateRoom(CreateRoomRequest{Name: "Club", HostID: "alice", Type: domain.RoomPrivate})
	req.NoError(err)

	_, err = manager.JoinRoom(room.ID, "bob")
	req.ErrorIs(err, apperrors.ErrForbidden)

	req.NoError(manager.InviteUser(room.ID, "alice", "bob"))
	joined, err := manager.JoinRoom(room.ID, "bob")
	req.NoError(err)
	req.True(joined.HasParticipant("bob"))

	// Only the host can invite, and only to private rooms.
	req.ErrorIs(manager.InviteUser(room.ID, "bob", "carol"), apperrors.ErrForbidden)
	public, err := manager.CreateRoom(CreateRoomRequest{Name: "Open", HostID: "carol", Type: domain.RoomPublic})
	req.NoError(err)
	req.ErrorIs(manager.InviteUser(public.ID, "carol", "bob"), apperrors.ErrValidation)
}

func TestKickAndUnkick(t *testing.T) {
	req := require.New(t)
	manager, _, _, _ := newTestManager(t)

	room, err := manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "alice", Type: domain.RoomPublic})
	req.NoError(err)
	_, err = manager.JoinRoom(room.ID, "bob")
	req.NoError(err)

	req.ErrorIs(manager.KickUser(room.ID, "bob", "alice"), apperrors.ErrForbidden)
	req.ErrorIs(manager.KickUser(room.ID, "alice", "alice"), apperrors.ErrForbidden)

	req.NoError(manager.KickUser(room.ID, "alice", "bob"))
	kicked, err := manager.GetRoom(room.ID)
	req.NoError(err)
	req.False(kicked.HasParticipant("bob"))
	req.True(kicked.IsKicked("bob"))

	// Kicked users cannot come back until unkicked.
	_, err = manager.JoinRoom(room.ID, "bob")
	req.ErrorIs(err, apperrors.ErrForbidden)
	req.ErrorIs(err, apperrors.ErrAlreadyKicked)

	// Kicking again is a no-op, no duplicate blacklist entry.
	req.NoError(manager.KickUser(room.ID, "alice", "bob"))
	kicked, err = manager.GetRoom(room.ID)
	req.NoError(err)
	req.Len(kicked.KickedIDs, 1)

	req.NoError(manager.UnkickUser(room.ID, "alice", "bob"))
	rejoined, err := manager.JoinRoom(room.ID, "bob")
	req.NoError(err)
	req.True(rejoined.HasParticipant("bob"))
	req.False(rejoined.IsKicked("bob"))
}

func TestLeaveRoom(t *testing.T) {
	req := require.New(t)
	manager, _, _, _ := newTestManager(t)

	room, err := manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "alice", Type: domain.RoomPublic})
	req.NoError(err)
	_, err = manager.JoinRoom(room.ID, "bob")
	req.NoError(err)

	req.NoError(manager.LeaveRoom(room.ID, "bob"))
	left, err := manager.GetRoom(room.ID)
	req.NoError(err)
	req.False(left.HasParticipant("bob"))
	req.Equal("nick-bob left the room", left.Messages[len(left.Messages)-1].Text)

	// Leaving a room you are not in is a no-op.
	before := len(left.Messages)
	req.NoError(manager.LeaveRoom(room.ID, "bob"))
	after, err := manager.GetRoom(room.ID)
	req.NoError(err)
	req.Len(after.Messages, before)
}

func TestPostMessageOfficialRoomDuplicatesToSupplementalLog(t *testing.T) {
	req := require.New(t)
	manager, store, _, clock := newTestManager(t)
	req.NoError(manager.SeedOfficialRooms())

	msg := domain.Message{ID: uuid.New(), Text: "hello all", SenderID: "alice", SentAt: *clock}
	req.NoError(manager.PostMessage("official-1", msg))

	room, err := manager.GetRoom("official-1")
	req.NoError(err)
	req.Equal("hello all", room.Messages[len(room.Messages)-1].Text)

	supplemental, err := store.SupplementalMessages("official-1")
	req.NoError(err)
	req.Len(supplemental, 1)
	req.Equal("hello all", supplemental[0].Text)

	// User rooms never write to the supplemental log.
	user, err := manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "alice", Type: domain.RoomPublic})
	req.NoError(err)
	req.NoError(manager.PostMessage(user.ID, msg))
	supplemental, err = store.SupplementalMessages(user.ID)
	req.NoError(err)
	req.Empty(supplemental)
}

func TestIsExpired(t *testing.T) {
	req := require.New(t)
	manager, _, presence, clock := newTestManager(t)
	req.NoError(manager.SeedOfficialRooms())

	room, err := manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "alice", Type: domain.RoomPublic})
	req.NoError(err)

	// Young rooms live regardless of presence.
	req.False(manager.IsExpired(room))

	official, err := manager.GetRoom("official-1")
	req.NoError(err)

	*clock = clock.Add(7 * time.Hour)
	req.False(manager.IsExpired(official))

	presence.EXPECT().IsUserActiveAnywhere("alice").Return(true)
	req.False(manager.IsExpired(room))

	presence.EXPECT().IsUserActiveAnywhere("alice").Return(false)
	req.True(manager.IsExpired(room))

	// Hostless aged rooms expire without a presence lookup.
	orphan := room
	orphan.HostID = ""
	req.True(manager.IsExpired(orphan))
}

func TestSweepExpired(t *testing.T) {
	req := require.New(t)
	manager, _, presence, clock := newTestManager(t)
	req.NoError(manager.SeedOfficialRooms())

	room, err := manager.CreateRoom(CreateRoomRequest{Name: "Lounge", HostID: "alice", Type: domain.RoomPublic})
	req.NoError(err)

	*clock = clock.Add(7 * time.Hour)
	presence.EXPECT().IsUserActiveAnywhere("alice").Return(false).AnyTimes()

	active, err := manager.ListActiveRooms()
	req.NoError(err)
	req.Len(active, len(officialRooms)) // the user room is already hidden

	deleted, err := manager.SweepExpired()
	req.NoError(err)
	req.Equal(1, deleted)

	_, err = manager.GetRoom(room.ID)
	req.ErrorIs(err, apperrors.ErrNotFound)

	// Official rooms survive every sweep.
	deleted, err = manager.SweepExpired()
	req.NoError(err)
	req.Zero(deleted)
}

func TestSeedOfficialRoomsIsIdempotent(t *testing.T) {
	req := require.New(t)
	manager, store, _, _ := newTestManager(t)

	req.NoError(manager.SeedOfficialRooms())
	room, err := manager.GetRoom("official-1")
	req.NoError(err)
	req.True(room.IsOfficial)
	req.Len(room.Messages, 1)

	// Post a message, reseed, the room keeps its state.
	req.NoError(manager.PostMessage("official-1", domain.Message{ID: uuid.New(), Text: "hi", SenderID: "alice"}))
	req.NoError(manager.SeedOfficialRooms())

	room, err = manager.GetRoom("official-1")
	req.NoError(err)
	req.Len(room.Messages, 2)

	rooms, err := store.ListRooms()
	req.NoError(err)
	req.Len(rooms, len(officialRooms))
}
