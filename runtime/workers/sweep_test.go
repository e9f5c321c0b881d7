package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chatsphere/domain"
	"chatsphere/lifecycle"
	"chatsphere/mocks"
	"chatsphere/repositories"
)

func TestRetentionWorkerPrunesOldMessages(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := repositories.NewMemoryRoomRepository()

	now := time.Now()
	old := domain.Message{ID: uuid.New(), Text: "ancient", SenderID: "alice", SentAt: now.Add(-8 * 24 * time.Hour)}
	fresh := domain.Message{ID: uuid.New(), Text: "recent", SenderID: "bob", SentAt: now.Add(-time.Hour)}
	req.NoError(store.AppendSupplementalMessage("official-1", old))
	req.NoError(store.AppendSupplementalMessage("official-1", fresh))

	worker := NewRetentionWorker(store, 7*24*time.Hour, 10*time.Millisecond, log)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req.NoError(worker.Run(ctx))

	remaining, err := store.SupplementalMessages("official-1")
	req.NoError(err)
	req.Len(remaining, 1)
	req.Equal("recent", remaining[0].Text)
}

func TestExpiryWorkerSweepsDeadRooms(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)

	store := repositories.NewMemoryRoomRepository()
	presence := mocks.NewMockPresenceOracle(ctrl)
	presence.EXPECT().IsUserActiveAnywhere("alice").Return(false).AnyTimes()
	identity := mocks.NewMockIdentityProvider(ctrl)

	manager := lifecycle.NewManager(store, presence, identity, lifecycle.DefaultConfig(), log)

	// An aged room saved directly, bypassing the creation quota.
	req.NoError(store.SaveRoom(domain.Room{
		ID:           "room-old",
		Name:         "Dusty",
		HostID:       "alice",
		Participants: []string{"alice"},
		Type:         domain.RoomPublic,
		CreatedAt:    time.Now().Add(-7 * time.Hour),
	}))

	worker := NewExpiryWorker(manager, 10*time.Millisecond, log)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req.NoError(worker.Run(ctx))

	rooms, err := store.ListRooms()
	req.NoError(err)
	req.Empty(rooms)
}
