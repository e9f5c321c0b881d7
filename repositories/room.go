//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"chatsphere/domain"
	apperrors "chatsphere/errors"
)

type IRoomRepository interface {
	SaveRoom(room domain.Room) error
	GetRoom(id string) (domain.Room, error)
	DeleteRoom(id string) error
	ListRooms() ([]domain.Room, error)
	ListRoomsByHost(hostID string) ([]domain.Room, error)
	ListRoomsByParticipant(userID string) ([]domain.Room, error)
	AppendSupplementalMessage(roomID string, msg domain.Message) error
	SupplementalMessages(roomID string) ([]domain.Message, error)
	PruneSupplementalBefore(cutoff time.Time) (int, error)
}

const (
	roomPrefix         = "room:"
	supplementalPrefix = "official:"
)

// RoomRepository persists rooms in BadgerDB. A room document lives under
// "room:{id}". Supplemental messages of permanent rooms live under their
// own keys, "official:{room_id}:{timestamp_padded}:{uuid}", so that:
//  1. a prefix scan returns them in chronological order (19-digit zero
//     padding makes the lexicographical order match time order),
//  2. the retention sweep can judge expiry from the key alone, without
//     unmarshalling values.
type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) *RoomRepository {
	return &RoomRepository{db: db, log: log}
}

func (r *RoomRepository) SaveRoom(room domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", room.ID, err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(roomPrefix+room.ID), data)
	})
}

func (r *RoomRepository) GetRoom(id string) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(roomPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &room)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, fmt.Errorf("room %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRepository) DeleteRoom(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(roomPrefix + id))
	})
}

func (r *RoomRepository) ListRooms() ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(roomPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var room domain.Room
				if err := json.Unmarshal(val, &room); err != nil {
					return err
				}
				rooms = append(rooms, room)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rooms, err
}

func (r *RoomRepository) ListRoomsByHost(hostID string) ([]domain.Room, error) {
	rooms, err := r.ListRooms()
	if err != nil {
		return nil, err
	}
	return lo.Filter(rooms, func(room domain.Room, _ int) bool {
		return room.HostID == hostID
	}), nil
}

func (r *RoomRepository) ListRoomsByParticipant(userID string) ([]domain.Room, error) {
	rooms, err := r.ListRooms()
	if err != nil {
		return nil, err
	}
	return lo.Filter(rooms, func(room domain.Room, _ int) bool {
		return room.HasParticipant(userID)
	}), nil
}

func supplementalKey(roomID string, msg domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s",
		supplementalPrefix, roomID, msg.SentAt.UnixNano(), msg.ID))
}

func (r *RoomRepository) AppendSupplementalMessage(roomID string, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message %s: %w", msg.ID, err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(supplementalKey(roomID, msg), data)
	})
}

func (r *RoomRepository) SupplementalMessages(roomID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(supplementalPrefix + roomID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// PruneSupplementalBefore removes every supplemental message older than
// the cutoff, across all rooms. Expiry is decided from the padded
// timestamp embedded in the key; values are never read. Returns the
// number of messages dropped.
func (r *RoomRepository) PruneSupplementalBefore(cutoff time.Time) (int, error) {
	var expired [][]byte
	cutoffNanos := fmt.Sprintf("%019d", cutoff.UnixNano())

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(supplementalPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			// key layout: official:{room_id}:{timestamp}:{uuid}
			parts := splitSupplementalKey(key)
			if parts == nil {
				r.log.Warn("Skipping malformed supplemental key", "key", string(key))
				continue
			}
			if parts.timestamp < cutoffNanos {
				expired = append(expired, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		for _, key := range expired {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(expired), nil
}

type supplementalKeyParts struct {
	roomID    string
	timestamp string
}

func splitSupplementalKey(key []byte) *supplementalKeyParts {
	s := string(key)
	if len(s) <= len(supplementalPrefix) {
		return nil
	}
	rest := s[len(supplementalPrefix):]
	// room ids contain no colon; the timestamp is the second segment
	var roomID, timestamp string
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			roomID = rest[:i]
			remainder := rest[i+1:]
			for j := 0; j < len(remainder); j++ {
				if remainder[j] == ':' {
					timestamp = remainder[:j]
					break
				}
			}
			break
		}
	}
	if roomID == "" || len(timestamp) != 19 {
		return nil
	}
	return &supplementalKeyParts{roomID: roomID, timestamp: timestamp}
}
