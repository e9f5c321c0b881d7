//go:generate go run go.uber.org/mock/mockgen -source=settings.go -destination=../mocks/mock_settings_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"chatsphere/domain"
)

type ISettingsRepository interface {
	Get() (domain.ModerationSettings, error)
	Update(settings domain.ModerationSettings) error
}

const settingsKey = "settings:moderation"

// SettingsRepository stores the moderation configuration as a single
// document. Reading before any write yields the shipped defaults.
type SettingsRepository struct {
	db *badger.DB
}

func NewSettingsRepository(db *badger.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (s *SettingsRepository) Get() (domain.ModerationSettings, error) {
	var settings domain.ModerationSettings
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(settingsKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &settings)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.DefaultModerationSettings(), nil
	}
	if err != nil {
		return domain.ModerationSettings{}, err
	}
	return settings, nil
}

func (s *SettingsRepository) Update(settings domain.ModerationSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(settingsKey), data)
	})
}
