//go:generate go run go.uber.org/mock/mockgen -source=ledger.go -destination=../mocks/mock_ledger_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chatsphere/domain"
)

type ILedgerRepository interface {
	GetHistory(userID string) (domain.ViolationHistory, error)
	SaveHistory(history domain.ViolationHistory) error
	AllViolations() ([]domain.Violation, error)
	Stats(now time.Time) (ViolationStats, error)
}

// ViolationStats is the aggregate view operators read: totals plus
// per-type and per-severity breakdowns over the whole ledger.
type ViolationStats struct {
	Total      int                          `json:"total"`
	Today      int                          `json:"today"`
	ThisWeek   int                          `json:"this_week"`
	ByType     map[domain.ViolationType]int `json:"by_type"`
	BySeverity map[domain.Severity]int      `json:"by_severity"`
}

const ledgerPrefix = "ledger:"

// LedgerRepository persists one ViolationHistory document per user under
// "ledger:{user_id}". Histories are created lazily and never deleted.
type LedgerRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewLedgerRepository(db *badger.DB, log *slog.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, log: log}
}

// GetHistory returns the stored history, or a fresh empty one when the
// user has never violated. An unknown user is not an error.
func (l *LedgerRepository) GetHistory(userID string) (domain.ViolationHistory, error) {
	var history domain.ViolationHistory
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ledgerPrefix + userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &history)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.NewViolationHistory(userID), nil
	}
	if err != nil {
		return domain.ViolationHistory{}, err
	}
	return history, nil
}

func (l *LedgerRepository) SaveHistory(history domain.ViolationHistory) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history %s: %w", history.UserID, err)
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ledgerPrefix+history.UserID), data)
	})
}

// AllViolations flattens every user's history into one list sorted newest
// first, for operator review.
func (l *LedgerRepository) AllViolations() ([]domain.Violation, error) {
	var violations []domain.Violation
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(ledgerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var history domain.ViolationHistory
				if err := json.Unmarshal(val, &history); err != nil {
					return err
				}
				violations = append(violations, history.Violations...)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(violations, func(i, j int) bool {
		return violations[i].At.After(violations[j].At)
	})
	return violations, nil
}

func (l *LedgerRepository) Stats(now time.Time) (ViolationStats, error) {
	violations, err := l.AllViolations()
	if err != nil {
		return ViolationStats{}, err
	}
	return aggregateStats(violations, now), nil
}

func aggregateStats(violations []domain.Violation, now time.Time) ViolationStats {
	stats := ViolationStats{
		Total:      len(violations),
		ByType:     make(map[domain.ViolationType]int),
		BySeverity: make(map[domain.Severity]int),
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -7)

	for _, v := range violations {
		if !v.At.Before(startOfDay) {
			stats.Today++
		}
		if !v.At.Before(startOfWeek) {
			stats.ThisWeek++
		}
		stats.ByType[v.Type]++
		stats.BySeverity[v.Severity]++
	}
	return stats
}
