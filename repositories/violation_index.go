package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"

	"chatsphere/domain"
)

// ViolationIndex is a full-text index over violation reasons and detected
// text, so operators can search the ledger by what was actually said
// instead of scanning user by user.
type ViolationIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewViolationIndex(path string, log *slog.Logger) (*ViolationIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("open violation index at %s: %w", path, err)
	}
	return &ViolationIndex{writer: writer, log: log}, nil
}

func (i *ViolationIndex) Close() error {
	return i.writer.Close()
}

// Index upserts one violation document keyed by its violation id.
func (i *ViolationIndex) Index(v domain.Violation) error {
	doc := bluge.NewDocument(v.ID).
		AddField(bluge.NewTextField("detected_text", v.DetectedText).StoreValue()).
		AddField(bluge.NewTextField("reason", v.Reason).StoreValue()).
		AddField(bluge.NewKeywordField("user_id", v.UserID).StoreValue()).
		AddField(bluge.NewKeywordField("violation_type", string(v.Type)).StoreValue()).
		AddField(bluge.NewKeywordField("severity", string(v.Severity)).StoreValue())

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index violation %s: %w", v.ID, err)
	}
	return nil
}

// Search returns the ids of the violations whose detected text matches the
// term, best matches first, capped at limit.
func (i *ViolationIndex) Search(ctx context.Context, term string, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Closing index reader failed", "error", err)
		}
	}()

	query := bluge.NewMatchQuery(term).SetField("detected_text")
	request := bluge.NewTopNSearch(limit, query)

	dmi, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search violations: %w", err)
	}

	var ids []string
	for {
		match, err := dmi.Next()
		if err != nil {
			return nil, fmt.Errorf("iterate matches: %w", err)
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
