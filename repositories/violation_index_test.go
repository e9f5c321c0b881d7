package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chatsphere/domain"
)

func TestViolationIndexSearch(t *testing.T) {
	req := require.New(t)
	index, err := NewViolationIndex(t.TempDir(), logs.GetLoggerFromLevel(slog.LevelError))
	req.NoError(err)
	t.Cleanup(func() { req.NoError(index.Close()) })

	req.NoError(index.Index(domain.Violation{
		ID:           "violation-1",
		UserID:       "alice",
		Type:         domain.ViolationScam,
		Severity:     domain.SeverityCritical,
		DetectedText: "free money",
		Reason:       `detected scam content: "free money"`,
	}))
	req.NoError(index.Index(domain.Violation{
		ID:           "violation-2",
		UserID:       "bob",
		Type:         domain.ViolationHarassment,
		Severity:     domain.SeverityHigh,
		DetectedText: "you are stupid",
		Reason:       `detected harassment content: "you are stupid"`,
	}))

	ids, err := index.Search(context.Background(), "money", 10)
	req.NoError(err)
	req.Equal([]string{"violation-1"}, ids)

	ids, err = index.Search(context.Background(), "stupid", 10)
	req.NoError(err)
	req.Equal([]string{"violation-2"}, ids)

	ids, err = index.Search(context.Background(), "bitcoin", 10)
	req.NoError(err)
	req.Empty(ids)
}
