package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openkraft/codegate/internal/adapters/outbound/postgres"
	"github.com/openkraft/codegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	url := os.Getenv("CODEGATE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CODEGATE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := postgres.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func TestOpen_RequiresURL(t *testing.T) {
	_, err := postgres.Open(context.Background(), "")
	assert.ErrorIs(t, err, postgres.ErrNotConfigured)
}

func TestStore_SaveAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	source := "test-" + uuid.NewString()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, score := range []int{40, 70, 90} {
		r := &domain.ScanReport{
			ID:         uuid.NewString(),
			Source:     source,
			AnalyzedAt: base.Add(time.Duration(i) * time.Hour),
			Result: domain.ScoreResult{
				Score:            score,
				Grade:            domain.GradeD,
				RoleLevel:        domain.RoleJunior,
				DeploymentStatus: domain.StatusCaution,
				Strengths:        []string{"s"},
				Weaknesses:       []string{},
			},
			Findings: []domain.Finding{{
				Severity: domain.SeverityHigh, Category: domain.CategoryCORS, FilePath: "a.js", LineNumber: 1,
			}},
			Counts: domain.SeverityCounts{High: 1},
		}
		require.NoError(t, s.SaveReport(ctx, r))
	}

	entries, err := s.RecentReports(ctx, source, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 70, entries[0].Score)
	assert.Equal(t, 90, entries[1].Score)
	assert.Equal(t, 1, entries[1].High)
}

func TestStore_RecentWithoutLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	source := "test-" + uuid.NewString()

	for _, score := range []int{10, 20, 30} {
		require.NoError(t, s.SaveReport(ctx, &domain.ScanReport{
			ID:         uuid.NewString(),
			Source:     source,
			AnalyzedAt: time.Now().UTC(),
			Result:     domain.ScoreResult{Score: score, Strengths: []string{}, Weaknesses: []string{}},
		}))
	}

	entries, err := s.RecentReports(ctx, source, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
