package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/praxy/internal/scoring"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open("sqlite", filepath.Join(t.TempDir(), "data", "praxy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(id, user string, domain scoring.Domain, score int, at time.Time) Record {
	return Record{
		ID:        id,
		UserID:    user,
		Domain:    domain,
		Subject:   "cfo-budget-freeze",
		Score:     score,
		Source:    scoring.SourceFallback,
		Result:    json.RawMessage(fmt.Sprintf(`{"score":%d}`, score)),
		CreatedAt: at,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 9, 30, 0, 123, time.UTC)

	require.NoError(t, s.Save(ctx, record("r1", "u1", scoring.DomainCall, 75, at)))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, scoring.DomainCall, got.Domain)
	assert.Equal(t, "cfo-budget-freeze", got.Subject)
	assert.Equal(t, 75, got.Score)
	assert.Equal(t, scoring.SourceFallback, got.Source)
	assert.JSONEq(t, `{"score":75}`, string(got.Result))
	assert.True(t, at.Equal(got.CreatedAt))
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRequiresID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Save(context.Background(), Record{}))
}

func TestSaveDuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := record("dup", "u1", scoring.DomainRCA, 40, time.Now())
	require.NoError(t, s.Save(ctx, r))
	assert.Error(t, s.Save(ctx, r))
}

func TestSaveDefaultsCreatedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	before := time.Now().Add(-time.Second)

	require.NoError(t, s.Save(ctx, Record{ID: "r1", Domain: scoring.DomainRCA, Result: json.RawMessage(`{}`)}))
	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.After(before))
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, record("a", "u1", scoring.DomainCall, 50, base)))
	require.NoError(t, s.Save(ctx, record("b", "u1", scoring.DomainRCA, 60, base.Add(time.Minute))))
	require.NoError(t, s.Save(ctx, record("c", "u2", scoring.DomainCall, 70, base.Add(2*time.Minute))))
	require.NoError(t, s.Save(ctx, record("d", "u1", scoring.DomainCall, 80, base.Add(3*time.Minute))))

	ids := func(rs []Record) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{}, []string{"d", "c", "b", "a"}},
		{"by user", Filter{UserID: "u1"}, []string{"d", "b", "a"}},
		{"by domain", Filter{Domain: scoring.DomainCall}, []string{"d", "c", "a"}},
		{"by user and domain", Filter{UserID: "u1", Domain: scoring.DomainRCA}, []string{"b"}},
		{"limit", Filter{Limit: 2}, []string{"d", "c"}},
		{"no match", Filter{UserID: "nobody"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "praxy.db")
	ctx := context.Background()

	s, err := Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, record("keep", "u1", scoring.DomainCall, 42, time.Now())))
	require.NoError(t, s.Close())

	s, err = Open("sqlite", path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Score)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("sqlite", "")
	assert.Error(t, err)

	_, err = Open("postgres", "postgres://localhost")
	assert.ErrorContains(t, err, "unsupported driver")

	_, err = Open("mysql", "not a dsn at all")
	assert.ErrorContains(t, err, "parse mysql dsn")
}
