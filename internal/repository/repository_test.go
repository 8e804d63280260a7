package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"household-planner/internal/model"
)

// setupTestDB opens a throwaway SQLite file so every test gets a fresh schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func strptr(s string) *string { return &s }

func TestNewDBCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	db, err := NewDB(filepath.Join(dir, "planner.db"), zerolog.Nop())
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"planner.db", "planner.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL"},
		{"file:planner.db?cache=shared", "file:planner.db?cache=shared&_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL"},
		{"planner.db?_busy_timeout=100", "planner.db?_busy_timeout=100&_foreign_keys=on&_journal_mode=WAL"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared&_busy_timeout=5000&_foreign_keys=on"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withPragmas(tt.dsn), tt.dsn)
	}
}

func TestTaskRepository_LoadMissingIsEmpty(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	tasks, err := repo.Load(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepository_SaveReplacesInOrder(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	first := []model.Task{
		{ID: "c", Description: "third", Status: model.StatusPending, CreatedAt: "2024-05-01T10:00:00Z", DueDate: "2024-05-01"},
		{ID: "a", Description: "first", Status: model.StatusCompleted, CreatedAt: "2024-05-01T10:00:00Z", DueDate: "2024-05-01", CompletedAt: strptr("2024-05-01T11:00:00Z")},
		{ID: "b", Description: "broken", Status: model.StatusCompleted, CreatedAt: "garbage", CompletedAt: strptr("also garbage")},
	}
	require.NoError(t, repo.Save(ctx, "Avni", first))
	require.NoError(t, repo.Save(ctx, "Veer", []model.Task{{ID: "v", Description: "other", Status: model.StatusPending}}))

	loaded, err := repo.Load(ctx, "Avni")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{loaded[0].ID, loaded[1].ID, loaded[2].ID})
	assert.Nil(t, loaded[0].CompletedAt)
	require.NotNil(t, loaded[1].CompletedAt)
	assert.Equal(t, "2024-05-01T11:00:00Z", *loaded[1].CompletedAt)
	assert.Equal(t, "garbage", loaded[2].CreatedAt, "malformed values survive untouched")

	// Drop one task and reorder.
	require.NoError(t, repo.Save(ctx, "Avni", []model.Task{loaded[2], loaded[0]}))

	loaded, err = repo.Load(ctx, "Avni")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "b", loaded[0].ID)
	assert.Equal(t, "c", loaded[1].ID)

	others, err := repo.Load(ctx, "Veer")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestTaskRepository_SaveEmptyClears(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(setupTestDB(t))

	require.NoError(t, repo.Save(ctx, "Avni", []model.Task{{ID: "a", Description: "x", Status: model.StatusPending}}))
	require.NoError(t, repo.Save(ctx, "Avni", nil))

	tasks, err := repo.Load(ctx, "Avni")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestMemberRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	members := NewMemberRepository(db)
	tasks := NewTaskRepository(db)

	for _, name := range []string{"Veer", "Avni", "Drishti"} {
		require.NoError(t, members.Add(ctx, name))
	}
	assert.Error(t, members.Add(ctx, "Veer"), "names are unique")

	names, err := members.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Veer", "Avni", "Drishti"}, names)

	require.NoError(t, tasks.Save(ctx, "Avni", []model.Task{{ID: "a", Description: "x", Status: model.StatusPending}}))
	require.NoError(t, members.Remove(ctx, "Avni"))
	assert.ErrorIs(t, members.Remove(ctx, "Avni"), ErrMemberNotFound)

	left, err := tasks.Load(ctx, "Avni")
	require.NoError(t, err)
	assert.Empty(t, left)

	names, err = members.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Veer", "Drishti"}, names)
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	members := NewMemberRepository(db)
	profiles := NewProfileRepository(db)

	empty, err := profiles.Load(ctx, "Ghost")
	require.NoError(t, err)
	assert.Equal(t, model.StarProfile{}, empty)

	require.NoError(t, members.Add(ctx, "Veer"))

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	profile := model.StarProfile{
		Stars:   1,
		History: []model.StarEntry{{Timestamp: now, Reason: "Completed task", Amount: 1, RemainingStars: 1}},
	}
	require.NoError(t, profiles.Save(ctx, "Veer", profile))
	assert.NotZero(t, profile.History[0].ID)

	// Saving the same profile again must not duplicate the ledger.
	profile.Stars = 2
	profile.History = append(profile.History, model.StarEntry{Timestamp: now.Add(time.Hour), Reason: "Completed task", Amount: 1, RemainingStars: 2})
	require.NoError(t, profiles.Save(ctx, "Veer", profile))

	loaded, err := profiles.Load(ctx, "Veer")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Stars)
	require.Len(t, loaded.History, 2)
	assert.Equal(t, 1, loaded.History[0].RemainingStars)
	assert.Equal(t, 2, loaded.History[1].RemainingStars)

	assert.ErrorIs(t, profiles.Save(ctx, "Ghost", model.StarProfile{Stars: 3}), ErrMemberNotFound)
}
