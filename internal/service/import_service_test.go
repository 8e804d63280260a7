package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/legacy"
	"household-planner/internal/model"
)

func TestCopyHousehold(t *testing.T) {
	ctx := context.Background()
	src, err := legacy.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, src.Add(ctx, "Veer"))
	require.NoError(t, src.Add(ctx, "Avni"))
	require.NoError(t, src.Tasks().Save(ctx, "Veer", []model.Task{
		pendingTask("p", "2024-05-15"),
		doneTask("d", model.StatusDoneYesterday, at(14, 20, 0)),
	}))
	require.NoError(t, src.Profiles().Save(ctx, "Veer", model.StarProfile{
		Stars: 1,
		History: []model.StarEntry{{
			Timestamp:      time.Date(2024, time.May, 14, 14, 30, 0, 0, time.UTC),
			Reason:         "Completed task: task d",
			Amount:         1,
			RemainingStars: 1,
		}},
	}))

	h := newHarness(t, "Avni")
	dst := Stores{Members: h.members, Tasks: h.tasks, Profiles: h.profiles}
	from := Stores{Members: src, Tasks: src.Tasks(), Profiles: src.Profiles()}

	report, err := CopyHousehold(ctx, from, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"Veer"}, report.Members)
	assert.Equal(t, []string{"Avni"}, report.Skipped)
	assert.Equal(t, 2, report.Tasks)
	assert.Equal(t, 1, report.Entries)

	tasks := h.load(t, "Veer")
	require.Len(t, tasks, 2)
	assert.Equal(t, "p", tasks[0].ID)
	assert.Equal(t, model.StatusDoneYesterday, tasks[1].Status)

	profile, err := h.ledgerSvc.Profile(ctx, "Veer")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Stars)
	require.Len(t, profile.History, 1)
	assert.Equal(t, "Completed task: task d", profile.History[0].Reason)

	again, err := CopyHousehold(ctx, from, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, again.Members)
	assert.ElementsMatch(t, []string{"Veer", "Avni"}, again.Skipped)
}

func TestCopyHouseholdFillsSeededMembers(t *testing.T) {
	ctx := context.Background()
	src, err := legacy.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, src.Add(ctx, "Veer"))
	require.NoError(t, src.Add(ctx, "Avni"))
	require.NoError(t, src.Tasks().Save(ctx, "Veer", []model.Task{pendingTask("p", "2024-05-15")}))
	require.NoError(t, src.Profiles().Save(ctx, "Veer", model.StarProfile{Stars: 3}))
	require.NoError(t, src.Tasks().Save(ctx, "Avni", []model.Task{pendingTask("q", "2024-05-16")}))

	// Veer is seeded but untouched; Avni already has a task.
	h := newHarness(t, "Veer", "Avni")
	h.put(t, "Avni", pendingTask("own", "2024-05-15"))
	dst := Stores{Members: h.members, Tasks: h.tasks, Profiles: h.profiles}
	from := Stores{Members: src, Tasks: src.Tasks(), Profiles: src.Profiles()}

	report, err := CopyHousehold(ctx, from, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"Veer"}, report.Members)
	assert.Equal(t, []string{"Avni"}, report.Skipped)
	assert.Equal(t, 1, report.Tasks)

	names, err := h.members.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Veer", "Avni"}, names)

	veer := h.load(t, "Veer")
	require.Len(t, veer, 1)
	assert.Equal(t, "p", veer[0].ID)
	profile, err := h.ledgerSvc.Profile(ctx, "Veer")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Stars)

	avni := h.load(t, "Avni")
	require.Len(t, avni, 1)
	assert.Equal(t, "own", avni[0].ID)

	again, err := CopyHousehold(ctx, from, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, again.Members)
}
