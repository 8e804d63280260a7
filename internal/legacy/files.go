package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"household-planner/internal/model"
)

// TaskFiles stores each member's tasks in <name>_tasks.json.
type TaskFiles struct {
	store *Store
}

func (f *TaskFiles) Load(_ context.Context, member string) ([]model.Task, error) {
	data, err := os.ReadFile(f.store.taskPath(member))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.store.logger.Warn().Err(err).Str("member", member).Msg("read task file")
		}
		return []model.Task{}, nil
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		f.store.logger.Warn().Err(err).Str("member", member).Msg("task file is corrupt, treating as empty")
		return []model.Task{}, nil
	}
	for i := range tasks {
		tasks[i].Member = member
		tasks[i].Position = i
	}
	return tasks, nil
}

func (f *TaskFiles) Save(_ context.Context, member string, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return writeJSONFile(f.store.taskPath(member), tasks)
}

// ProfileFile stores star balances and ledgers inside users.json.
type ProfileFile struct {
	store *Store
}

func (p *ProfileFile) Load(_ context.Context, member string) (model.StarProfile, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	_, records := p.store.readUsers()
	rec := records[member]
	return model.StarProfile{Stars: rec.Stars, History: rec.StarHistory}, nil
}

func (p *ProfileFile) Save(_ context.Context, member string, profile model.StarProfile) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	names, records := p.store.readUsers()
	rec, ok := records[member]
	if !ok {
		return ErrMemberNotFound
	}
	rec.Stars = profile.Stars
	rec.StarHistory = profile.History
	if rec.StarHistory == nil {
		rec.StarHistory = []model.StarEntry{}
	}
	records[member] = rec
	return p.store.writeUsers(names, records)
}
