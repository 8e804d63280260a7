package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ImportReport summarises a CopyHousehold run.
type ImportReport struct {
	Members []string `json:"members"`
	Skipped []string `json:"skipped"`
	Tasks   int      `json:"tasks"`
	Entries int      `json:"ledger_entries"`
}

// CopyHousehold copies every member with their tasks, star balance and
// ledger from one backend to another. A member already in dst is filled only
// while it is still empty (no tasks, no stars, no ledger), so a seeded roster
// takes the imported data and running it twice copies nothing new.
func CopyHousehold(ctx context.Context, src, dst Stores, logger zerolog.Logger) (ImportReport, error) {
	var report ImportReport

	names, err := src.Members.ListNames(ctx)
	if err != nil {
		return report, fmt.Errorf("list source members: %w", err)
	}
	existing, err := dst.Members.ListNames(ctx)
	if err != nil {
		return report, fmt.Errorf("list destination members: %w", err)
	}

	for _, name := range names {
		present := containsName(existing, name)
		if present {
			empty, err := isEmptyMember(ctx, dst, name)
			if err != nil {
				return report, err
			}
			if !empty {
				logger.Info().Str("member", name).Msg("member already has data, skipping")
				report.Skipped = append(report.Skipped, name)
				continue
			}
		}

		tasks, err := src.Tasks.Load(ctx, name)
		if err != nil {
			return report, fmt.Errorf("load tasks of %s: %w", name, err)
		}
		profile, err := src.Profiles.Load(ctx, name)
		if err != nil {
			return report, fmt.Errorf("load profile of %s: %w", name, err)
		}
		for i := range profile.History {
			profile.History[i].ID = 0
		}

		if !present {
			if err := dst.Members.Add(ctx, name); err != nil {
				return report, fmt.Errorf("add member %s: %w", name, err)
			}
		}
		if err := dst.Tasks.Save(ctx, name, tasks); err != nil {
			return report, fmt.Errorf("save tasks of %s: %w", name, err)
		}
		if err := dst.Profiles.Save(ctx, name, profile); err != nil {
			return report, fmt.Errorf("save profile of %s: %w", name, err)
		}

		logger.Info().
			Str("member", name).
			Int("tasks", len(tasks)).
			Int("stars", profile.Stars).
			Msg("member imported")
		report.Members = append(report.Members, name)
		report.Tasks += len(tasks)
		report.Entries += len(profile.History)
	}
	return report, nil
}

func isEmptyMember(ctx context.Context, stores Stores, name string) (bool, error) {
	tasks, err := stores.Tasks.Load(ctx, name)
	if err != nil {
		return false, fmt.Errorf("load destination tasks of %s: %w", name, err)
	}
	profile, err := stores.Profiles.Load(ctx, name)
	if err != nil {
		return false, fmt.Errorf("load destination profile of %s: %w", name, err)
	}
	return len(tasks) == 0 && profile.Stars == 0 && len(profile.History) == 0, nil
}
