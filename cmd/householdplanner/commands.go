package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"household-planner/internal/config"
	"household-planner/internal/legacy"
	"household-planner/internal/service"
)

func rolloverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Move tasks completed before today to done_yesterday",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.rollover.RollOverAll(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "transitioned %d tasks\n", n)
			return err
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print today's household report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.gate.EnsureRolloverRan(cmd.Context()); err != nil {
				a.logger.Error().Err(err).Msg("rollover before report failed")
			}
			text, err := a.reminder.DailySummary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a legacy JSON data directory into the sqlite database",
		Long: `Copy members, tasks and star ledgers from a JSON data directory
(users.json and <name>_tasks.json) into DATABASE_URL. Members that already
have tasks or stars in the database are skipped. The configured MEMBERS are
seeded only after the copy, and only when the roster is still empty.

Examples:
  householdplanner import --from ./data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := os.Stat(from); err != nil {
				return fmt.Errorf("data dir %q: %w", from, err)
			}
			src, err := legacy.NewStore(from, a.logger)
			if err != nil {
				return err
			}
			dst := a.stores
			if a.cfg.Storage.Driver != config.DriverSQLite {
				stores, closeDB, err := openSQLite(a.cfg.Storage.DatabaseURL, a.logger)
				if err != nil {
					return err
				}
				defer closeDB()
				dst = stores
			}

			report, err := service.CopyHousehold(cmd.Context(),
				service.Stores{Members: src, Tasks: src.Tasks(), Profiles: src.Profiles()},
				dst, a.logger)
			if err != nil {
				return err
			}
			if err := service.NewMemberService(dst.Members, a.logger).Seed(cmd.Context(), a.cfg.Members); err != nil {
				return fmt.Errorf("seed members: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&from, "from", "data", "legacy data directory")
	return cmd
}
