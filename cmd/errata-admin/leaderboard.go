package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/errata-app/errata-api/internal/platform/postgres"
	"github.com/errata-app/errata-api/internal/service/leaderboard"
)

func newLeaderboardCommand() *cobra.Command {
	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Manage the class leaderboard",
	}

	leaderboardCmd.AddCommand(newLeaderboardRebuildCommand())

	return leaderboardCmd
}

// newLeaderboardRebuildCommand recomputes every user's leaderboard entry
// from their error records. Useful after a manual data fix, since the
// board is otherwise only refreshed by live review activity.
func newLeaderboardRebuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute all leaderboard entries from error records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			log := slog.Default()

			service := leaderboard.NewLeaderboardService(
				postgres.NewPostgresLeaderboardStore(db, log),
				postgres.NewPostgresErrorRecordStore(db, log),
				postgres.NewPostgresXPStateStore(db, log),
				log,
			)

			userIDs, err := listUserIDs(ctx, db)
			if err != nil {
				return err
			}

			for _, userID := range userIDs {
				name := leaderboard.DefaultDisplayName(userID)
				if _, err := service.Refresh(ctx, userID, name); err != nil {
					return fmt.Errorf("failed to refresh entry for user %s: %w", userID, err)
				}
			}

			log.Info("leaderboard rebuilt", "users", len(userIDs))
			return nil
		},
	}
}

func listUserIDs(ctx context.Context, db *sql.DB) ([]uuid.UUID, error) {
	rows, err := db.QueryContext(ctx, "SELECT DISTINCT user_id FROM error_records")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return ids, nil
}
