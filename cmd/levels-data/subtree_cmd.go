package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/levels/modules/levels/infrastructure/persistence"
	"github.com/iota-uz/levels/pkg/composables"
)

type subtreeOutput struct {
	Command    string   `json:"command"`
	DurationMS int64    `json:"duration_ms"`
	Result     []string `json:"result"`
}

func newSubtreeCmd() *cobra.Command {
	var levelID string

	cmd := &cobra.Command{
		Use:   "subtree",
		Short: "Print the id closure of a level, parents before children",
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := uuid.Parse(levelID)
			if err != nil {
				return fmt.Errorf("invalid --level: %w", err)
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			repo := persistence.NewLevelRepository()

			start := time.Now()
			var ids []uuid.UUID
			err = composables.InTx(ctx, func(ctx context.Context) error {
				var err error
				ids, err = repo.ListSubtreeIDs(ctx, lid)
				return err
			})
			if err != nil {
				return err
			}

			out := subtreeOutput{
				Command:    "subtree",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     make([]string, 0, len(ids)),
			}
			for _, id := range ids {
				out.Result = append(out.Result, id.String())
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&levelID, "level", "", "Level UUID (required)")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}
