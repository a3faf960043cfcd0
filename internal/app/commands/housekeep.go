package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"hcm/internal/app/server"
	"hcm/internal/domain/audit"
	"hcm/internal/platform/config"
	"hcm/internal/platform/jobs"
	"hcm/internal/transport/http/middleware"
)

func newHousekeepCmd(conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "housekeep",
		Short: "Expire idempotency keys and old audit events once",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connect(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := server.Housekeeping(*conf, &jobs.PGRunLog{DB: pool}, middleware.NewIdempotencyStore(pool), audit.New(pool))
			for _, task := range svc.Tasks() {
				details, err := svc.RunNow(cmd.Context(), task.Type, task.Run)
				if err != nil {
					return fmt.Errorf("%s: %w", task.Type, err)
				}
				slog.Info("housekeeping done", "jobType", task.Type, "details", details)
			}
			return nil
		},
	}
}
