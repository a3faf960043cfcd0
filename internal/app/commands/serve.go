package commands

import (
	"github.com/spf13/cobra"

	"hcm/internal/app/server"
	"hcm/internal/platform/config"
)

func newServeCmd(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := server.New(cmd.Context(), *conf)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&conf.Addr, "addr", conf.Addr, "listen address")
	cmd.Flags().BoolVar(&conf.RunMigrations, "migrate", conf.RunMigrations, "apply pending migrations on start")
	cmd.Flags().BoolVar(&conf.RunSeed, "seed", conf.RunSeed, "load seed data on start")
	return cmd
}
