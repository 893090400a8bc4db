package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			fmt.Println("Running migrations.")
			db, err := database.NewGorm(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close(db)

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = 60 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := database.Migrate(ctx, db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
