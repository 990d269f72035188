package cmd

import (
	"log"

	"github.com/spf13/cobra"

	config "todo-api.com/todo-api/internal/configs"
)

var migrateConfigPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the todos table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(migrateConfigPath)
		if err != nil {
			return err
		}

		database, err := config.NewDatabaseClient(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := config.CloseDatabase(database); err != nil {
				log.Printf("failed to close database: %v", err)
			}
		}()

		if err := config.Migrate(database); err != nil {
			return err
		}

		log.Printf("todos table migrated in %s", cfg.DatabaseDSN)
		return nil
	},
}

func init() {
	addConfigFlag(migrateCmd.Flags(), &migrateConfigPath)
	rootCmd.AddCommand(migrateCmd)
}
