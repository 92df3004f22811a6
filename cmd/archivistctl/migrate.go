package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/totegamma/archivist/internal/infrastructure/providers"
	"github.com/totegamma/archivist/internal/usecase"
)

var (
	migrateProject string
	migrateLimit   int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Export every node of a project to the item builder",
	Long: `Uploads the items, events, interviews and people of one project to the
configured migration endpoint, one node at a time with its files.
The run stops at the first failed upload; uploads made before it are kept.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateProject, "project", "", "source project id")
	migrateCmd.Flags().IntVar(&migrateLimit, "limit", 0, "max nodes per kind (0 exports all)")
	_ = migrateCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if conf.Migration.Endpoint == "" {
		return errors.New("migration.endpoint is not configured")
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	u := providers.NewUsecases(db, providers.Collaborators{
		Projects: providers.NewProjectRepository(db),
		Gateway:  providers.NewManifestGateway(conf.Manifest),
	})
	pipeline := u.Migration(providers.NewItemBuilder(conf.Migration))

	cmd.Printf("Migrating project %s to %s...\n", migrateProject, conf.Migration.Endpoint)
	report, runErr := pipeline.Run(cmd.Context(), usecase.MigrationInput{
		ProjectID: migrateProject,
		Limit:     migrateLimit,
	})

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if runErr != nil {
		return fmt.Errorf("migration aborted after %d uploads: %w", report.Uploaded, runErr)
	}
	cmd.Println("Migration finished.")
	return nil
}
