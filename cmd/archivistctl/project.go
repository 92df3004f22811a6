package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/infrastructure/providers"
	"github.com/totegamma/archivist/internal/infrastructure/repository"
)

var (
	projectID       string
	projectTitle    string
	projectHostname string
	projectUsers    []string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage tenant projects",
}

var projectPutCmd = &cobra.Command{
	Use:   "put",
	Short: "Register a project or replace its title, hostname and users",
	RunE:  runProjectPut,
}

func init() {
	projectPutCmd.Flags().StringVar(&projectID, "id", "", "project id (generated when empty)")
	projectPutCmd.Flags().StringVar(&projectTitle, "title", "", "project title, used as manifest attribution")
	projectPutCmd.Flags().StringVar(&projectHostname, "hostname", "", "hostname the project is served on")
	projectPutCmd.Flags().StringArrayVar(&projectUsers, "user", nil, "member as userId[:role], role defaults to admin")
	_ = projectPutCmd.MarkFlagRequired("hostname")
	projectCmd.AddCommand(projectPutCmd)
	rootCmd.AddCommand(projectCmd)
}

// parseUsers reads userId[:role] members.
func parseUsers(entries []string) ([]domain.ProjectUser, error) {
	users := make([]domain.ProjectUser, 0, len(entries))
	for _, entry := range entries {
		id, role, found := strings.Cut(entry, ":")
		if !found {
			role = domain.ProjectRoleAdmin
		}
		switch role {
		case domain.ProjectRoleOwner, domain.ProjectRoleAdmin, domain.ProjectRoleEditor:
		default:
			return nil, fmt.Errorf("unknown role %q for user %q", role, id)
		}
		if id == "" {
			return nil, fmt.Errorf("empty user id in %q", entry)
		}
		users = append(users, domain.ProjectUser{UserID: id, Role: role})
	}
	return users, nil
}

func runProjectPut(cmd *cobra.Command, args []string) error {
	users, err := parseUsers(projectUsers)
	if err != nil {
		return err
	}

	conf, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	if err := providers.MigrateDatabase(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	project := domain.Project{
		ID:       projectID,
		Title:    projectTitle,
		Hostname: projectHostname,
		Users:    users,
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	if err := repository.NewProjectRepository(db).Upsert(cmd.Context(), project); err != nil {
		return err
	}
	cmd.Printf("Project %s saved (%s, %d admins).\n", project.ID, project.Hostname, len(project.AdminIDs()))
	return nil
}
