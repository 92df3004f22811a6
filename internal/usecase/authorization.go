package usecase

import (
	"context"
	"log/slog"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/policy"
)

// AuthorizationGate decides whether an actor may mutate nodes of a project.
type AuthorizationGate struct {
	doc policy.PolicyDocument
}

func NewAuthorizationGate() *AuthorizationGate {
	return &AuthorizationGate{doc: policy.ProjectAdmin}
}

func requestContext(project domain.Project, actorID string) policy.RequestContext {
	adminIDs := make([]any, 0, len(project.Users))
	for _, id := range project.AdminIDs() {
		adminIDs = append(adminIDs, id)
	}
	return policy.RequestContext{
		Requester: actorID,
		Project: map[string]any{
			"id":       project.ID,
			"adminIds": adminIDs,
		},
	}
}

// IsProjectAdmin is a pure predicate over the project's user roles.
func (g *AuthorizationGate) IsProjectAdmin(project domain.Project, actorID string) bool {
	return g.allowed(project, actorID, policy.ActionNodeUpdate)
}

func (g *AuthorizationGate) allowed(project domain.Project, actorID, action string) bool {
	if actorID == "" {
		return false
	}
	ok, err := policy.Decide(g.doc, requestContext(project, actorID), action)
	if err != nil {
		slog.Error(
			"policy evaluation failed",
			slog.String("error", err.Error()),
			slog.String("module", "authorization"),
		)
		return false
	}
	return ok
}

// Authorize checks the requester carried by ctx against project for action.
func (g *AuthorizationGate) Authorize(ctx context.Context, project domain.Project, action string) error {
	actorID := domain.RequesterFromContext(ctx)
	if actorID == "" {
		return domain.AuthenticationError{}
	}
	if !g.allowed(project, actorID, action) {
		return domain.PermissionError{ProjectID: project.ID}
	}
	return nil
}
