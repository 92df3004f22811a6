package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/utils"
)

var tracer = otel.Tracer("usecase")

const (
	ManifestChannel       = "manifests"
	ManifestResolvedEvent = "manifest.resolved"
)

// ManifestEvent is published when the generator reports a finished manifest.
type ManifestEvent struct {
	Type       string           `json:"type"`
	ManifestID string           `json:"manifestId"`
	Parent     domain.ParentRef `json:"parent"`
	RemoteURI  string           `json:"remoteUri"`
}

// ManifestSynchronizer keeps the local manifest of a node in step with its
// files and hands it to the remote generator. Completion arrives later
// through Complete.
type ManifestSynchronizer struct {
	repo      ManifestRepository
	gateway   ManifestGateway
	publisher Publisher
}

func NewManifestSynchronizer(repo ManifestRepository, gateway ManifestGateway, publisher Publisher) *ManifestSynchronizer {
	return &ManifestSynchronizer{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
	}
}

// displayFileName recovers the uploaded file name from the stored
// "<fileId>-<name>" form.
func displayFileName(f domain.File) string {
	return strings.TrimPrefix(f.Name, f.ID+"-")
}

func manifestImages(files []domain.File) []domain.ManifestImage {
	images := make([]domain.ManifestImage, 0, len(files))
	for _, f := range files {
		images = append(images, domain.ManifestImage{
			ID:    f.ID,
			Name:  displayFileName(f),
			Label: f.Title,
		})
	}
	return images
}

// manifestPayload is the document sent to the generator. Key order follows
// the stored manifest so generated output stays stable across syncs.
func manifestPayload(m domain.Manifest) utils.OrderedKVMap[any] {
	payload := utils.OrderedKVMap[any]{}
	payload.Set(m.Parent.ForeignKey(), m.Parent.ID)
	payload.Set("title", m.Title)
	payload.Set("label", m.Label)
	payload.Set("description", m.Description)
	payload.Set("attribution", m.Attribution)
	payload.Set("images", m.Images)
	payload.Set("_id", m.ID)
	return payload
}

// Sync derives the manifest of node from files, upserts it and dispatches
// it. The returned manifest reflects the local write even when the dispatch
// fails; that failure comes back as a domain.DispatchError.
func (s *ManifestSynchronizer) Sync(ctx context.Context, project domain.Project, node domain.Node, files []domain.File) (domain.Manifest, error) {
	ctx, span := tracer.Start(ctx, "ManifestSynchronizer.Sync")
	defer span.End()

	parent := domain.RefOf(node)
	span.SetAttributes(attribute.String("parent", parent.Key()))

	candidate := domain.Manifest{
		ID:          uuid.NewString(),
		Parent:      parent,
		Title:       node.DisplayTitle(),
		Label:       node.DisplayTitle(),
		Description: node.DisplayDescription(),
		Attribution: project.Title,
		Images:      manifestImages(files),
	}

	stored, err := s.repo.Upsert(ctx, candidate)
	if err != nil {
		span.RecordError(err)
		return domain.Manifest{}, errors.Wrap(err, "failed to upsert manifest")
	}

	err = s.gateway.Dispatch(ctx, manifestPayload(stored))
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(
			ctx, "manifest dispatch failed",
			slog.String("error", err.Error()),
			slog.String("manifest", stored.ID),
			slog.String("parent", parent.Key()),
			slog.String("module", "manifest"),
		)
		return stored, domain.DispatchError{Target: "manifest generator", Err: err}
	}

	return stored, nil
}

// Complete records the remote uri reported by the generator. Replays with
// the same values leave the manifest unchanged.
func (s *ManifestSynchronizer) Complete(ctx context.Context, completion domain.ManifestCompletion) (domain.Manifest, error) {
	ctx, span := tracer.Start(ctx, "ManifestSynchronizer.Complete")
	defer span.End()

	if completion.ManifestID == "" {
		return domain.Manifest{}, domain.ArgumentError{Field: "manifestId"}
	}
	if completion.ManifestURI == "" {
		return domain.Manifest{}, domain.ArgumentError{Field: "manifestUri"}
	}

	manifest, err := s.repo.SetRemoteURI(ctx, completion.ManifestID, completion.ManifestURI)
	if err != nil {
		span.RecordError(err)
		return domain.Manifest{}, err
	}

	if s.publisher != nil {
		event := ManifestEvent{
			Type:       ManifestResolvedEvent,
			ManifestID: manifest.ID,
			Parent:     manifest.Parent,
			RemoteURI:  manifest.RemoteURI,
		}
		if err := s.publisher.Publish(ctx, ManifestChannel, event); err != nil {
			slog.WarnContext(
				ctx, "failed to publish manifest event",
				slog.String("error", err.Error()),
				slog.String("module", "manifest"),
			)
		}
	}

	return manifest, nil
}

// Get returns the manifest of parent, or domain.ErrNotFound when the node
// was never synced.
func (s *ManifestSynchronizer) Get(ctx context.Context, parent domain.ParentRef) (domain.Manifest, error) {
	return s.repo.GetByParent(ctx, parent)
}
