package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/archivist/internal/domain"
)

type countingProjectRepo struct {
	project domain.Project
	calls   int
}

func (m *countingProjectRepo) Get(ctx context.Context, id string) (domain.Project, error) {
	m.calls++
	if id != m.project.ID {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}
	return m.project, nil
}

func (m *countingProjectRepo) GetByHostname(ctx context.Context, hostname string) (domain.Project, error) {
	m.calls++
	if hostname != m.project.Hostname {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}
	return m.project, nil
}

func TestCachedProjectRepository(t *testing.T) {
	inner := &countingProjectRepo{project: domain.Project{ID: "p1", Hostname: "ob.example.com", Title: "Old Believers"}}
	repo := NewCachedProjectRepository(inner, time.Minute)
	ctx := context.Background()

	p, err := repo.GetByHostname(ctx, "ob.example.com")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	// the hostname lookup also primes the id key
	_, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	_, err = repo.GetByHostname(ctx, "ob.example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 3, inner.calls)

}

func TestCachedProjectRepositoryExpires(t *testing.T) {
	inner := &countingProjectRepo{project: domain.Project{ID: "p1", Hostname: "ob.example.com"}}
	repo := NewCachedProjectRepository(inner, 20*time.Millisecond)
	ctx := context.Background()

	_, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	time.Sleep(50 * time.Millisecond)
	_, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestParentPointersRoundTrip(t *testing.T) {
	for _, kind := range domain.Kinds {
		parent := domain.ParentRef{Kind: kind, ID: "x-1"}
		e, iv, it, p := parentPointers(parent)
		assert.Equal(t, parent, parentFromPointers(e, iv, it, p))
		assert.Equal(t, string(kind)+"_id", parentColumn(kind))
	}
}

func TestManifestModelDropsNothing(t *testing.T) {
	m := domain.Manifest{
		ID:          "m1",
		Parent:      domain.ParentRef{Kind: domain.KindInterview, ID: "iv"},
		Title:       "T",
		Label:       "T",
		Description: "D",
		Attribution: "A",
		Images:      []domain.ManifestImage{{ID: "f", Name: "n.jpg", Label: "L"}},
		RemoteURI:   "https://iiif/1",
	}
	assert.Equal(t, m, manifestToDomain(manifestToModel(m)))
}
