package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/archivist/internal/domain"
)

func TestSyncPayload(t *testing.T) {
	f := newFixture()
	person := &domain.Person{Base: domain.Base{ID: "p-1", ProjectID: "p1"}, Name: "Avvakum", Bio: "Archpriest"}
	files := []domain.File{
		{ID: "f-1", Name: "f-1-portrait.jpg", Title: "Portrait"},
		{ID: "f-2", Name: "letter.png", Title: "Letter"},
	}

	manifest, err := f.sync.Sync(context.Background(), testProject, person, files)
	require.NoError(t, err)

	assert.Equal(t, "Avvakum", manifest.Title)
	assert.Equal(t, "Avvakum", manifest.Label)
	assert.Equal(t, "Archpriest", manifest.Description)
	assert.Equal(t, []domain.ManifestImage{
		{ID: "f-1", Name: "portrait.jpg", Label: "Portrait"},
		{ID: "f-2", Name: "letter.png", Label: "Letter"},
	}, manifest.Images)

	require.Len(t, f.gateway.payloads, 1)
	raw, err := json.Marshal(f.gateway.payloads[0])
	require.NoError(t, err)
	expected := `{"personId":"p-1","title":"Avvakum","label":"Avvakum","description":"Archpriest","attribution":"Old Believers Archive",` +
		`"images":[{"_id":"f-1","name":"portrait.jpg","label":"Portrait"},{"_id":"f-2","name":"letter.png","label":"Letter"}],"_id":"` + manifest.ID + `"}`
	assert.JSONEq(t, expected, string(raw))
}

func TestSyncPreservesIDAndRemoteURI(t *testing.T) {
	f := newFixture()
	item := &domain.Item{Base: domain.Base{ID: "i-1"}, Title: "Icon"}

	first, err := f.sync.Sync(context.Background(), testProject, item, nil)
	require.NoError(t, err)

	_, err = f.sync.Complete(context.Background(), domain.ManifestCompletion{ManifestID: first.ID, ManifestURI: "https://iiif.example.com/m/1"})
	require.NoError(t, err)

	item.Title = "Icon of the Saviour"
	second, err := f.sync.Sync(context.Background(), testProject, item, []domain.File{{ID: "f-1", Name: "f-1-icon.jpg"}})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "https://iiif.example.com/m/1", second.RemoteURI)
	assert.Equal(t, "Icon of the Saviour", second.Title)
	assert.Equal(t, domain.ManifestResolved, second.State())
	assert.Len(t, f.manifests.manifests, 1)
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newFixture()
	event := &domain.Event{Base: domain.Base{ID: "e-1"}, Title: "Founding Day"}
	manifest, err := f.sync.Sync(context.Background(), testProject, event, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ManifestDispatched, manifest.State())

	completion := domain.ManifestCompletion{ManifestID: manifest.ID, ManifestURI: "https://iiif.example.com/m/e-1"}
	once, err := f.sync.Complete(context.Background(), completion)
	require.NoError(t, err)
	twice, err := f.sync.Complete(context.Background(), completion)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	stored, err := f.sync.Get(context.Background(), domain.RefOf(event))
	require.NoError(t, err)
	assert.Equal(t, once, stored)
	assert.Equal(t, domain.ManifestResolved, stored.State())

	require.Len(t, f.publisher.events, 2)
	evt := f.publisher.events[0].(ManifestEvent)
	assert.Equal(t, ManifestResolvedEvent, evt.Type)
	assert.Equal(t, manifest.ID, evt.ManifestID)
}

func TestCompleteUnknownManifest(t *testing.T) {
	f := newFixture()
	_, err := f.sync.Complete(context.Background(), domain.ManifestCompletion{ManifestID: "nope", ManifestURI: "https://x"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, f.publisher.events)
}

func TestCompleteValidatesInput(t *testing.T) {
	f := newFixture()
	_, err := f.sync.Complete(context.Background(), domain.ManifestCompletion{ManifestURI: "https://x"})
	assert.True(t, errors.Is(err, domain.ErrArgument))

	_, err = f.sync.Complete(context.Background(), domain.ManifestCompletion{ManifestID: "m"})
	assert.True(t, errors.Is(err, domain.ErrArgument))
}

func TestManifestState(t *testing.T) {
	var missing *domain.Manifest
	assert.Equal(t, domain.ManifestUnsynced, missing.State())
	assert.Equal(t, domain.ManifestUnsynced, (&domain.Manifest{}).State())
	assert.Equal(t, domain.ManifestDispatched, (&domain.Manifest{ID: "m"}).State())
	assert.Equal(t, domain.ManifestResolved, (&domain.Manifest{ID: "m", RemoteURI: "u"}).State())
}
