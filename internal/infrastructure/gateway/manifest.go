package gateway

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"

	"github.com/totegamma/archivist/client"
	"github.com/totegamma/archivist/internal/utils"
)

// ManifestGateway posts manifests to the remote generator, which calls
// responseURL back once the manifest is built.
type ManifestGateway struct {
	client      *client.Client
	endpoint    string
	responseURL string
}

func NewManifestGateway(cl *client.Client, endpoint, responseURL string) *ManifestGateway {
	return &ManifestGateway{
		client:      cl,
		endpoint:    endpoint,
		responseURL: responseURL,
	}
}

func (g *ManifestGateway) Dispatch(ctx context.Context, manifest utils.OrderedKVMap[any]) error {
	serialized, err := json.Marshal(manifest)
	if err != nil {
		return errors.Wrap(err, "failed to serialize manifest")
	}

	form := url.Values{
		"manifest":    {string(serialized)},
		"responseUrl": {g.responseURL},
	}
	err = g.client.PostForm(ctx, g.endpoint, form, client.Options{}, nil)
	manifestDispatchTotal.WithLabelValues(result(err)).Inc()
	return err
}
