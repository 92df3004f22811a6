package gateway

import (
	"context"

	"github.com/totegamma/archivist/client"
	"github.com/totegamma/archivist/internal/domain"
)

type itemRequest struct {
	Item  domain.TargetItem   `json:"item"`
	Files []domain.TargetFile `json:"files"`
}

// ItemBuilder uploads migrated nodes to the target system's item endpoint
// using basic auth.
type ItemBuilder struct {
	client   *client.Client
	endpoint string
	opts     client.Options
}

func NewItemBuilder(cl *client.Client, endpoint, username, password string) *ItemBuilder {
	return &ItemBuilder{
		client:   cl,
		endpoint: endpoint,
		opts: client.Options{
			BasicUser:     username,
			BasicPassword: password,
		},
	}
}

func (b *ItemBuilder) ProcessItem(ctx context.Context, item domain.TargetItem, files []domain.TargetFile) error {
	if files == nil {
		files = []domain.TargetFile{}
	}
	err := b.client.PostJSON(ctx, b.endpoint, itemRequest{Item: item, Files: files}, b.opts, nil)
	itemUploadTotal.WithLabelValues(result(err)).Inc()
	return err
}
