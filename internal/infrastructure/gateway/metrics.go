package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	manifestDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivist_manifest_dispatch_total",
			Help: "Manifest payloads sent to the manifest generator, by result",
		},
		[]string{"result"},
	)

	itemUploadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivist_migration_upload_total",
			Help: "Items uploaded to the migration target, by result",
		},
		[]string{"result"},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
