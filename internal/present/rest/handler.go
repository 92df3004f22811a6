package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/present/rest/presenter"
	"github.com/totegamma/archivist/internal/usecase"
)

var manifestCompletionTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "archivist_manifest_completion_total",
		Help: "Manifest generator callbacks by result",
	},
	[]string{"result"},
)

// RouteRegisterer adds its routes to an echo instance.
type RouteRegisterer interface {
	RegisterRoutes(e *echo.Echo)
}

type Handler struct {
	nodes     *usecase.NodeResolver
	manifests *usecase.ManifestSynchronizer
	listing   *usecase.Listing
	signal    Subscriber
	entities  []RouteRegisterer
}

func NewHandler(
	nodes *usecase.NodeResolver,
	manifests *usecase.ManifestSynchronizer,
	listing *usecase.Listing,
	signal Subscriber,
	entities ...RouteRegisterer,
) *Handler {
	return &Handler{
		nodes:     nodes,
		manifests: manifests,
		listing:   listing,
		signal:    signal,
		entities:  entities,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.POST("/manifests", h.handleManifestCompletion)
	e.GET("/manifests/:kind/:id", h.handleManifest)
	e.GET("/nodes/:id", h.handleNode)
	e.GET("/nodes/:id/files", h.handleNodeFiles)
	e.GET("/v1", h.handleListing)
	e.GET("/v1/", h.handleListing)
	e.GET("/realtime", h.handleRealtime)

	for _, entity := range h.entities {
		entity.RegisterRoutes(e)
	}
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

// handleManifestCompletion is called by the manifest generator once a
// dispatched manifest has been built.
func (h *Handler) handleManifestCompletion(c echo.Context) error {
	ctx := c.Request().Context()

	var completion domain.ManifestCompletion
	if err := c.Bind(&completion); err != nil {
		manifestCompletionTotal.WithLabelValues("invalid").Inc()
		return presenter.BadRequestMessage(c, "invalid body")
	}

	_, err := h.manifests.Complete(ctx, completion)
	if err != nil {
		manifestCompletionTotal.WithLabelValues("error").Inc()
		return presenter.Error(c, err)
	}

	manifestCompletionTotal.WithLabelValues("ok").Inc()
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type manifestResponse struct {
	Manifest domain.Manifest      `json:"manifest"`
	State    domain.ManifestState `json:"state"`
}

func (h *Handler) handleManifest(c echo.Context) error {
	ctx := c.Request().Context()

	kind, ok := domain.ParseKind(c.Param("kind"))
	if !ok {
		return presenter.BadRequestMessage(c, "unknown kind")
	}

	manifest, err := h.manifests.Get(ctx, domain.ParentRef{Kind: kind, ID: c.Param("id")})
	if err != nil {
		return presenter.Error(c, err)
	}

	body, err := json.Marshal(manifestResponse{Manifest: manifest, State: manifest.State()})
	if err != nil {
		return presenter.Error(c, err)
	}

	etag := fmt.Sprintf("%q", fmt.Sprintf("%016x", xxh3.Hash(body)))

	c.Response().Header().Set("ETag", etag)
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (h *Handler) handleNode(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.nodes.GetNode(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, view)
}

func (h *Handler) handleNodeFiles(c echo.Context) error {
	ctx := c.Request().Context()

	files, err := h.nodes.GetFiles(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	if files == nil {
		files = []domain.File{}
	}
	return presenter.OK(c, files)
}

func (h *Handler) handleListing(c echo.Context) error {
	ctx := c.Request().Context()
	projectID := c.QueryParam("projectId")

	typ := c.QueryParam("type")
	if typ == "" {
		graph, err := h.listing.Graph(ctx, projectID)
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.OK(c, graph)
	}

	offset, err := intParam(c, "offset", 0)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid offset parameter")
	}
	limit, err := intParam(c, "limit", 0)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid limit parameter")
	}

	raw := map[string]string{}
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}

	page, err := h.listing.Page(ctx, usecase.ListingQuery{
		Type:      typ,
		ProjectID: projectID,
		Offset:    offset,
		Limit:     limit,
		Raw:       raw,
	})
	if err != nil {
		if errors.Is(err, domain.ErrArgument) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown type " + strconv.Quote(typ)})
		}
		return presenter.Error(c, err)
	}

	nodes := page.Nodes
	if nodes == nil {
		nodes = []domain.Node{}
	}
	resp := echo.Map{
		"pagination": page.Pagination,
		"error":      nil,
	}
	resp[usecase.ListingType(page.Kind)] = nodes
	return presenter.OK(c, resp)
}

func intParam(c echo.Context, name string, fallback int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}
