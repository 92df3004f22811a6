package rest

import (
	"encoding/json"
	"net"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/present/rest/presenter"
	"github.com/totegamma/archivist/internal/usecase"
)

// EntityHandler serves CRUD for one node kind under its plural path,
// e.g. /events or /people.
type EntityHandler[T domain.Node] struct {
	uc *usecase.EntityUsecase[T]
}

func NewEntityHandler[T domain.Node](uc *usecase.EntityUsecase[T]) *EntityHandler[T] {
	return &EntityHandler[T]{uc: uc}
}

func (h *EntityHandler[T]) RegisterRoutes(e *echo.Echo) {
	base := "/" + usecase.ListingType(h.uc.Kind())
	g := e.Group(base)
	g.GET("", h.handleList)
	g.POST("", h.handleCreate)
	g.GET("/slug/:slug", h.handleGetBySlug)
	g.GET("/:id", h.handleGet)
	g.GET("/:id/files", h.handleFiles)
	g.PATCH("/:id", h.handleUpdate)
	g.DELETE("/:id", h.handleDelete)
}

// hostnameOf picks the explicit hostname, falling back to the request host.
func hostnameOf(c echo.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	host := c.Request().Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func (h *EntityHandler[T]) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	offset, err := intParam(c, "offset", 0)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid offset parameter")
	}
	limit, err := intParam(c, "limit", 0)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid limit parameter")
	}

	filter := usecase.NodeFilter{
		ProjectID:    c.QueryParam("projectId"),
		CollectionID: c.QueryParam("collectionId"),
		TextSearch:   c.QueryParam("textsearch"),
		Offset:       offset,
		Limit:        limit,
	}
	if ids := c.QueryParam("ids"); ids != "" {
		filter.IDs = strings.Split(ids, ",")
	}

	nodes, err := h.uc.List(ctx, filter)
	if err != nil {
		return presenter.Error(c, err)
	}
	count, err := h.uc.Count(ctx, filter)
	if err != nil {
		return presenter.Error(c, err)
	}
	if nodes == nil {
		nodes = []T{}
	}

	return presenter.OK(c, echo.Map{
		"count": count,
		"nodes": nodes,
	})
}

func (h *EntityHandler[T]) handleGet(c echo.Context) error {
	node, err := h.uc.GetOne(c.Request().Context(), usecase.GetOneInput{ID: c.Param("id")})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, node)
}

func (h *EntityHandler[T]) handleGetBySlug(c echo.Context) error {
	node, err := h.uc.GetOne(c.Request().Context(), usecase.GetOneInput{Slug: c.Param("slug")})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, node)
}

func (h *EntityHandler[T]) handleFiles(c echo.Context) error {
	files, err := h.uc.Files(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	if files == nil {
		files = []domain.File{}
	}
	return presenter.OK(c, files)
}

type createRequest struct {
	Hostname string          `json:"hostname"`
	Node     json.RawMessage `json:"node"`
	Files    []domain.File   `json:"files"`
}

func (h *EntityHandler[T]) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid body")
	}
	if len(req.Node) == 0 || string(req.Node) == "null" {
		return presenter.BadRequestMessage(c, "node is required")
	}
	node := h.uc.New()
	if err := json.Unmarshal(req.Node, node); err != nil {
		return presenter.BadRequestMessage(c, "invalid node")
	}

	result, err := h.uc.Create(ctx, hostnameOf(c, req.Hostname), node, req.Files)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Mutation(c, result.Node, result.Files, result.Manifest, result.ManifestError)
}

type updateRequest struct {
	ProjectID string         `json:"projectId"`
	Patch     map[string]any `json:"patch"`
	Files     []domain.File  `json:"files"`
}

func (h *EntityHandler[T]) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid body")
	}

	result, err := h.uc.Update(ctx, usecase.UpdateInput{
		ID:        c.Param("id"),
		ProjectID: req.ProjectID,
		Patch:     req.Patch,
		Files:     req.Files,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Mutation(c, result.Node, result.Files, result.Manifest, result.ManifestError)
}

func (h *EntityHandler[T]) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.uc.Remove(ctx, c.Param("id"), hostnameOf(c, c.QueryParam("hostname")))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}
