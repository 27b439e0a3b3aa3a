package handlers

import (
	"context"
	"errors"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogService is the service contract behind a CatalogHandler.
// *services.ProductService and *services.InventoryItemService satisfy it.
type CatalogService interface {
	List(ctx context.Context, name string) []models.ParentDTO
	Top3(ctx context.Context) []models.ParentDTO
	ListByOptionName(ctx context.Context, name string) ([]models.ParentDTO, error)
	Get(ctx context.Context, id string) (models.ParentDTO, error)
	Create(ctx context.Context, req *models.ParentRequest) (models.ParentDTO, error)
	Update(ctx context.Context, id string, req *models.ParentRequest) error
	Delete(ctx context.Context, id string) error

	ListOptions(ctx context.Context, parentID string) ([]models.OptionDTO, error)
	GetOption(ctx context.Context, parentID, optionID string) (models.OptionDTO, error)
	CreateOption(ctx context.Context, parentID string, req *models.OptionRequest) (models.OptionDTO, error)
	UpdateOption(ctx context.Context, parentID, optionID string, req *models.OptionRequest) error
	DeleteOption(ctx context.Context, parentID, optionID string) error
}

// CatalogHandler handles HTTP requests for one catalog resource and its options.
type CatalogHandler struct {
	service  CatalogService
	prefix   string
	withTop3 bool
}

// NewProductHandler creates a handler serving /products.
func NewProductHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		prefix:  "/products",
	}
}

// NewInventoryItemHandler creates a handler serving /inventoryitems, including /top3.
func NewInventoryItemHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		prefix:   "/inventoryitems",
		withTop3: true,
	}
}

// RegisterRoutes registers the resource routes. guards run before every
// mutating route (POST, PUT, DELETE).
func (h *CatalogHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	write := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guards...), handler)
	}

	routes := router.Group(h.prefix)
	routes.Get("/", h.HandleList)
	// Static segments must be registered before /:id.
	if h.withTop3 {
		routes.Get("/top3", h.HandleTop3)
	}
	routes.Get("/options", h.HandleListByOptionName)
	routes.Get("/:id", h.HandleGet)
	routes.Post("/", write(h.HandleCreate)...)
	routes.Put("/:id", write(h.HandleUpdate)...)
	routes.Delete("/:id", write(h.HandleDelete)...)

	routes.Get("/:id/options", h.HandleListOptions)
	routes.Get("/:id/options/:optionId", h.HandleGetOption)
	routes.Post("/:id/options", write(h.HandleCreateOption)...)
	routes.Post("/:id", write(h.HandleCreateOption)...)
	routes.Put("/:id/options/:optionId", write(h.HandleUpdateOption)...)
	routes.Delete("/:id/options/:optionId", write(h.HandleDeleteOption)...)
}

// HandleList returns all parents, or the ones matching ?name=.
func (h *CatalogHandler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List(c.UserContext(), c.Query("name")))
}

// HandleTop3 returns the three most expensive parents.
func (h *CatalogHandler) HandleTop3(c *fiber.Ctx) error {
	return c.JSON(h.service.Top3(c.UserContext()))
}

// HandleListByOptionName returns the parents having an option named ?name=.
func (h *CatalogHandler) HandleListByOptionName(c *fiber.Ctx) error {
	parents, err := h.service.ListByOptionName(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(parents)
}

// HandleGet retrieves a single parent by its ID.
func (h *CatalogHandler) HandleGet(c *fiber.Ctx) error {
	parent, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(parent)
}

// HandleCreate creates a new parent.
func (h *CatalogHandler) HandleCreate(c *fiber.Ctx) error {
	req, err := parseBody[models.ParentRequest](c)
	if err != nil {
		return respondError(c, err)
	}
	parent, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(parent)
}

// HandleUpdate replaces an existing parent.
func (h *CatalogHandler) HandleUpdate(c *fiber.Ctx) error {
	req, err := parseBody[models.ParentRequest](c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Update(c.UserContext(), c.Params("id"), req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDelete removes a parent and its options.
func (h *CatalogHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) HandleListOptions(c *fiber.Ctx) error {
	options, err := h.service.ListOptions(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(options)
}

func (h *CatalogHandler) HandleGetOption(c *fiber.Ctx) error {
	option, err := h.service.GetOption(c.UserContext(), c.Params("id"), c.Params("optionId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(option)
}

func (h *CatalogHandler) HandleCreateOption(c *fiber.Ctx) error {
	req, err := parseBody[models.OptionRequest](c)
	if err != nil {
		return respondError(c, err)
	}
	option, err := h.service.CreateOption(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(option)
}

func (h *CatalogHandler) HandleUpdateOption(c *fiber.Ctx) error {
	req, err := parseBody[models.OptionRequest](c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.UpdateOption(c.UserContext(), c.Params("id"), c.Params("optionId"), req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) HandleDeleteOption(c *fiber.Ctx) error {
	if err := h.service.DeleteOption(c.UserContext(), c.Params("id"), c.Params("optionId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseBody decodes the JSON body. An empty body yields a nil request so the
// service can report the missing entity.
func parseBody[T any](c *fiber.Ctx) (*T, error) {
	if len(c.Body()) == 0 {
		return nil, nil
	}
	req := new(T)
	if err := c.BodyParser(req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	return req, nil
}

// respondError writes the {statuscode, message} body for err.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var svcErr *services.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &svcErr):
		switch svcErr.Kind {
		case services.KindInvalidArgument:
			status = fiber.StatusBadRequest
		case services.KindNotFound:
			status = fiber.StatusNotFound
		}
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
	}
	return c.Status(status).JSON(models.ErrorResponse{
		StatusCode: status,
		Message:    err.Error(),
	})
}

// ErrorHandler is the fiber.Config ErrorHandler: unmatched routes, panics
// recovered by middleware and other unhandled errors get the same body shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
