package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"freightdesk/internal/common"
	"freightdesk/internal/models"
	"freightdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HouseHandlers handles house document HTTP requests
type HouseHandlers struct {
	documents services.DocumentService
	queries   services.QueryService
	logger    *zap.Logger
}

// NewHouseHandlers creates a new house handlers instance
func NewHouseHandlers(documents services.DocumentService, queries services.QueryService, logger *zap.Logger) *HouseHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HouseHandlers{documents: documents, queries: queries, logger: logger}
}

// Register mounts the house routes on g.
func (h *HouseHandlers) Register(g *echo.Group) {
	g.GET("/houses", h.ListHouses)
	g.POST("/houses", h.RegisterHouse)
	g.POST("/houses/delete", h.DeleteHouses)
	g.GET("/houses/:id", h.GetHouse)
	g.GET("/houses/:id/history", h.GetHouseHistory)
	g.PUT("/houses/:id", h.UpdateHouse)
	g.DELETE("/houses/:id", h.DeleteHouse)
}

// DeleteHousesRequest is the batch delete payload
type DeleteHousesRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// RegisterHouse godoc
// @Summary      Register a house document
// @Description  Creates a house document, creating its master on first use.
// @Tags         houses
// @Accept       json
// @Produce      json
// @Param        body  body      models.HouseDocumentInput  true  "House document"
// @Success      201   {object}  models.HouseWriteResult
// @Failure      400   {object}  common.ErrorResponse
// @Failure      409   {object}  common.ErrorResponse
// @Failure      422   {object}  common.ErrorResponse
// @Router       /v1/houses [post]
func (h *HouseHandlers) RegisterHouse(c echo.Context) error {
	var req models.HouseDocumentInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.HouseID = nil

	result, err := h.documents.RegisterHouse(c.Request().Context(), &req)
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// UpdateHouse godoc
// @Summary      Update a house document
// @Tags         houses
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "House ID"
// @Param        body  body      models.HouseDocumentInput  true  "House document"
// @Success      200   {object}  models.HouseWriteResult
// @Failure      400   {object}  common.ErrorResponse
// @Failure      404   {object}  common.ErrorResponse
// @Failure      409   {object}  common.ErrorResponse
// @Router       /v1/houses/{id} [put]
func (h *HouseHandlers) UpdateHouse(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, services.FieldHouseID, err.Error())
	}

	var req models.HouseDocumentInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.HouseID != nil && *req.HouseID != id {
		return common.SendValidationError(c, services.FieldHouseID, "does not match path id")
	}
	req.HouseID = &id

	result, err := h.documents.UpdateHouse(c.Request().Context(), &req)
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteHouse godoc
// @Summary      Delete a house document
// @Tags         houses
// @Produce      json
// @Param        id   path      string  true  "House ID"
// @Success      200  {object}  models.HouseDeleteResult
// @Router       /v1/houses/{id} [delete]
func (h *HouseHandlers) DeleteHouse(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, services.FieldHouseID, err.Error())
	}

	result, err := h.documents.DeleteHouses(c.Request().Context(), []uuid.UUID{id})
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteHouses godoc
// @Summary      Delete house documents in batch
// @Description  Unknown or already deleted ids are skipped.
// @Tags         houses
// @Accept       json
// @Produce      json
// @Param        body  body      DeleteHousesRequest  true  "House IDs"
// @Success      200   {object}  models.HouseDeleteResult
// @Router       /v1/houses/delete [post]
func (h *HouseHandlers) DeleteHouses(c echo.Context) error {
	var req DeleteHousesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.documents.DeleteHouses(c.Request().Context(), req.IDs)
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListHouses godoc
// @Summary      List house documents
// @Tags         houses
// @Produce      json
// @Param        id             query  string  false  "House ID"
// @Param        status         query  string  false  "Status"
// @Param        master_number  query  string  false  "Master number contains"
// @Param        house_number   query  string  false  "House number contains"
// @Param        limit          query  int     false  "Limit"
// @Param        offset         query  int     false  "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /v1/houses [get]
func (h *HouseHandlers) ListHouses(c echo.Context) error {
	filter := models.HouseListFilter{
		MasterNumber: strings.TrimSpace(c.QueryParam("master_number")),
		HouseNumber:  strings.TrimSpace(c.QueryParam("house_number")),
	}
	if raw := c.QueryParam("id"); raw != "" {
		id, err := common.ValidateUUID(raw, "id")
		if err != nil {
			return common.SendValidationError(c, "id", err.Error())
		}
		filter.HouseID = &id
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		filter.Status = &status
	}
	var err error
	if filter.Limit, err = intQueryParam(c, "limit"); err != nil {
		return common.SendValidationError(c, "limit", "must be an integer")
	}
	if filter.Offset, err = intQueryParam(c, "offset"); err != nil {
		return common.SendValidationError(c, "offset", "must be an integer")
	}

	rows, err := h.queries.ListHouses(c.Request().Context(), &filter)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"houses": rows,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetHouse godoc
// @Summary      Get a house document with its active line items
// @Tags         houses
// @Produce      json
// @Param        id   path      string  true  "House ID"
// @Success      200  {object}  models.HouseDetail
// @Failure      404  {object}  common.ErrorResponse
// @Router       /v1/houses/{id} [get]
func (h *HouseHandlers) GetHouse(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, services.FieldHouseID, err.Error())
	}

	detail, err := h.queries.GetHouse(c.Request().Context(), id)
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// GetHouseHistory godoc
// @Summary      Audit trail of a house document
// @Tags         houses
// @Produce      json
// @Param        id     path   string  true   "House ID"
// @Param        limit  query  int     false  "Limit"
// @Success      200  {array}  models.AuditLog
// @Router       /v1/houses/{id}/history [get]
func (h *HouseHandlers) GetHouseHistory(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, services.FieldHouseID, err.Error())
	}

	limit, err := intQueryParam(c, "limit")
	if err != nil {
		return common.SendValidationError(c, "limit", "must be an integer")
	}

	logs, err := h.queries.History(c.Request().Context(), id, limit)
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func intQueryParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// sendError maps the service error taxonomy onto HTTP responses. Internal
// causes are logged here and never returned to the client.
func (h *HouseHandlers) sendError(c echo.Context, err error) error {
	var (
		validation *services.ValidationError
		duplicate  *services.DuplicateDocumentError
		notFound   *services.NotFoundError
		unresolved *services.UnresolvedReferenceError
		internalE  *services.InternalError
	)

	switch {
	case errors.As(err, &validation):
		return common.SendValidationError(c, validation.Field, validation.Message)
	case errors.As(err, &duplicate):
		return common.SendConflictError(c, duplicate.Error(), map[string]string{
			services.FieldHouseNumber: duplicate.HouseNumber,
		})
	case errors.As(err, &notFound):
		return common.SendNotFoundError(c, notFound.Entity)
	case errors.As(err, &unresolved):
		return common.SendUnresolvedReferenceError(c, unresolved.Field, unresolved.Code)
	case errors.As(err, &internalE):
		h.logger.Error("request failed", zap.String("op", internalE.Op), zap.Error(internalE.Err))
		return common.SendServerError(c, internalE.Error())
	default:
		h.logger.Error("unexpected error", zap.Error(err))
		return common.SendServerError(c, "Internal server error")
	}
}
