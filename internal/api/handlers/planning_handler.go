package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/optimizer"
	"github.com/andresuchdata/stockcast/internal/service"
)

// Planner is the part of service.PlanningService the handlers use.
type Planner interface {
	Forecast(ctx context.Context, req service.ForecastRequest) (*forecast.DemandForecast, error)
	Optimize(ctx context.Context, req service.OptimizeRequest) (*optimizer.Result, error)
	OptimizeBatch(ctx context.Context, entries []optimizer.BatchEntry) ([]optimizer.BatchResult, error)
	ClassifyABC(ctx context.Context, items []domain.ItemUsage) ([]optimizer.ABCResult, error)
	PlanWarehouse(ctx context.Context, warehouseID string) (*service.PlanReport, error)
}

type PlanningHandler struct {
	service Planner
}

func NewPlanningHandler(service Planner) *PlanningHandler {
	return &PlanningHandler{service: service}
}

type batchEntryRequest struct {
	Item         domain.InventoryItem      `json:"item"`
	WarehouseID  string                    `json:"warehouse_id"`
	CurrentStock float64                   `json:"current_stock"`
	History      []domain.HistoricalDemand `json:"history"`
	Forecast     *forecast.DemandForecast  `json:"forecast,omitempty"`
}

type batchRequest struct {
	Entries []batchEntryRequest `json:"entries"`
}

type batchResultResponse struct {
	Index  int               `json:"index"`
	ItemID string            `json:"item_id"`
	Result *optimizer.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type abcRequest struct {
	Items []domain.ItemUsage `json:"items"`
}

// Forecast handles POST /planning/forecast
func (h *PlanningHandler) Forecast(c *gin.Context) {
	var req service.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	fc, err := h.service.Forecast(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// Optimize handles POST /planning/optimize
func (h *PlanningHandler) Optimize(c *gin.Context) {
	var req service.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// OptimizeBatch handles POST /planning/batch. Per-entry failures are part of
// a 200 response.
func (h *PlanningHandler) OptimizeBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	entries := make([]optimizer.BatchEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = optimizer.BatchEntry{
			Item:         e.Item,
			WarehouseID:  e.WarehouseID,
			CurrentStock: e.CurrentStock,
			History:      e.History,
			Forecast:     e.Forecast,
		}
	}

	results, err := h.service.OptimizeBatch(c.Request.Context(), entries)
	if err != nil {
		serviceError(c, err)
		return
	}

	resp := make([]batchResultResponse, len(results))
	failed := 0
	for i, r := range results {
		resp[i] = batchResultResponse{Index: r.Index, ItemID: r.ItemID, Result: r.Result}
		if r.Err != nil {
			resp[i].Error = r.Err.Error()
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   resp,
		"total":     len(resp),
		"succeeded": len(resp) - failed,
		"failed":    failed,
	})
}

// ClassifyABC handles POST /planning/abc. An empty body classifies stored usage.
func (h *PlanningHandler) ClassifyABC(c *gin.Context) {
	var req abcRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	results, err := h.service.ClassifyABC(c.Request.Context(), req.Items)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"counts":  optimizer.CategoryCounts(results),
	})
}

// PlanWarehouse handles POST /planning/warehouses/:warehouse/plan
func (h *PlanningHandler) PlanWarehouse(c *gin.Context) {
	warehouse := strings.TrimSpace(c.Param("warehouse"))

	report, err := h.service.PlanWarehouse(c.Request.Context(), warehouse)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func serviceError(c *gin.Context, err error) {
	var (
		invalid      *service.InvalidRequestError
		forecastErr  *forecast.ValidationError
		optimizerErr *optimizer.ValidationError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &forecastErr), errors.As(err, &optimizerErr):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrItemNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoRepository):
		errorResponse(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errorResponse(c, http.StatusRequestTimeout, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("planning request failed")
		errorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	if statusCode >= http.StatusInternalServerError {
		log.Error().Msg(message)
	}
	c.AbortWithStatusJSON(statusCode, gin.H{"error": message})
}
