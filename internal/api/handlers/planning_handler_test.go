package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/optimizer"
	"github.com/andresuchdata/stockcast/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPlanner struct {
	planErr   error
	report    *service.PlanReport
	warehouse string
}

func (s *stubPlanner) Forecast(context.Context, service.ForecastRequest) (*forecast.DemandForecast, error) {
	return nil, errors.New("not used")
}

func (s *stubPlanner) Optimize(context.Context, service.OptimizeRequest) (*optimizer.Result, error) {
	return nil, errors.New("not used")
}

func (s *stubPlanner) OptimizeBatch(context.Context, []optimizer.BatchEntry) ([]optimizer.BatchResult, error) {
	return nil, errors.New("not used")
}

func (s *stubPlanner) ClassifyABC(context.Context, []domain.ItemUsage) ([]optimizer.ABCResult, error) {
	return nil, errors.New("not used")
}

func (s *stubPlanner) PlanWarehouse(_ context.Context, warehouseID string) (*service.PlanReport, error) {
	s.warehouse = warehouseID
	return s.report, s.planErr
}

func planRequest(p Planner) *httptest.ResponseRecorder {
	r := gin.New()
	h := NewPlanningHandler(p)
	r.POST("/warehouses/:warehouse/plan", h.PlanWarehouse)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/warehouses/wh-1/plan", nil))
	return rec
}

func TestPlanWarehouse_OK(t *testing.T) {
	stub := &stubPlanner{report: &service.PlanReport{
		Run:     domain.PlanRun{ID: "run-1", WarehouseID: "wh-1", Items: 1},
		Results: []*optimizer.Result{{ItemID: "sku-1"}},
	}}

	rec := planRequest(stub)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wh-1", stub.warehouse)
	assert.Contains(t, rec.Body.String(), `"run-1"`)
	assert.Contains(t, rec.Body.String(), `"sku-1"`)
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid request", &service.InvalidRequestError{Field: "warehouse", Reason: "is required"}, http.StatusBadRequest},
		{"short history", &forecast.ValidationError{Required: 7, Got: 2}, http.StatusBadRequest},
		{"bad item", &optimizer.ValidationError{ItemID: "x", Field: "cost_price", Reason: "negative"}, http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"not found", fmt.Errorf("%w: ghost", service.ErrItemNotFound), http.StatusNotFound},
		{"no repository", service.ErrNoRepository, http.StatusServiceUnavailable},
		{"cancelled", context.Canceled, http.StatusRequestTimeout},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := planRequest(&stubPlanner{planErr: tc.err})
			assert.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusInternalServerError {
				assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
			}
		})
	}
}
