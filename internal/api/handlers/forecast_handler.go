package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

var queryDateLayouts = []string{"2006-01-02", time.RFC3339}

func (h *ForecastHandler) parseFilter(c *gin.Context) (domain.ForecastFilter, error) {
	var filter domain.ForecastFilter

	if raw := strings.TrimSpace(c.Query("warehouse_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid warehouse_id %q", raw)
		}
		filter.WarehouseID = &id
	}

	parseDate := func(param string) (*time.Time, error) {
		value := strings.TrimSpace(c.Query(param))
		if value == "" {
			return nil, nil
		}
		for _, layout := range queryDateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", param, value)
	}

	var err error
	if filter.Since, err = parseDate("since"); err != nil {
		return filter, err
	}
	if filter.AsOf, err = parseDate("as_of"); err != nil {
		return filter, err
	}

	if topN, err := strconv.Atoi(c.DefaultQuery("top_n", "0")); err == nil && topN > 0 {
		filter.TopN = topN
	}

	return filter, nil
}

func (h *ForecastHandler) loadReport(c *gin.Context) (*domain.ForecastReport, bool) {
	filter, err := h.parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return nil, false
	}

	report, err := h.service.GetReport(c.Request.Context(), filter)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrNoRepository) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "failed to compute forecast", "details": err.Error()})
		return nil, false
	}

	return report, true
}

func (h *ForecastHandler) GetReport(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ForecastHandler) GetSufficiency(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Sufficiency)
}

func (h *ForecastHandler) GetPredictions(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sufficiency": report.Sufficiency,
		"predictions": report.Predictions,
	})
}

func (h *ForecastHandler) GetBestSellers(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"best_sellers": report.BestSellers})
}

func (h *ForecastHandler) GetSlowMovers(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"slow_movers": report.SlowMovers})
}

// Evaluate forecasts a snapshot posted in the request body
func (h *ForecastHandler) Evaluate(c *gin.Context) {
	var req domain.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	report, err := h.service.Evaluate(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate snapshot", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ForecastHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

func (h *ForecastHandler) Health(c *gin.Context) {
	cfg := h.service.Config()
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"min_days_with_data": cfg.MinDaysWithData,
		"critical_days":      cfg.CriticalDays,
		"warning_days":       cfg.WarningDays,
	})
}
