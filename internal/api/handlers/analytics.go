package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/distillate-labs/dieseldesk/internal/services"
	"github.com/distillate-labs/dieseldesk/internal/utils"
)

// AnalyticsHandler serves the derived-metrics dashboard endpoints.
type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

// NewAnalyticsHandler creates the handler.
func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Cracks returns the crack-spread board. An optional rbob query parameter
// ($/gal) adds the 3-2-1 and 2-1-1 composites.
func (h *AnalyticsHandler) Cracks(c *gin.Context) {
	rbob, err := floatParam(c, "rbob")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.svc.CracksBoard(c.Request.Context(), rbob)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute crack spreads"})
		return
	}
	c.JSON(http.StatusOK, board)
}

// Curve classifies a near/far contract pair supplied by the caller.
func (h *AnalyticsHandler) Curve(c *gin.Context) {
	m1, err := floatParam(c, "m1")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m2, err := floatParam(c, "m2")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days, err := intParam(c, "days", 0)
	if err != nil || days < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
		return
	}
	if m1 == nil || m2 == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "m1 and m2 are required"})
		return
	}

	c.JSON(http.StatusOK, h.svc.Curve(m1, m2, days))
}

// Arb evaluates landed-cost economics for caller-supplied legs.
func (h *AnalyticsHandler) Arb(c *gin.Context) {
	legs := make(map[string]*float64, 5)
	for _, name := range []string{"origin_fob", "dest_price", "freight", "insurance", "port_costs"} {
		v, err := floatParam(c, name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		legs[name] = v
	}

	result := h.svc.Arb(legs["origin_fob"], legs["dest_price"], legs["freight"], legs["insurance"], legs["port_costs"])
	if result == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin_fob, dest_price and freight are required"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Inventory returns the distillate stocks board.
func (h *AnalyticsHandler) Inventory(c *gin.Context) {
	board, err := h.svc.InventoryBoard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute inventory analytics"})
		return
	}
	c.JSON(http.StatusOK, board)
}

// Correlations returns the pairwise correlation matrix.
func (h *AnalyticsHandler) Correlations(c *gin.Context) {
	matrix, err := h.svc.Correlations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute correlations"})
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// Volatility returns realized volatility and regime per series.
func (h *AnalyticsHandler) Volatility(c *gin.Context) {
	report, err := h.svc.Volatility(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute volatility"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Trend returns a moving-average trend read for one series.
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	seriesID := c.Query("series_id")
	if seriesID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "series_id is required"})
		return
	}
	period, err := intParam(c, "period", 20)
	if err != nil || period < 2 || period > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be between 2 and 200"})
		return
	}

	report, err := h.svc.Trend(c.Request.Context(), seriesID, period)
	if err != nil {
		if utils.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Series not found", "series_id": seriesID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trend"})
		return
	}
	c.JSON(http.StatusOK, report)
}
