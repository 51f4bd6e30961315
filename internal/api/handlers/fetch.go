package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/fetchers"
	"github.com/distillate-labs/dieseldesk/internal/services"
)

// FetchHandler serves the admin-protected manual refresh endpoints plus
// the fetch audit trail.
type FetchHandler struct {
	collector *services.CollectorService
	fetchLog  *database.FetchLogRepository
}

// NewFetchHandler creates the handler.
func NewFetchHandler(collector *services.CollectorService, fetchLog *database.FetchLogRepository) *FetchHandler {
	return &FetchHandler{collector: collector, fetchLog: fetchLog}
}

// Prices triggers a refresh of the FRED price series.
func (h *FetchHandler) Prices(c *gin.Context) {
	result, err := h.collector.RefreshPrices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Inventories triggers a refresh of the EIA stock areas.
func (h *FetchHandler) Inventories(c *gin.Context) {
	result, err := h.collector.RefreshInventories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

// All triggers a full refresh of every tracked series.
func (h *FetchHandler) All(c *gin.Context) {
	result, err := h.collector.RefreshAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status shows the most recent fetch operations.
func (h *FetchHandler) Status(c *gin.Context) {
	limit, err := intParam(c, "limit", 10)
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	logs, err := h.fetchLog.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve fetch log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recent_fetches": logs, "count": len(logs)})
}

// Sources lists the upstream catalogs the collector pulls from.
func (h *FetchHandler) Sources(c *gin.Context) {
	series := make(map[string]gin.H, len(fetchers.FREDSeries))
	for id, info := range fetchers.FREDSeries {
		series[id] = gin.H{"name": info.Name, "unit": info.Unit}
	}
	areas := make([]gin.H, 0, len(fetchers.EIAAreas))
	for _, area := range fetchers.EIAAreas {
		areas = append(areas, gin.H{"code": area.Code, "region": area.Region, "name": area.DisplayName()})
	}

	c.JSON(http.StatusOK, gin.H{
		"fred": gin.H{
			"name":   "Federal Reserve Economic Data",
			"series": series,
		},
		"eia": gin.H{
			"name":  "US Energy Information Administration",
			"areas": areas,
		},
	})
}
