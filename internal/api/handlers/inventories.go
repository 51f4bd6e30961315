package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/models"
	"github.com/distillate-labs/dieseldesk/internal/utils"
)

// InventoriesHandler serves the stored distillate stock readings.
type InventoriesHandler struct {
	repo      *database.InventoryRepository
	cache     Cache
	latestTTL time.Duration
}

// NewInventoriesHandler creates the handler. The cache may be nil.
func NewInventoriesHandler(repo *database.InventoryRepository, cache Cache, latestTTL time.Duration) *InventoriesHandler {
	return &InventoriesHandler{repo: repo, cache: cache, latestTTL: latestTTL}
}

// List returns stored readings, filterable by region and date range.
func (h *InventoriesHandler) List(c *gin.Context) {
	start, err := dateParam(c, "start")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := dateParam(c, "end")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := intParam(c, "limit", defaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
		return
	}

	region := strings.ToUpper(c.Query("region"))
	inventories, err := h.repo.List(c.Request.Context(), region, c.Query("product"), start, end, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventories": inventories, "count": len(inventories)})
}

// Latest returns the newest reading per region with week-over-week change,
// in the fixed national-first display order.
func (h *InventoriesHandler) Latest(c *gin.Context) {
	serveCached(c, h.cache, "inventories", h.latestTTL, "Failed to retrieve latest inventories", func() (interface{}, error) {
		latest, err := h.repo.Latest(c.Request.Context())
		if err != nil {
			return nil, err
		}

		byRegion := make(map[string][]models.LatestInventory, len(latest))
		for _, li := range latest {
			byRegion[li.Region] = append(byRegion[li.Region], li)
		}
		ordered := make([]models.LatestInventory, 0, len(latest))
		for _, region := range models.RegionOrder {
			ordered = append(ordered, byRegion[region]...)
			delete(byRegion, region)
		}
		for _, rest := range byRegion {
			ordered = append(ordered, rest...)
		}

		return gin.H{"latest": ordered, "count": len(ordered)}, nil
	})
}

// Regions summarizes every stored region.
func (h *InventoriesHandler) Regions(c *gin.Context) {
	infos, err := h.repo.ListRegions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve region info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": infos, "count": len(infos)})
}

// History returns one region's stored points over a month window.
func (h *InventoriesHandler) History(c *gin.Context) {
	region := strings.ToUpper(c.Param("region"))

	months, err := intParam(c, "months", 12)
	if err != nil || months < 1 || months > 60 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 60"})
		return
	}

	since := time.Now().UTC().AddDate(0, -months, 0)
	points, err := h.repo.History(c.Request.Context(), region, "distillate", since)
	if err != nil {
		if utils.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Region not found", "region": region})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"region": region, "months": months, "points": points, "count": len(points)})
}

// Compare returns aligned histories for several regions at once.
func (h *InventoriesHandler) Compare(c *gin.Context) {
	regionsParam := c.DefaultQuery("regions", "US,PADD1,PADD3")
	months, err := intParam(c, "months", 12)
	if err != nil || months < 1 || months > 60 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 60"})
		return
	}

	since := time.Now().UTC().AddDate(0, -months, 0)
	regions := strings.Split(regionsParam, ",")
	data := make(map[string][]models.Point, len(regions))
	requested := make([]string, 0, len(regions))

	for _, raw := range regions {
		region := strings.ToUpper(strings.TrimSpace(raw))
		if region == "" {
			continue
		}
		requested = append(requested, region)

		points, err := h.repo.History(c.Request.Context(), region, "distillate", since)
		if err != nil {
			if utils.IsNotFound(err) {
				data[region] = []models.Point{}
				continue
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
			return
		}
		data[region] = points
	}

	c.JSON(http.StatusOK, gin.H{"regions": requested, "months": months, "data": data})
}
