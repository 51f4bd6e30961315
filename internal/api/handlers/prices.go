package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/fetchers"
	"github.com/distillate-labs/dieseldesk/internal/utils"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// PricesHandler serves the stored price series.
type PricesHandler struct {
	repo      *database.PriceRepository
	cache     Cache
	latestTTL time.Duration
}

// NewPricesHandler creates the handler. The cache may be nil.
func NewPricesHandler(repo *database.PriceRepository, cache Cache, latestTTL time.Duration) *PricesHandler {
	return &PricesHandler{repo: repo, cache: cache, latestTTL: latestTTL}
}

// List returns stored prices, filterable by series and date range.
func (h *PricesHandler) List(c *gin.Context) {
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

	prices, err := h.repo.List(c.Request.Context(), c.Query("series_id"), start, end, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve prices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": prices, "count": len(prices)})
}

// Latest returns the newest quote per series with day-over-day change.
func (h *PricesHandler) Latest(c *gin.Context) {
	serveCached(c, h.cache, "prices", h.latestTTL, "Failed to retrieve latest prices", func() (interface{}, error) {
		latest, err := h.repo.Latest(c.Request.Context())
		if err != nil {
			return nil, err
		}

		// Attach the display names the upstream catalog knows about.
		type namedPrice struct {
			SeriesID string      `json:"series_id"`
			Name     string      `json:"name,omitempty"`
			Price    interface{} `json:"price"`
		}
		named := make([]namedPrice, 0, len(latest))
		for _, lp := range latest {
			np := namedPrice{SeriesID: lp.SeriesID, Price: lp}
			if info, ok := fetchers.FREDSeries[lp.SeriesID]; ok {
				np.Name = info.Name
			}
			named = append(named, np)
		}
		return gin.H{"latest": named, "count": len(named)}, nil
	})
}

// ListSeries summarizes every stored series.
func (h *PricesHandler) ListSeries(c *gin.Context) {
	infos, err := h.repo.ListSeries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve series info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": infos, "count": len(infos)})
}

// GetSeries returns the full history of one series.
func (h *PricesHandler) GetSeries(c *gin.Context) {
	seriesID := c.Param("series_id")

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

	points, err := h.repo.GetSeries(c.Request.Context(), seriesID, start, end)
	if err != nil {
		if utils.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Series not found", "series_id": seriesID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve series"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"series_id": seriesID, "points": points, "count": len(points)})
}
