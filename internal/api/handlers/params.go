package handlers

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// dateParam parses an optional YYYY-MM-DD query parameter.
func dateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s, expected YYYY-MM-DD", name)
	}
	return &t, nil
}

// floatParam parses an optional float query parameter, nil when absent.
func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		// ParseFloat happily accepts "NaN" and "Inf", which would poison
		// every calculation downstream and break JSON rendering.
		return nil, fmt.Errorf("invalid %s, expected a finite number", name)
	}
	return &v, nil
}

// intParam parses an optional int query parameter with a default.
func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s, expected an integer", name)
	}
	return v, nil
}
