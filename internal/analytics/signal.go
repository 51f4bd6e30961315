package analytics

import (
	"fmt"

	"github.com/distillate-labs/dieseldesk/internal/utils"
)

// Direction controls how a threshold boundary is compared against a value.
type Direction int

const (
	// Descending tables list boundaries high-to-low; a value matches the
	// first tier whose boundary it meets or exceeds. Used for metrics where
	// bigger is stronger (crack spreads).
	Descending Direction = iota
	// Ascending tables list boundaries low-to-high; a value matches the
	// first tier whose boundary it stays strictly below. Used for metrics
	// where smaller is tighter (inventory levels).
	Ascending
)

// Threshold is one (boundary, label) row of a classification table.
type Threshold struct {
	Boundary float64 `json:"boundary" mapstructure:"boundary"`
	Label    string  `json:"label" mapstructure:"label"`
}

// SignalTier is a classified value. Rank is the tier's position in the
// table, 0 being the most extreme tier; it gives callers a stable ordering
// independent of labels.
type SignalTier struct {
	Label string `json:"label"`
	Rank  int    `json:"rank"`
}

// Classifier maps a scalar to a discrete tier via an ordered threshold
// table plus a catch-all bottom tier. One classifier instance backs crack
// signals, inventory tiers and volatility regimes alike; the table and
// comparator direction are the only things that differ.
type Classifier struct {
	direction  Direction
	thresholds []Threshold
	catchAll   string
}

// NewClassifier validates and builds a classifier. The table must be
// non-empty, strictly ordered in the given direction and carry non-empty
// labels; catchAll labels every value no tier claims. A bad table is a
// programming error, so construction fails rather than tolerating it
// per-call.
func NewClassifier(direction Direction, thresholds []Threshold, catchAll string) (*Classifier, error) {
	if len(thresholds) == 0 {
		return nil, utils.NewValidationError("classifier requires at least one threshold")
	}
	if catchAll == "" {
		return nil, utils.NewValidationError("classifier requires a catch-all label")
	}

	for i, th := range thresholds {
		if th.Label == "" {
			return nil, utils.NewValidationErrorf("threshold %d has an empty label", i)
		}
		if i == 0 {
			continue
		}
		prev := thresholds[i-1].Boundary
		switch direction {
		case Descending:
			if th.Boundary >= prev {
				return nil, utils.NewValidationErrorf(
					"descending table out of order at index %d: %v >= %v", i, th.Boundary, prev)
			}
		case Ascending:
			if th.Boundary <= prev {
				return nil, utils.NewValidationErrorf(
					"ascending table out of order at index %d: %v <= %v", i, th.Boundary, prev)
			}
		default:
			return nil, utils.NewValidationErrorf("unknown direction %d", direction)
		}
	}

	table := make([]Threshold, len(thresholds))
	copy(table, thresholds)

	return &Classifier{
		direction:  direction,
		thresholds: table,
		catchAll:   catchAll,
	}, nil
}

// MustClassifier is NewClassifier for static tables known at compile time.
func MustClassifier(direction Direction, thresholds []Threshold, catchAll string) *Classifier {
	c, err := NewClassifier(direction, thresholds, catchAll)
	if err != nil {
		panic(fmt.Sprintf("invalid classifier table: %v", err))
	}
	return c
}

// Classify resolves a value to its tier. Iteration starts at the most
// extreme tier, so a value sitting exactly on a boundary always resolves
// to the stricter tier.
func (c *Classifier) Classify(value float64) SignalTier {
	for i, th := range c.thresholds {
		switch c.direction {
		case Descending:
			if value >= th.Boundary {
				return SignalTier{Label: th.Label, Rank: i}
			}
		case Ascending:
			if value < th.Boundary {
				return SignalTier{Label: th.Label, Rank: i}
			}
		}
	}
	return SignalTier{Label: c.catchAll, Rank: len(c.thresholds)}
}

// Tiers returns the table rows plus the catch-all, in classification order.
func (c *Classifier) Tiers() []string {
	out := make([]string, 0, len(c.thresholds)+1)
	for _, th := range c.thresholds {
		out = append(out, th.Label)
	}
	return append(out, c.catchAll)
}
