package analytics

import (
	"sort"
	"time"
)

// Observation is a single (date, value) sample of a named series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a date-unique sequence of observations for one instrument.
// Callers may supply it in any order; operations that care about order
// sort a copy rather than mutate the input.
type Series []Observation

const dateKeyLayout = "2006-01-02"

func dateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// Values returns the raw values in the series' current order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, obs := range s {
		out[i] = obs.Value
	}
	return out
}

// SortedDesc returns a copy of the series ordered most-recent-first.
func (s Series) SortedDesc() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// SortedAsc returns a copy of the series in chronological order.
func (s Series) SortedAsc() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Latest returns the most recent observation, or nil for an empty series.
func (s Series) Latest() *Observation {
	if len(s) == 0 {
		return nil
	}
	latest := s[0]
	for _, obs := range s[1:] {
		if obs.Date.After(latest.Date) {
			latest = obs
		}
	}
	return &latest
}

// AlignByDate inner-joins two series on calendar date and returns the
// paired values in chronological order. Dates present in only one series
// are dropped; positional alignment is never used.
func AlignByDate(x, y Series) (xs, ys []float64) {
	byDate := make(map[string]float64, len(y))
	for _, obs := range y {
		byDate[dateKey(obs.Date)] = obs.Value
	}

	for _, obs := range x.SortedAsc() {
		if yv, ok := byDate[dateKey(obs.Date)]; ok {
			xs = append(xs, obs.Value)
			ys = append(ys, yv)
		}
	}
	return xs, ys
}
