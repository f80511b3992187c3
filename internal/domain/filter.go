package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Window selects the months and the inclusive year range that feed the layer.
type Window struct {
	Months  []int `json:"months" yaml:"months,flow"`
	YearMin int   `json:"year_min" yaml:"year_min"`
	YearMax int   `json:"year_max" yaml:"year_max"`
}

// DefaultWindow is June through September, 2010 to 2015.
func DefaultWindow() Window {
	return Window{Months: []int{6, 7, 8, 9}, YearMin: 2010, YearMax: 2015}
}

// Validate rejects empty month sets, months outside 1-12, and inverted ranges.
func (w Window) Validate() error {
	if len(w.Months) == 0 {
		return errors.New("window: month set is empty")
	}
	for _, m := range w.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("window: month %d out of range 1-12", m)
		}
	}
	if w.YearMin > w.YearMax {
		return fmt.Errorf("window: year range %d-%d is inverted", w.YearMin, w.YearMax)
	}
	return nil
}

// Contains reports whether (year, month) falls inside the window.
func (w Window) Contains(year, month int) bool {
	return year >= w.YearMin && year <= w.YearMax && slices.Contains(w.Months, month)
}

// Filter returns the observations inside the window, in input order. An empty
// result is not an error.
func Filter(obs []CleanObservation, w Window) []CleanObservation {
	out := make([]CleanObservation, 0, len(obs))
	for _, o := range obs {
		if w.Contains(o.Year, o.Month) {
			out = append(out, o)
		}
	}
	return out
}
