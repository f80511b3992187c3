package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	var obs []CleanObservation
	for year := 2008; year <= 2017; year++ {
		for month := 1; month <= 12; month++ {
			obs = append(obs, CleanObservation(obsAt(IntOf(1), FloatOf(1), year, month, 1)))
		}
	}

	out := Filter(obs, DefaultWindow())

	require.Len(t, out, 6*4)
	for _, o := range out {
		assert.Contains(t, []int{6, 7, 8, 9}, o.Month)
		assert.GreaterOrEqual(t, o.Year, 2010)
		assert.LessOrEqual(t, o.Year, 2015)
		assert.Contains(t, obs, o)
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	a := CleanObservation(obsAt(IntOf(2), FloatOf(1), 2012, 9, 1))
	b := CleanObservation(obsAt(IntOf(1), FloatOf(1), 2011, 6, 1))
	c := CleanObservation(obsAt(IntOf(3), FloatOf(1), 2014, 7, 1))
	off := CleanObservation(obsAt(IntOf(3), FloatOf(1), 2014, 5, 1))

	assert.Equal(t, []CleanObservation{a, b, c}, Filter([]CleanObservation{a, off, b, c}, DefaultWindow()))
}

func TestFilter_ConfiguredWindow(t *testing.T) {
	w := Window{Months: []int{1}, YearMin: 2020, YearMax: 2020}
	in := CleanObservation(obsAt(IntOf(1), FloatOf(1), 2020, 1, 1))
	out := CleanObservation(obsAt(IntOf(1), FloatOf(1), 2012, 6, 1))

	assert.Equal(t, []CleanObservation{in}, Filter([]CleanObservation{in, out}, w))
}

func TestFilter_NoMatches(t *testing.T) {
	out := Filter([]CleanObservation{CleanObservation(obsAt(IntOf(1), FloatOf(1), 1999, 1, 1))}, DefaultWindow())
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestWindow_Validate(t *testing.T) {
	tests := []struct {
		name    string
		window  Window
		wantErr string
	}{
		{"default", DefaultWindow(), ""},
		{"single year", Window{Months: []int{6}, YearMin: 2012, YearMax: 2012}, ""},
		{"empty months", Window{YearMin: 2010, YearMax: 2015}, "month set is empty"},
		{"month zero", Window{Months: []int{0, 6}, YearMin: 2010, YearMax: 2015}, "month 0"},
		{"month thirteen", Window{Months: []int{13}, YearMin: 2010, YearMax: 2015}, "month 13"},
		{"inverted years", Window{Months: []int{6}, YearMin: 2015, YearMax: 2010}, "inverted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
