package domain

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// RoundOneDecimal rounds the shortest decimal form of v to one place, halves
// away from zero (0.25 -> 0.3, 8.15 -> 8.2, -0.25 -> -0.3).
func RoundOneDecimal(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

type monthKey struct {
	region, year, month int
}

type yearKey struct {
	region, year int
}

// MonthlyMeans computes pass 1: the mean value per (region, year, month),
// ignoring null values. Groups whose values are all null get a null mean.
// Output is sorted by region, year, month.
func MonthlyMeans(obs []CleanObservation) []MonthlyMean {
	groups := make(map[monthKey][]float64)
	for _, o := range obs {
		k := monthKey{region: o.Region(), year: o.Year, month: o.Month}
		vals := groups[k]
		if o.Value.Valid {
			vals = append(vals, o.Value.Value)
		}
		groups[k] = vals
	}

	out := make([]MonthlyMean, 0, len(groups))
	for k, vals := range groups {
		out = append(out, MonthlyMean{
			RegionID: k.region,
			Year:     k.year,
			Month:    k.month,
			Mean:     roundedMean(vals),
		})
	}
	slices.SortFunc(out, func(a, b MonthlyMean) int {
		return cmp.Or(
			cmp.Compare(a.RegionID, b.RegionID),
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.Month, b.Month),
		)
	})
	return out
}

// RegionYearMeans computes pass 2: the mean of the monthly means per
// (region, year), ignoring null monthly means. It never looks at raw
// observations. Output is sorted by region, year.
func RegionYearMeans(monthly []MonthlyMean) []RegionYearMean {
	groups := make(map[yearKey][]float64)
	for _, m := range monthly {
		k := yearKey{region: m.RegionID, year: m.Year}
		vals := groups[k]
		if m.Mean.Valid {
			vals = append(vals, m.Mean.Value)
		}
		groups[k] = vals
	}

	out := make([]RegionYearMean, 0, len(groups))
	for k, vals := range groups {
		out = append(out, RegionYearMean{
			RegionID: k.region,
			Year:     k.year,
			Mean:     roundedMean(vals),
		})
	}
	slices.SortFunc(out, func(a, b RegionYearMean) int {
		return cmp.Or(
			cmp.Compare(a.RegionID, b.RegionID),
			cmp.Compare(a.Year, b.Year),
		)
	})
	return out
}

// Aggregate runs both passes.
func Aggregate(obs []CleanObservation) ([]MonthlyMean, []RegionYearMean) {
	monthly := MonthlyMeans(obs)
	return monthly, RegionYearMeans(monthly)
}

// roundedMean averages in decimal so a mean that is an exact decimal half,
// such as mean(8.1, 8.2) = 8.15, rounds away from zero. Decimal addition is
// exact, so the result does not depend on the order rows arrived in.
func roundedMean(vals []float64) NullFloat {
	if len(vals) == 0 {
		return NullFloat{}
	}
	sum := decimal.Zero
	for _, v := range vals {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	mean := sum.DivRound(decimal.NewFromInt(int64(len(vals))), 1)
	return FloatOf(mean.InexactFloat64())
}
