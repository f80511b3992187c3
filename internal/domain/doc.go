// Package domain models Secchi depth observations and the transformations that
// turn them into the summer water-clarity layer consumed by the scoring toolbox.
//
// # Data Source
//
// Observations come from monitoring-station exports: one row per Secchi disk
// reading, already joined to the assessment region it falls in. The region join
// is done upstream and is not always successful, so the region column may be
// empty for stations outside every region polygon.
//
// # Column Conventions
//
// Source column names are configurable via [Columns]. The defaults match the
// regional export:
//
//	BHI_ID  region identifier (integer, may be NA)
//	secchi  Secchi depth in metres (may be NA)
//	year    observation year
//	month   observation month, 1-12
//	lat     latitude, WGS-84 (may be NA)
//	lon     longitude, WGS-84 (may be NA)
//	date    observation date, YYYY-MM-DD
//
// Null tokens: an empty cell, "NA", "NaN", or "NULL" (any case) is treated as
// missing. Year and month are required; a missing or non-integer value is a
// [ReadError]. The date is required; an unparsable date aborts the run with a
// [DateParseError] rather than silently dropping the row.
//
// # Cleaning
//
// Two drops are deliberate and are reported with counts in [CleanResult]:
// rows without a region id, and exact duplicates (equal across every
// projected field, see [Dedupe]). Nothing else is removed before filtering.
//
// # Aggregation
//
// The layer value is a mean of monthly means, not a pooled mean:
//
//	pass 1: mean(value) per (region, year, month), nulls excluded
//	pass 2: mean(pass 1) per (region, year), nulls excluded
//
// Both passes round to one decimal, half away from zero (see [RoundOneDecimal]).
// A group whose values are all null has a null mean, and the null carries
// through to pass 2 instead of being read as zero.
//
// # Output
//
// The region key is emitted as "rgn_id" (see [OutputColumns]); downstream
// consumers join on that name.
package domain
