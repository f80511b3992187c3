package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayout is the YYYY-MM-DD layout of the date column.
const DefaultDateLayout = "2006-01-02"

// Project maps a loaded table onto canonical fields and parses every row into
// an Observation. Column lookup is exact and case-sensitive.
//
// It fails with a *SchemaError when mapped columns are absent, a *ReadError
// when a year, month, or numeric cell cannot be parsed, and a
// *DateParseError when a date is missing or does not match dateLayout.
func Project(t Table, cols Columns, dateLayout string) ([]Observation, error) {
	idx, err := columnIndex(t, cols)
	if err != nil {
		return nil, err
	}
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}

	out := make([]Observation, 0, len(t.Rows))
	for _, row := range t.Rows {
		obs, err := parseRow(t.Source, row, idx, dateLayout)
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, nil
}

// fieldIndex holds header positions for each canonical field.
type fieldIndex struct {
	region, value, year, month, lat, lon, date int
}

func columnIndex(t Table, cols Columns) (fieldIndex, error) {
	pos := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		name := strings.TrimSpace(h)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	idx := fieldIndex{
		region: lookup(cols.Region),
		value:  lookup(cols.Value),
		year:   lookup(cols.Year),
		month:  lookup(cols.Month),
		lat:    lookup(cols.Lat),
		lon:    lookup(cols.Lon),
		date:   lookup(cols.Date),
	}
	if len(missing) > 0 {
		return fieldIndex{}, &SchemaError{Path: t.Source, Missing: missing}
	}
	return idx, nil
}

func parseRow(source string, row Row, idx fieldIndex, dateLayout string) (Observation, error) {
	cell := func(i int) string {
		if i < len(row.Fields) {
			return strings.TrimSpace(row.Fields[i])
		}
		return ""
	}
	fail := func(err error) (Observation, error) {
		return Observation{}, &ReadError{Path: source, Line: row.Line, Err: err}
	}

	region, err := parseNullInt(cell(idx.region))
	if err != nil {
		return fail(fmt.Errorf("region: %w", err))
	}
	value, err := parseNullFloat(cell(idx.value))
	if err != nil {
		return fail(fmt.Errorf("value: %w", err))
	}
	year, err := parseRequiredInt(cell(idx.year))
	if err != nil {
		return fail(fmt.Errorf("year: %w", err))
	}
	month, err := parseRequiredInt(cell(idx.month))
	if err != nil {
		return fail(fmt.Errorf("month: %w", err))
	}
	if month < 1 || month > 12 {
		return fail(fmt.Errorf("month: %d out of range 1-12", month))
	}
	lat, err := parseNullFloat(cell(idx.lat))
	if err != nil {
		return fail(fmt.Errorf("lat: %w", err))
	}
	lon, err := parseNullFloat(cell(idx.lon))
	if err != nil {
		return fail(fmt.Errorf("lon: %w", err))
	}

	raw := cell(idx.date)
	if isNull(raw) {
		return Observation{}, &DateParseError{Path: source, Line: row.Line, Value: raw, Err: ErrMissingDate}
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Observation{}, &DateParseError{Path: source, Line: row.Line, Value: raw, Err: err}
	}

	return Observation{
		RegionID: region,
		Value:    value,
		Year:     year,
		Month:    month,
		Lat:      lat,
		Lon:      lon,
		Date:     date,
	}, nil
}

// isNull reports whether a trimmed cell is one of the null tokens.
func isNull(s string) bool {
	switch strings.ToUpper(s) {
	case "", "NA", "NAN", "NULL":
		return true
	default:
		return false
	}
}

func parseNullFloat(s string) (NullFloat, error) {
	if isNull(s) {
		return NullFloat{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NullFloat{}, err
	}
	if math.IsInf(v, 0) {
		return NullFloat{}, fmt.Errorf("%q is not finite", s)
	}
	return FloatOf(v), nil
}

func parseNullInt(s string) (NullInt, error) {
	if isNull(s) {
		return NullInt{}, nil
	}
	v, err := parseInt(s)
	if err != nil {
		return NullInt{}, err
	}
	return IntOf(v), nil
}

func parseRequiredInt(s string) (int, error) {
	if isNull(s) {
		return 0, errors.New("value is missing")
	}
	return parseInt(s)
}

// parseInt accepts plain integers and integral decimals such as "12.0", which
// spreadsheet exports produce for numeric id columns.
func parseInt(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}
