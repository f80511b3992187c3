package domain

import (
	"strconv"
	"time"
)

// Table is a delimited file as loaded, before any typing or projection.
type Table struct {
	Source string
	Header []string
	Rows   []Row
}

// Row is one data record. Line is the 1-based record number in the source,
// counting the header as line 1.
type Row struct {
	Line   int
	Fields []string
}

// NullInt is an integer that may be missing in the source data.
type NullInt struct {
	Value int
	Valid bool
}

// IntOf returns a valid NullInt.
func IntOf(v int) NullInt { return NullInt{Value: v, Valid: true} }

// NullFloat is a measurement that may be missing in the source data.
type NullFloat struct {
	Value float64
	Valid bool
}

// FloatOf returns a valid NullFloat.
func FloatOf(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

// MarshalJSON encodes a missing value as null.
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = FloatOf(v)
	return nil
}

// Observation is one raw Secchi reading mapped onto canonical fields. It is
// comparable, so two observations are duplicates exactly when they are ==.
type Observation struct {
	RegionID NullInt
	Value    NullFloat
	Year     int
	Month    int
	Lat      NullFloat
	Lon      NullFloat
	Date     time.Time
}

// CleanObservation is an Observation with a region id, after deduplication.
type CleanObservation Observation

// Region returns the region id. It is always valid for a CleanObservation.
func (o CleanObservation) Region() int { return o.RegionID.Value }

// MonthlyMean is the pass-1 aggregate for one (region, year, month).
type MonthlyMean struct {
	RegionID int       `json:"rgn_id"`
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	Mean     NullFloat `json:"mean"`
}

// RegionYearMean is the pass-2 aggregate for one (region, year); one row of
// the emitted layer.
type RegionYearMean struct {
	RegionID int       `json:"rgn_id"`
	Year     int       `json:"year"`
	Mean     NullFloat `json:"mean"`
}

// Columns maps canonical fields to source column names.
type Columns struct {
	Region string
	Value  string
	Year   string
	Month  string
	Lat    string
	Lon    string
	Date   string
}

// DefaultColumns returns the column names of the regional monitoring export.
func DefaultColumns() Columns {
	return Columns{
		Region: "BHI_ID",
		Value:  "secchi",
		Year:   "year",
		Month:  "month",
		Lat:    "lat",
		Lon:    "lon",
		Date:   "date",
	}
}

// Names returns the source column names in canonical order.
func (c Columns) Names() []string {
	return []string{c.Region, c.Value, c.Year, c.Month, c.Lat, c.Lon, c.Date}
}

// OutputColumns names the columns of the emitted layer file.
type OutputColumns struct {
	Region string
	Year   string
	Value  string
}

// DefaultOutputColumns returns the header expected by the scoring toolbox.
func DefaultOutputColumns() OutputColumns {
	return OutputColumns{Region: "rgn_id", Year: "year", Value: "secchi"}
}

// Header returns the header row of the layer file.
func (c OutputColumns) Header() []string {
	return []string{c.Region, c.Year, c.Value}
}
