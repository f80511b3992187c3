// Command genmock writes a synthetic Secchi observation file for demos and
// manual runs of the job. The output is deterministic for a given seed and
// deliberately contains the defects the cleaner has to handle: rows without a
// region id, exact duplicates, missing depth values, and readings outside the
// summer window.
//
// Usage:
//
//	go run ./cmd/genmock -out data/secchi_data.csv -regions 42 -seed 2016
//	go run ./cmd/genmock -out data/secchi_data.xlsx
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

// Baltic Sea bounding box used for station coordinates.
const (
	latMin, latMax = 53.5, 66.0
	lonMin, lonMax = 9.5, 30.0
)

type options struct {
	out           string
	seed          uint64
	regions       int
	yearFrom      int
	yearTo        int
	perMonth      int
	missingRate   float64
	nullRate      float64
	duplicateRate float64
}

type stats struct {
	rows, missingRegion, nullValue, duplicates int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var o options
	flag.StringVar(&o.out, "out", "", "output path (.csv or .xlsx)")
	flag.Uint64Var(&o.seed, "seed", 2016, "random seed")
	flag.IntVar(&o.regions, "regions", 42, "number of regions")
	flag.IntVar(&o.yearFrom, "year-from", 2008, "first year")
	flag.IntVar(&o.yearTo, "year-to", 2017, "last year")
	flag.IntVar(&o.perMonth, "per-month", 3, "readings per region and month")
	flag.Float64Var(&o.missingRate, "missing-region-rate", 0.02, "share of rows without a region id")
	flag.Float64Var(&o.nullRate, "null-rate", 0.05, "share of rows without a depth value")
	flag.Float64Var(&o.duplicateRate, "duplicate-rate", 0.03, "share of rows repeated verbatim")
	flag.Parse()

	if o.out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if o.regions < 1 || o.perMonth < 1 || o.yearFrom > o.yearTo {
		return fmt.Errorf("invalid sizes: regions=%d per-month=%d years=%d-%d", o.regions, o.perMonth, o.yearFrom, o.yearTo)
	}

	rows, st := generate(o)
	header := domain.DefaultColumns().Names()

	if err := os.MkdirAll(filepath.Dir(o.out), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	var err error
	if strings.EqualFold(filepath.Ext(o.out), ".xlsx") {
		err = writeXLSX(o.out, header, rows)
	} else {
		err = writeCSV(o.out, header, rows)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", o.out, err)
	}

	log.Printf("wrote %s: %d rows (%d without region, %d null values, %d duplicates)",
		o.out, st.rows, st.missingRegion, st.nullValue, st.duplicates)
	return nil
}

// generate builds rows in the default column order: region, value, year,
// month, lat, lon, date.
func generate(o options) ([][]string, stats) {
	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x5ecc41))
	var st stats
	var rows [][]string

	for region := 1; region <= o.regions; region++ {
		// Each region gets its own clarity level and station position.
		base := 2 + rng.Float64()*8
		lat := latMin + rng.Float64()*(latMax-latMin)
		lon := lonMin + rng.Float64()*(lonMax-lonMin)

		for year := o.yearFrom; year <= o.yearTo; year++ {
			for month := 1; month <= 12; month++ {
				for range o.perMonth {
					day := 1 + rng.IntN(28)
					date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
					depth := math.Max(0.2, base+seasonal(month)+rng.NormFloat64()*0.8)

					regionField := strconv.Itoa(region)
					if rng.Float64() < o.missingRate {
						regionField = ""
						st.missingRegion++
					}
					valueField := strconv.FormatFloat(depth, 'f', 2, 64)
					if rng.Float64() < o.nullRate {
						valueField = "NA"
						st.nullValue++
					}

					row := []string{
						regionField,
						valueField,
						strconv.Itoa(year),
						strconv.Itoa(month),
						strconv.FormatFloat(lat+rng.NormFloat64()*0.05, 'f', 4, 64),
						strconv.FormatFloat(lon+rng.NormFloat64()*0.05, 'f', 4, 64),
						date.Format(domain.DefaultDateLayout),
					}
					rows = append(rows, row)
					if rng.Float64() < o.duplicateRate {
						rows = append(rows, append([]string(nil), row...))
						st.duplicates++
					}
				}
			}
		}
	}
	st.rows = len(rows)
	return rows, st
}

// seasonal shifts clarity down in late spring blooms and up in late summer.
func seasonal(month int) float64 {
	return 1.2 * math.Sin(2*math.Pi*float64(month-5)/12)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func writeXLSX(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, n int, fields []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	values := make([]any, len(fields))
	for i, v := range fields {
		values[i] = v
	}
	return f.SetSheetRow(sheet, cell, &values)
}
