package domain

// CleanResult holds the cleaned observations and the counts of the two
// deliberate drops.
type CleanResult struct {
	Observations         []CleanObservation
	DroppedMissingRegion int
	DroppedDuplicates    int
}

// Clean drops observations without a region id and then removes exact
// duplicates. Input order is preserved.
func Clean(obs []Observation) CleanResult {
	withRegion, dropped := DropMissingRegion(obs)
	unique, dups := Dedupe(withRegion)
	return CleanResult{
		Observations:         unique,
		DroppedMissingRegion: dropped,
		DroppedDuplicates:    dups,
	}
}

// DropMissingRegion keeps observations that carry a region id and returns how
// many were dropped.
func DropMissingRegion(obs []Observation) ([]CleanObservation, int) {
	out := make([]CleanObservation, 0, len(obs))
	for _, o := range obs {
		if !o.RegionID.Valid {
			continue
		}
		out = append(out, CleanObservation(o))
	}
	return out, len(obs) - len(out)
}

// Dedupe keeps the first occurrence of each distinct row, comparing whole rows
// rather than a key. It returns the number of rows removed. Dedupe is
// idempotent.
func Dedupe[T comparable](rows []T) ([]T, int) {
	seen := make(map[T]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, len(rows) - len(out)
}
