package store

// MissingPages returns every page in 1..totalPages that is absent from the
// recorded set, ascending. The recovery pipeline dispatches exactly this
// complement, which is what makes re-running it idempotent.
func MissingPages(totalPages int, recorded map[int]bool) []int {
	var missing []int
	for p := 1; p <= totalPages; p++ {
		if !recorded[p] {
			missing = append(missing, p)
		}
	}
	return missing
}
