package workflow

// StuckWindow is the number of consecutive identical failure signatures
// that terminates a run as non-converging.
const StuckWindow = 3

// FailureHistory records the set of failing test identifiers per iteration
// for stuck-loop detection. It lives only for the duration of one run; a
// resumed run restarts with an empty history.
type FailureHistory struct {
	entries []map[string]struct{}
}

// Record appends one iteration's failing identifiers as a set.
// Iterations without failures are not recorded.
func (h *FailureHistory) Record(failingTests []string) {
	if len(failingTests) == 0 {
		return
	}
	set := make(map[string]struct{}, len(failingTests))
	for _, name := range failingTests {
		set[name] = struct{}{}
	}
	h.entries = append(h.entries, set)
}

// Len returns the number of recorded failing iterations.
func (h *FailureHistory) Len() int {
	return len(h.entries)
}

// Stuck reports whether the last StuckWindow entries are all non-empty and
// pairwise identical. Identical repeated failures are sufficient evidence
// of non-convergence on their own, so this check runs before any analysis
// call is made.
func (h *FailureHistory) Stuck() bool {
	if len(h.entries) < StuckWindow {
		return false
	}
	window := h.entries[len(h.entries)-StuckWindow:]
	first := window[0]
	if len(first) == 0 {
		return false
	}
	for _, entry := range window[1:] {
		if !sameSet(first, entry) {
			return false
		}
	}
	return true
}

// LastFailing returns the most recent failing identifier set as a slice.
// Order is unspecified; callers sort for display.
func (h *FailureHistory) LastFailing() []string {
	if len(h.entries) == 0 {
		return nil
	}
	last := h.entries[len(h.entries)-1]
	names := make([]string, 0, len(last))
	for name := range last {
		names = append(names, name)
	}
	return names
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
