package changes

import (
	"sort"
)

// Diff is the classification of a directory's files against the last snapshot.
type Diff struct {
	Added    []string
	Modified []string
	Removed  []string
}

func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// HasChanged reports whether the current listing differs from the previous
// snapshot in count, membership or any shared fingerprint.
func HasChanged(previous, current []string, previousFP, currentFP map[string]Fingerprint) bool {
	if len(previous) != len(current) {
		return true
	}
	prev := sortedCopy(previous)
	cur := sortedCopy(current)
	for i := range prev {
		if prev[i] != cur[i] {
			return true
		}
	}
	for _, path := range cur {
		if fingerprintChanged(previousFP, currentFP, path) {
			return true
		}
	}
	return false
}

// Compare classifies every path. Output slices are sorted.
func Compare(previous, current []string, previousFP, currentFP map[string]Fingerprint) Diff {
	prevSet := make(map[string]bool, len(previous))
	for _, p := range previous {
		prevSet[p] = true
	}
	curSet := make(map[string]bool, len(current))
	for _, p := range current {
		curSet[p] = true
	}

	var d Diff
	for _, p := range sortedCopy(previous) {
		if !curSet[p] {
			d.Removed = append(d.Removed, p)
		}
	}
	for _, p := range sortedCopy(current) {
		if !prevSet[p] {
			d.Added = append(d.Added, p)
			continue
		}
		if fingerprintChanged(previousFP, currentFP, p) {
			d.Modified = append(d.Modified, p)
		}
	}
	return d
}

func fingerprintChanged(previousFP, currentFP map[string]Fingerprint, path string) bool {
	before, hadBefore := previousFP[path]
	after, hasAfter := currentFP[path]
	if hadBefore != hasAfter {
		return true
	}
	return hadBefore && before.Checksum != after.Checksum
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
