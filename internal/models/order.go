package models

import (
	"slices"
	"strings"
)

// OrderEntries returns the visible entries of a single playlist in playlist order.
//
// The chain is walked from the head, the one entry whose predecessor is absent from the set.
// Entries the walk cannot reach (broken or ambiguous links, several heads) are appended
// sorted by absolute position and then id. Deleted entries are walked through but omitted.
func OrderEntries(entries []PlaylistEntry) []PlaylistEntry {
	return chainOrder(entries, false)
}

// ChainTail returns the id of the last link of a single playlist's chain, or "" for an
// empty playlist. Deleted entries still occupy links, so the tail may be a deleted entry.
// When the chain is broken the tail is the last entry in fallback order.
func ChainTail(entries []PlaylistEntry) string {
	ordered := chainOrder(entries, true)
	if len(ordered) == 0 {
		return ""
	}
	return ordered[len(ordered)-1].ID
}

func chainOrder(entries []PlaylistEntry, withDeleted bool) []PlaylistEntry {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}

	var heads []int
	for i, e := range entries {
		if _, ok := byID[e.PrecedingID]; e.PrecedingID == "" || !ok {
			heads = append(heads, i)
		}
	}

	visited := make([]bool, len(entries))
	ordered := make([]PlaylistEntry, 0, len(entries))

	if len(heads) == 1 {
		for i := heads[0]; !visited[i]; {
			visited[i] = true
			if withDeleted || !entries[i].Deleted {
				ordered = append(ordered, entries[i])
			}

			next, ok := byID[entries[i].FollowingID]
			if !ok || entries[next].PrecedingID != entries[i].ID {
				break
			}
			i = next
		}
	}

	var rest []PlaylistEntry
	for i, e := range entries {
		if !visited[i] && (withDeleted || !e.Deleted) {
			rest = append(rest, e)
		}
	}
	slices.SortStableFunc(rest, compareFallback)

	return append(ordered, rest...)
}

// compareFallback orders by absolute position, then id. Positions are compared as
// numeric strings so differing lengths sort correctly.
func compareFallback(a, b PlaylistEntry) int {
	if c := compareNumeric(a.AbsolutePosition, b.AbsolutePosition); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func compareNumeric(a, b string) int {
	a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
