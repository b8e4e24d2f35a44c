package domain

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey names the field playlist entries are ordered by.
type SortKey string

// Supported sort keys.
const (
	SortByID              SortKey = "id"
	SortByTitle           SortKey = "title"
	SortByDurationSeconds SortKey = "durationSeconds"
	SortByAddedAt         SortKey = "addedAt"
	SortByPosition        SortKey = "position"
)

// Direction is the sort direction.
type Direction string

// Supported directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSortKey returns the key named by s, or SortByID when s is not recognised.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortByID, SortByTitle, SortByDurationSeconds, SortByAddedAt, SortByPosition:
		return k
	}
	return SortByID
}

// ParseDirection returns the direction named by s (case-insensitive), or Asc
// when s is not recognised.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// SortEntries orders entries in place by key and dir. Entries with equal keys
// keep a total order by (PlaylistID, TrackID) ascending, whatever the
// direction. With SortByPosition, entries without a position come last.
func SortEntries(entries []PlaylistTrackEntry, key SortKey, dir Direction) {
	slices.SortFunc(entries, func(a, b PlaylistTrackEntry) int {
		if c := compareKey(a, b, key, dir); c != 0 {
			return c
		}
		if c := cmp.Compare(a.PlaylistID, b.PlaylistID); c != 0 {
			return c
		}
		return cmp.Compare(a.Track.ID, b.Track.ID)
	})
}

func compareKey(a, b PlaylistTrackEntry, key SortKey, dir Direction) int {
	var c int
	switch key {
	case SortByTitle:
		c = strings.Compare(a.Track.Title, b.Track.Title)
	case SortByDurationSeconds:
		c = cmp.Compare(a.Track.DurationSeconds, b.Track.DurationSeconds)
	case SortByAddedAt:
		c = a.AddedAt.Compare(b.AddedAt)
	case SortByPosition:
		switch {
		case a.Position == nil && b.Position == nil:
			return 0
		case a.Position == nil:
			return 1
		case b.Position == nil:
			return -1
		}
		c = cmp.Compare(*a.Position, *b.Position)
	default:
		c = cmp.Compare(a.Track.ID, b.Track.ID)
	}
	if dir == Desc {
		return -c
	}
	return c
}
