package progression

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmunix/pseudotv/internal/library"
)

// CursorFormat selects what NextEpisode writes into a show's cursor.
// Both formats are always readable.
type CursorFormat string

const (
	FormatTitle      CursorFormat = "title"
	FormatExternalID CursorFormat = "external_id"
)

// ParseCursorFormat validates a configured cursor format. Empty means title.
func ParseCursorFormat(s string) (CursorFormat, error) {
	switch CursorFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTitle:
		return FormatTitle, nil
	case FormatExternalID:
		return FormatExternalID, nil
	}
	return "", fmt.Errorf("unknown cursor format %q (want %q or %q)", s, FormatTitle, FormatExternalID)
}

// EpisodeRef identifies the episode a cursor points at.
type EpisodeRef struct {
	ID int64
}

// cursorKind records how a stored cursor was interpreted.
type cursorKind int

const (
	cursorEmpty cursorKind = iota
	cursorExternalID
	cursorTitle
)

func (k cursorKind) String() string {
	switch k {
	case cursorExternalID:
		return "external_id"
	case cursorTitle:
		return "title"
	default:
		return "empty"
	}
}

// cursorReader is the subset of library.Tx needed to encode and decode a
// cursor.
type cursorReader interface {
	EpisodesByExternalID(showTitle, externalID string) ([]*library.Episode, error)
	EpisodesByTitle(showTitle, title string) ([]*library.Episode, error)
}

type cursorKey struct {
	kind   cursorKind
	value  string
	lookup func(showTitle, value string) ([]*library.Episode, error)
}

// encodeCursor returns the cursor naming ep. The format's preferred key is
// written when it matches only ep within the show, then the other key. When
// both repeat, as in a playlist, the occurrence is appended: "Pilot#2".
// Episodes without an external id fall back to their title.
func encodeCursor(r cursorReader, f CursorFormat, ep *library.Episode) (string, error) {
	keys := []cursorKey{
		{cursorTitle, ep.Title, r.EpisodesByTitle},
		{cursorExternalID, ep.ExternalID, r.EpisodesByExternalID},
	}
	if f == FormatExternalID {
		keys[0], keys[1] = keys[1], keys[0]
	}

	fallback := ""
	for _, k := range keys {
		if k.value == "" {
			continue
		}
		matches, err := k.lookup(ep.ShowTitle, k.value)
		if err != nil {
			return "", err
		}
		if len(matches) <= 1 {
			return k.value, nil
		}
		if fallback != "" {
			continue
		}
		for i, m := range matches {
			if m.ID == ep.ID {
				fallback = k.value + "#" + strconv.Itoa(i+1)
				break
			}
		}
	}
	if fallback == "" {
		return ep.Title, nil
	}
	return fallback, nil
}

// splitOccurrence parses the "#n" suffix written by encodeCursor.
func splitOccurrence(cursor string) (string, int, bool) {
	i := strings.LastIndexByte(cursor, '#')
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(cursor[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return cursor[:i], n, true
}

// resolveCursor decodes the raw cursor of a show. An exact external id
// match wins over a title match, and both win over an occurrence suffix.
// A non-empty cursor that matches nothing yields library.ErrInvalidState.
func resolveCursor(r cursorReader, showTitle, cursor string) (EpisodeRef, cursorKind, error) {
	if cursor == "" {
		return EpisodeRef{}, cursorEmpty, nil
	}

	keys := []cursorKey{
		{cursorExternalID, cursor, r.EpisodesByExternalID},
		{cursorTitle, cursor, r.EpisodesByTitle},
	}
	for _, k := range keys {
		matches, err := k.lookup(showTitle, k.value)
		if err != nil {
			return EpisodeRef{}, cursorEmpty, err
		}
		if len(matches) > 0 {
			return EpisodeRef{ID: matches[0].ID}, k.kind, nil
		}
	}

	if base, n, ok := splitOccurrence(cursor); ok {
		for _, k := range keys {
			matches, err := k.lookup(showTitle, base)
			if err != nil {
				return EpisodeRef{}, cursorEmpty, err
			}
			if n <= len(matches) {
				return EpisodeRef{ID: matches[n-1].ID}, k.kind, nil
			}
		}
	}
	return EpisodeRef{}, cursorEmpty, fmt.Errorf("cursor %q of %s: %w", cursor, showTitle, library.ErrInvalidState)
}
