package progression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/pseudotv/internal/library"
)

func TestParseCursorFormat(t *testing.T) {
	for in, want := range map[string]CursorFormat{
		"":            FormatTitle,
		"title":       FormatTitle,
		" Title ":     FormatTitle,
		"external_id": FormatExternalID,
	} {
		got, err := ParseCursorFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCursorFormat("plex")
	assert.Error(t, err)
}

// fakeReader resolves from in-memory rows in id order.
type fakeReader struct {
	rows []*library.Episode
	err  error
}

func (f fakeReader) match(pred func(*library.Episode) bool) ([]*library.Episode, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*library.Episode
	for _, e := range f.rows {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f fakeReader) EpisodesByExternalID(_, id string) ([]*library.Episode, error) {
	return f.match(func(e *library.Episode) bool { return e.ExternalID == id })
}

func (f fakeReader) EpisodesByTitle(_, title string) ([]*library.Episode, error) {
	return f.match(func(e *library.Episode) bool { return e.Title == title })
}

func TestEncodeCursor(t *testing.T) {
	pilot := &library.Episode{ID: 1, Title: "Pilot", ExternalID: "42"}
	noID := &library.Episode{ID: 2, Title: "Second"}
	dupA := &library.Episode{ID: 3, Title: "Untitled", ExternalID: "50"}
	dupB := &library.Episode{ID: 4, Title: "Untitled", ExternalID: "51"}
	again := &library.Episode{ID: 5, Title: "Pilot", ExternalID: "42"}
	r := fakeReader{rows: []*library.Episode{pilot, noID, dupA, dupB}}

	tests := []struct {
		name   string
		reader fakeReader
		format CursorFormat
		ep     *library.Episode
		want   string
	}{
		{"title", r, FormatTitle, pilot, "Pilot"},
		{"external id", r, FormatExternalID, pilot, "42"},
		{"external id missing", r, FormatExternalID, noID, "Second"},
		{"shared title", r, FormatTitle, dupB, "51"},
		{"repeated entry", fakeReader{rows: []*library.Episode{pilot, noID, again}}, FormatTitle, again, "Pilot#2"},
		{"repeated entry by id", fakeReader{rows: []*library.Episode{pilot, noID, again}}, FormatExternalID, again, "42#2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeCursor(tt.reader, tt.format, tt.ep)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCursor(t *testing.T) {
	r := fakeReader{rows: []*library.Episode{
		{ID: 1, Title: "Pilot", ExternalID: "11"},
		{ID: 3, Title: "77", ExternalID: "13"},
		{ID: 5, Title: "Pilot", ExternalID: "11"},
		{ID: 7, Title: "Seventh", ExternalID: "77"},
		{ID: 9, Title: "Part #1", ExternalID: "19"},
	}}

	ref, kind, err := resolveCursor(r, "Foo", "")
	require.NoError(t, err)
	assert.Equal(t, cursorEmpty, kind)
	assert.Zero(t, ref.ID)

	tests := []struct {
		cursor string
		kind   cursorKind
		id     int64
	}{
		{"77", cursorExternalID, 7},
		{"Pilot", cursorTitle, 1},
		{"Pilot#2", cursorTitle, 5},
		{"11#2", cursorExternalID, 5},
		{"Part #1", cursorTitle, 9},
	}
	for _, tt := range tests {
		ref, kind, err := resolveCursor(r, "Foo", tt.cursor)
		require.NoError(t, err, tt.cursor)
		assert.Equal(t, tt.kind, kind, tt.cursor)
		assert.Equal(t, EpisodeRef{ID: tt.id}, ref, tt.cursor)
	}

	for _, gone := range []string{"Gone", "Pilot#3", "Pilot#0", "#1"} {
		_, _, err = resolveCursor(r, "Foo", gone)
		assert.ErrorIs(t, err, library.ErrInvalidState, gone)
	}
}

func TestResolveCursor_StoreFailure(t *testing.T) {
	boom := errors.Join(library.ErrStoreFailure, errors.New("disk"))
	_, _, err := resolveCursor(fakeReader{err: boom}, "Foo", "x")
	assert.ErrorIs(t, err, library.ErrStoreFailure)
	assert.NotErrorIs(t, err, library.ErrInvalidState)
}

func TestCursorKind_String(t *testing.T) {
	assert.Equal(t, "empty", cursorEmpty.String())
	assert.Equal(t, "external_id", cursorExternalID.String())
	assert.Equal(t, "title", cursorTitle.String())
}
