package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readkeepapp/readkeep-server/internal/domain"
)

func validRow() map[string]string {
	return map[string]string{
		FieldTitle:  "The Fifth Season",
		FieldAuthor: "N. K. Jemisin",
		FieldGenre:  "Fantasy",
	}
}

func TestParseRequiredFields(t *testing.T) {
	missingTitle := validRow()
	missingTitle[FieldTitle] = ""
	_, err := Parse(missingTitle)
	assert.ErrorIs(t, err, ErrMissingTitle)

	noTitleKey := validRow()
	delete(noTitleKey, FieldTitle)
	_, err = Parse(noTitleKey)
	assert.ErrorIs(t, err, ErrMissingTitle)

	missingAuthor := validRow()
	missingAuthor[FieldAuthor] = ""
	_, err = Parse(missingAuthor)
	assert.ErrorIs(t, err, ErrMissingAuthor)
	assert.NotErrorIs(t, err, ErrMissingTitle)

	// Genre only requires the key; empty string is accepted.
	noGenreKey := validRow()
	delete(noGenreKey, FieldGenre)
	_, err = Parse(noGenreKey)
	assert.ErrorIs(t, err, ErrMissingGenre)

	emptyGenre := validRow()
	emptyGenre[FieldGenre] = ""
	record, err := Parse(emptyGenre)
	require.NoError(t, err)
	assert.Empty(t, record.Genre)
}

func TestParseDefaults(t *testing.T) {
	record, err := Parse(validRow())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusToBeRead(), record.Status)
	assert.Equal(t, 0, record.Rating)
	assert.Equal(t, 0, record.CoverID)
	assert.Empty(t, record.Series)
	assert.Equal(t, domain.ReadType(""), record.ReadType)
	assert.Nil(t, record.DateAdded)
	assert.Nil(t, record.DateStarted)
	assert.Nil(t, record.DateCompleted)
	assert.Equal(t, []string{"Fantasy"}, record.Tags)
}

func TestParseFullRow(t *testing.T) {
	row := validRow()
	row[FieldSeries] = "Broken Earth"
	row[FieldYear] = "2023"
	row[FieldRating] = "4.5"
	row[FieldCoverID] = "12"
	row[FieldReadType] = "Libby"
	row[FieldDateAdded] = "1/15/2023"
	row[FieldDateStarted] = "2/1/2023"
	row[FieldDateCompleted] = "3/7/2023"
	row[FieldTags] = "favorites,reread"

	record, err := Parse(row)
	require.NoError(t, err)

	assert.Equal(t, "Broken Earth", record.Series)
	assert.Equal(t, domain.StatusYear(2023), record.Status)
	assert.Equal(t, 4, record.Rating)
	assert.Equal(t, 12, record.CoverID)
	assert.Equal(t, domain.ReadTypeEBook, record.ReadType)
	require.NotNil(t, record.DateAdded)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), *record.DateAdded)
	require.NotNil(t, record.DateCompleted)
	assert.Equal(t, time.Date(2023, 3, 7, 0, 0, 0, 0, time.UTC), *record.DateCompleted)
	assert.Equal(t, []string{"favorites", "reread", "Fantasy"}, record.Tags)
}

func TestParseDegradedFields(t *testing.T) {
	row := validRow()
	row[FieldYear] = "someday"
	row[FieldRating] = "lots"
	row[FieldCoverID] = "none"
	row[FieldDateAdded] = "2023-01-15" // wrong format
	row[FieldReadType] = "Scroll"

	record, err := Parse(row)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusToBeRead(), record.Status)
	assert.Equal(t, 0, record.Rating)
	assert.Equal(t, 0, record.CoverID)
	assert.Nil(t, record.DateAdded)
	// Present but unrecognized falls back to Physical.
	assert.Equal(t, domain.ReadTypePhysical, record.ReadType)
}

func TestParseRatingClamped(t *testing.T) {
	row := validRow()
	row[FieldRating] = "9"
	record, err := Parse(row)
	require.NoError(t, err)
	assert.Equal(t, 5, record.Rating)

	row[FieldRating] = "-2"
	record, err = Parse(row)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Rating)
}

func TestParseGenreTagExactlyOnce(t *testing.T) {
	row := validRow()
	row[FieldTags] = "Fantasy,favorites"
	record, err := Parse(row)
	require.NoError(t, err)

	count := 0
	for _, tag := range record.Tags {
		if tag == "Fantasy" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"Fantasy", "favorites"}, record.Tags)

	// Case differences are distinct tags.
	row[FieldTags] = "fantasy"
	record, err = Parse(row)
	require.NoError(t, err)
	assert.Equal(t, []string{"fantasy", "Fantasy"}, record.Tags)
}

func TestParseAllSkipsInvalidRows(t *testing.T) {
	rows := []map[string]string{
		{FieldTitle: "First", FieldAuthor: "A", FieldGenre: "SF"},
		{FieldTitle: "", FieldAuthor: "B", FieldGenre: "SF"},
		{FieldTitle: "Third", FieldAuthor: "C", FieldGenre: "SF"},
	}
	records := ParseAll(rows)
	require.Len(t, records, 2)
	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "Third", records[1].Title)
}

func TestMissingFieldErrorMatching(t *testing.T) {
	wrapped := &MissingFieldError{Field: FieldAuthor}
	assert.True(t, errors.Is(wrapped, ErrMissingAuthor))
	assert.False(t, errors.Is(wrapped, ErrMissingGenre))
}

func TestReadTable(t *testing.T) {
	input := strings.Join([]string{
		"Title,Author,Genre,Year",
		"Dune,Frank Herbert,SF,2021",
		"",
		"Short Row,Someone",
	}, "\n")

	rows, err := ReadTable(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Dune", rows[0][FieldTitle])
	assert.Equal(t, "2021", rows[0][FieldYear])

	// Short rows leave trailing columns absent.
	_, hasGenre := rows[1][FieldGenre]
	assert.False(t, hasGenre)
}

func TestReadTableThenParseAll(t *testing.T) {
	input := strings.Join([]string{
		"Title,Author,Genre,Year,Rating",
		"Dune,Frank Herbert,SF,2021,5",
		",Anonymous,SF,,",
		"Hyperion,Dan Simmons,SF,Reading,",
	}, "\n")

	rows, err := ReadTable(strings.NewReader(input))
	require.NoError(t, err)

	records := ParseAll(rows)
	require.Len(t, records, 2)
	assert.Equal(t, domain.StatusYear(2021), records[0].Status)
	assert.Equal(t, 5, records[0].Rating)
	assert.Equal(t, domain.StatusReading(), records[1].Status)
}
