package domain

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadingStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want ReadingStatus
		ok   bool
	}{
		{"TBR", StatusToBeRead(), true},
		{"Reading", StatusReading(), true},
		{"2023", StatusYear(2023), true},
		{"1999", StatusYear(1999), true},
		{"reading", ReadingStatus{}, false},
		{"tbr", ReadingStatus{}, false},
		{"", ReadingStatus{}, false},
		{"next year", ReadingStatus{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseReadingStatus(tt.raw)
		assert.Equal(t, tt.ok, ok, "ok for %q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, "status for %q", tt.raw)
		}
	}
}

func TestReadingStatusStringRoundTrip(t *testing.T) {
	for _, s := range []ReadingStatus{StatusToBeRead(), StatusReading(), StatusYear(2020), StatusYear(2026)} {
		got, ok := ParseReadingStatus(s.String())
		require.True(t, ok, "parse %q", s.String())
		assert.Equal(t, s, got)
	}
}

func TestReadingStatusOrder(t *testing.T) {
	reading := StatusReading()
	tbr := StatusToBeRead()
	y2022 := StatusYear(2022)
	y2023 := StatusYear(2023)

	// Reading sorts above everything else.
	assert.True(t, reading.After(y2023))
	assert.True(t, reading.After(tbr))

	// Years sort above TBR and among themselves by value.
	assert.True(t, y2023.After(y2022))
	assert.True(t, y2022.After(tbr))
	assert.False(t, y2022.After(y2023))

	// Self-comparison is equal for every variant, TBR included.
	assert.Equal(t, 0, tbr.Compare(tbr))
	assert.Equal(t, 0, reading.Compare(reading))
	assert.Equal(t, 0, y2023.Compare(y2023))

	// Antisymmetry.
	assert.Equal(t, -1, tbr.Compare(reading))
	assert.Equal(t, 1, reading.Compare(tbr))
}

func TestReadingStatusJSON(t *testing.T) {
	type doc struct {
		Status ReadingStatus `json:"status"`
	}

	data, err := json.Marshal(doc{Status: StatusYear(2024)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"2024"}`, string(data))

	var out doc
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Reading"}`), &out))
	assert.Equal(t, StatusReading(), out.Status)

	err = json.Unmarshal([]byte(`{"status":"someday"}`), &out)
	assert.Error(t, err)
}
