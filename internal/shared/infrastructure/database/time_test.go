package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime_SortsLexically(t *testing.T) {
	a := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	b := a.Add(1500 * time.Millisecond)
	assert.Less(t, FormatTime(a), FormatTime(b))
}

func TestParseTime_RoundTrip(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2024, 3, 1, 23, 59, 0, 123, loc)

	out, err := ParseTime(FormatTime(in))
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, time.UTC, out.Location())

	rfc, err := ParseTime("2024-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, rfc.Hour())

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}

func TestNullableTime(t *testing.T) {
	assert.Nil(t, FormatNullableTime(nil))

	got, err := ParseNullableTime(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Now()
	got, err = ParseNullableTime(sql.NullString{String: FormatTime(now), Valid: true})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, now.Equal(*got))
}
