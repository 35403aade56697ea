package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	d := domain.MustParseDay("2024-01-07")

	assert.Equal(t, "2024-01-07", d.String())
	assert.Equal(t, "2024-01-06", d.AddDays(-1).String())
	assert.Equal(t, "2024-03-01", domain.MustParseDay("2024-02-29").AddDays(1).String())
	assert.True(t, d.AddDays(-1).Before(d))
	assert.True(t, d.Equal(domain.NewDay(time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC))))
	assert.Equal(t, 3, d.DaysUntil(d.AddDays(3)))
	assert.Equal(t, -2, d.DaysUntil(d.AddDays(-2)))

	// Sunday belongs to the week starting Monday the 1st
	assert.Equal(t, "2024-01-01", d.WeekStart().String())
	year, week := d.ISOWeek()
	assert.Equal(t, 2024, year)
	assert.Equal(t, 1, week)

	_, err := domain.ParseDay("07/01/2024")
	assert.Error(t, err)
}

func TestDayIn(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	instant := time.Date(2024, 1, 6, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-07", domain.DayIn(instant, tokyo).String())
	assert.Equal(t, "2024-01-06", domain.DayIn(instant, time.UTC).String())
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, tokyo), domain.DayIn(instant, tokyo).Start(tokyo))
}

func TestDay_JSON(t *testing.T) {
	type wrapper struct {
		Last domain.Day `json:"last"`
	}

	b, err := json.Marshal(wrapper{Last: domain.MustParseDay("2024-01-07")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"last":"2024-01-07"}`, string(b))

	b, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"last":null}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"last":"2023-12-31"}`), &w))
	assert.Equal(t, "2023-12-31", w.Last.String())
	require.NoError(t, json.Unmarshal([]byte(`{"last":null}`), &w))
	assert.True(t, w.Last.IsZero())
}
