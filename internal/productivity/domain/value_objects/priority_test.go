package value_objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManualPriority(t *testing.T) {
	p, err := NewManualPriority(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultManualPriority, p)

	p, err = NewManualPriority(9)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Int())

	_, err = NewManualPriority(11)
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = NewManualPriority(-1)
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestParseManualPriority(t *testing.T) {
	p, err := ParseManualPriority(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, ManualPriority(7), p)

	p, err = ParseManualPriority("")
	require.NoError(t, err)
	assert.Equal(t, DefaultManualPriority, p)

	_, err = ParseManualPriority("high")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestManualPriority_Zone(t *testing.T) {
	tests := []struct {
		priority ManualPriority
		want     Zone
	}{
		{10, ZoneRed},
		{8, ZoneRed},
		{7, ZoneAmber},
		{4, ZoneAmber},
		{3, ZoneGreen},
		{1, ZoneGreen},
		{0, ZoneAmber}, // unset resolves to 5
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.priority.Zone(), "priority %d", tt.priority)
	}
}

func TestManualPriority_Fraction(t *testing.T) {
	assert.InDelta(t, 0.9, ManualPriority(9).Fraction(), 1e-9)
	assert.InDelta(t, 0.5, ManualPriority(0).Fraction(), 1e-9)
}

func TestZoneForHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  Zone
	}{
		{-30, ZoneRed},
		{0, ZoneRed},
		{24, ZoneRed},
		{24.01, ZoneAmber},
		{96, ZoneAmber},
		{96.5, ZoneGreen},
		{168, ZoneGreen},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ZoneForHours(tt.hours), "hours %v", tt.hours)
	}
}

func TestZone_OrderAndParse(t *testing.T) {
	assert.Less(t, ZoneRed.Order(), ZoneAmber.Order())
	assert.Less(t, ZoneAmber.Order(), ZoneGreen.Order())

	z, err := ParseZone(" RED ")
	require.NoError(t, err)
	assert.Equal(t, ZoneRed, z)

	_, err = ParseZone("purple")
	assert.ErrorIs(t, err, ErrInvalidZone)
}

func TestWorkType_Kind(t *testing.T) {
	assert.True(t, WorkTypeShortAnswerQuestion.IsQuiz())
	assert.True(t, WorkTypeMultipleChoice.IsQuiz())
	assert.False(t, WorkTypeAssignment.IsQuiz())
	assert.False(t, WorkType("MATERIAL").IsQuiz())
	assert.Equal(t, WorkTypeAssignment, ParseWorkType(""))
	assert.Equal(t, WorkTypeMultipleChoice, ParseWorkType("multiple_choice"))
	assert.Equal(t, "quiz", KindQuiz.String())
}
