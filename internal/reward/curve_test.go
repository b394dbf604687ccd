package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var windowStart = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func TestParseCurve(t *testing.T) {
	for _, value := range []string{"fixed", "TIER", " scaling "} {
		curve, err := ParseCurve(value)
		require.NoError(t, err)
		require.True(t, curve.Valid())
	}

	_, err := ParseCurve("linear")
	require.Error(t, err)
	require.False(t, Curve("linear").Valid())
}

func TestComputeBonusLateSubmission(t *testing.T) {
	deadline := windowStart.Add(10 * 24 * time.Hour)
	submitted := windowStart.Add(11 * 24 * time.Hour)

	for _, curve := range []Curve{CurveFixed, CurveTier, CurveScaling} {
		require.Zero(t, ComputeBonus(windowStart, deadline, submitted, 5.0, curve))
	}
}

func TestComputeBonusDegenerateWindow(t *testing.T) {
	for _, curve := range []Curve{CurveFixed, CurveTier, CurveScaling} {
		require.Zero(t, ComputeBonus(windowStart, windowStart, windowStart, 5.0, curve))
		require.Zero(t, ComputeBonus(windowStart, windowStart.Add(-time.Hour), windowStart.Add(-2*time.Hour), 5.0, curve))
	}
}

func TestComputeBonusFixed(t *testing.T) {
	deadline := windowStart.Add(10 * 24 * time.Hour)
	submitted := windowStart.Add(5 * 24 * time.Hour)

	require.Equal(t, 5.0, ComputeBonus(windowStart, deadline, submitted, 5.0, CurveFixed))
}

func TestComputeBonusTierBoundaries(t *testing.T) {
	deadline := windowStart.Add(100 * 24 * time.Hour)
	day := 24 * time.Hour

	cases := []struct {
		name      string
		submitted time.Time
		expected  float64
	}{
		{"start of window", windowStart, 8.0},
		{"exactly day 25", windowStart.Add(25 * day), 8.0},
		{"just past day 25", windowStart.Add(25*day + 15*time.Minute), 6.0},
		{"exactly day 50", windowStart.Add(50 * day), 6.0},
		{"exactly day 75", windowStart.Add(75 * day), 4.0},
		{"just past day 75", windowStart.Add(75*day + time.Minute), 2.0},
		{"at deadline", deadline, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.expected, ComputeBonus(windowStart, deadline, tc.submitted, 8.0, CurveTier), 1e-9)
		})
	}
}

func TestComputeBonusScaling(t *testing.T) {
	deadline := windowStart.Add(30 * 24 * time.Hour)
	day := 24 * time.Hour

	require.Equal(t, 5.0, ComputeBonus(windowStart, deadline, windowStart, 5.0, CurveScaling))
	require.Equal(t, 2.5, ComputeBonus(windowStart, deadline, windowStart.Add(15*day), 5.0, CurveScaling))
	require.Equal(t, 0.0, ComputeBonus(windowStart, deadline, deadline, 5.0, CurveScaling))

	// Rounded to two decimals.
	bonus := ComputeBonus(windowStart, deadline, windowStart.Add(10*day), 5.0, CurveScaling)
	require.InDelta(t, 3.33, bonus, 1e-9)
}

func TestComputeBonusScalingMonotonicDecay(t *testing.T) {
	deadline := windowStart.Add(30 * 24 * time.Hour)

	previous := ComputeBonus(windowStart, deadline, windowStart, 5.0, CurveScaling)
	for hours := 24; hours <= 720; hours += 24 {
		current := ComputeBonus(windowStart, deadline, windowStart.Add(time.Duration(hours)*time.Hour), 5.0, CurveScaling)
		require.LessOrEqual(t, current, previous)
		previous = current
	}
}
