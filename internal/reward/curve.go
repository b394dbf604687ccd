// Package reward computes early-submission bonus marks for assignments.
package reward

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Curve selects how the bonus decays between assignment creation and deadline.
type Curve string

const (
	// CurveFixed awards the full bonus for any on-time submission.
	CurveFixed Curve = "fixed"
	// CurveTier awards a stepped fraction of the bonus by elapsed window time.
	CurveTier Curve = "tier"
	// CurveScaling awards a bonus proportional to the remaining window time.
	CurveScaling Curve = "scaling"
)

// ParseCurve normalises a stored curve name. Unrecognised values are rejected
// so a malformed assignment row cannot silently award the wrong bonus.
func ParseCurve(value string) (Curve, error) {
	switch Curve(strings.ToLower(strings.TrimSpace(value))) {
	case CurveFixed:
		return CurveFixed, nil
	case CurveTier:
		return CurveTier, nil
	case CurveScaling:
		return CurveScaling, nil
	default:
		return "", fmt.Errorf("unknown reward curve %q", value)
	}
}

// Valid reports whether the curve is one of the supported kinds.
func (c Curve) Valid() bool {
	_, err := ParseCurve(string(c))
	return err == nil
}

// ComputeBonus returns the bonus marks for a submission. Late submissions and
// degenerate windows (deadline not after creation) always earn zero; there is
// no error path.
func ComputeBonus(createdAt, deadline, submittedAt time.Time, maxBonus float64, curve Curve) float64 {
	if submittedAt.After(deadline) {
		return 0.0
	}

	totalWindow := deadline.Sub(createdAt)
	if totalWindow <= 0 {
		return 0.0
	}

	elapsed := submittedAt.Sub(createdAt)
	remaining := deadline.Sub(submittedAt)

	switch curve {
	case CurveFixed:
		return maxBonus
	case CurveTier:
		elapsedPercent := float64(elapsed) / float64(totalWindow) * 100
		switch {
		case elapsedPercent <= 25:
			return maxBonus
		case elapsedPercent <= 50:
			return maxBonus * 0.75
		case elapsedPercent <= 75:
			return maxBonus * 0.50
		default:
			return maxBonus * 0.25
		}
	case CurveScaling:
		bonus := maxBonus * (float64(remaining) / float64(totalWindow))
		return math.Round(bonus*100) / 100
	}

	return 0.0
}
