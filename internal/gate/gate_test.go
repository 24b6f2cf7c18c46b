package gate

import (
	"testing"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
	"github.com/stretchr/testify/assert"
)

func tally(critical, high, medium, low, info int) models.Tally {
	return models.Tally{info, low, medium, high, critical}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tally      models.Tally
		thresholds models.Thresholds
		want       []string
	}{
		{
			name:       "low and info are never gated",
			tally:      tally(0, 0, 0, 2, 1),
			thresholds: models.Thresholds{Critical: models.Int(0)},
		},
		{
			name:       "one critical over zero",
			tally:      tally(1, 0, 0, 0, 0),
			thresholds: models.Thresholds{Critical: models.Int(0)},
			want:       []string{ReasonMaxCritical},
		},
		{
			name:       "high exceeded, medium within",
			tally:      tally(0, 3, 5, 0, 0),
			thresholds: models.Thresholds{High: models.Int(2), Medium: models.Int(10)},
			want:       []string{ReasonMaxHigh},
		},
		{
			name:       "no thresholds",
			tally:      tally(100, 100, 100, 100, 100),
			thresholds: models.Thresholds{},
		},
		{
			name:       "equal to the maximum passes",
			tally:      tally(2, 2, 2, 0, 0),
			thresholds: models.Thresholds{Critical: models.Int(2), High: models.Int(2), Medium: models.Int(2)},
		},
		{
			name:       "every tier exceeded keeps check order",
			tally:      tally(1, 1, 1, 0, 0),
			thresholds: models.Thresholds{Critical: models.Int(0), High: models.Int(0), Medium: models.Int(0)},
			want:       []string{ReasonMaxCritical, ReasonMaxHigh, ReasonMaxMedium},
		},
		{
			name:       "high and medium without critical threshold",
			tally:      tally(9, 4, 4, 0, 0),
			thresholds: models.Thresholds{High: models.Int(3), Medium: models.Int(3)},
			want:       []string{ReasonMaxHigh, ReasonMaxMedium},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := Evaluate(tt.tally, tt.thresholds)
			assert.Equal(t, tt.want, v.Reasons)
			assert.Equal(t, len(tt.want) == 0, v.Passed())
		})
	}
}

// Pass iff every set threshold holds, over a small exhaustive grid
func TestEvaluatePassesIffWithinThresholds(t *testing.T) {
	t.Parallel()

	maxima := []*int{nil, models.Int(0), models.Int(1), models.Int(3)}
	for c := 0; c <= 2; c++ {
		for h := 0; h <= 2; h++ {
			for m := 0; m <= 4; m++ {
				for _, cm := range maxima {
					for _, hm := range maxima {
						for _, mm := range maxima {
							th := models.Thresholds{Critical: cm, High: hm, Medium: mm}
							want := within(c, cm) && within(h, hm) && within(m, mm)
							got := Evaluate(tally(c, h, m, 7, 7), th).Passed()
							if got != want {
								t.Fatalf("Evaluate(c=%d h=%d m=%d, %+v) passed=%v, want %v", c, h, m, th, got, want)
							}
						}
					}
				}
			}
		}
	}
}

func within(n int, limit *int) bool {
	return limit == nil || n <= *limit
}

func TestVerdictString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Build Passed!", Verdict{}.String())
	assert.Equal(t, "Build Failed: Max Critical", Verdict{Reasons: []string{ReasonMaxCritical}}.String())
	assert.Equal(t, "Build Failed: Max High Max Medium",
		Verdict{Reasons: []string{ReasonMaxHigh, ReasonMaxMedium}}.String())
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExitPassed, ExitCode(Verdict{}))
	assert.Equal(t, ExitFailed, ExitCode(Verdict{Reasons: []string{ReasonMaxMedium}}))
	assert.NotEqual(t, ExitFailed, ExitError)
}
