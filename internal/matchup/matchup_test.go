package matchup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasHandednessAdvantage(t *testing.T) {
	tests := []struct {
		batter  string
		pitcher string
		want    bool
	}{
		{"S", "R", true},
		{"S", "L", true},
		{"L", "R", true},
		{"R", "L", true},
		{"L", "L", false},
		{"R", "R", false},
		{"", "R", false},
		{"R", "", false},
		{"left", "Right", true},
		{"B", "L", true},
	}

	for _, tt := range tests {
		t.Run(tt.batter+"_vs_"+tt.pitcher, func(t *testing.T) {
			assert.Equal(t, tt.want, HasHandednessAdvantage(tt.batter, tt.pitcher))
		})
	}
}

func TestAssessPitcher(t *testing.T) {
	tests := []struct {
		name      string
		hr9       float64
		era       float64
		advantage bool
		points    int
		quality   Quality
	}{
		{"batting practice", 2.0, 5.1, true, 8, QualityGreat},
		{"hittable arm", 1.5, 4.3, false, 4, QualityGood},
		{"average", 1.2, 3.9, false, 2, QualityAverage},
		{"ace", 0.7, 2.5, false, 0, QualityTough},
		{"ace with platoon edge", 0.7, 2.5, true, 2, QualityAverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AssessPitcher(tt.hr9, tt.era, tt.advantage)
			assert.Equal(t, tt.points, a.Points)
			assert.Equal(t, tt.quality, a.Quality)
			assert.NotEmpty(t, a.Label)
			assert.NotEmpty(t, a.Description)
		})
	}
}

func TestDescribePitcher(t *testing.T) {
	assert.Equal(t, "Allows lots of home runs & runs", describePitcher(1.6, 4.6))
	assert.Equal(t, "Allows 1.7 HRs per 9 innings", describePitcher(1.7, 3.2))
	assert.Equal(t, "Struggles with run prevention", describePitcher(1.2, 4.9))
	assert.Equal(t, "Elite pitcher - tough to homer against", describePitcher(0.8, 3.1))
	assert.Equal(t, "Rarely gives up home runs", describePitcher(1.0, 3.9))
	assert.Equal(t, "Average pitcher stats", describePitcher(1.2, 4.0))
}

func TestDescribeHR9AndPlatoonHint(t *testing.T) {
	assert.Equal(t, "Gives up HRs", DescribeHR9(1.9))
	assert.Equal(t, "Hittable", DescribeHR9(1.4))
	assert.Equal(t, "Stingy", DescribeHR9(0.9))
	assert.Equal(t, "Average", DescribeHR9(1.2))

	assert.Equal(t, "Right-handed batters get advantage", PlatoonHint("L"))
	assert.Equal(t, "Left-handed batters get advantage", PlatoonHint("R"))
}
