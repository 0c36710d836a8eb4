package school

import "github.com/darasa/backend/core"

// gradeBand maps a minimum percentage to its letter and GPA points.
type gradeBand struct {
	min    float64
	letter string
	points float64
}

// gradeScale is the fixed score-to-letter-to-points lookup, highest band
// first: 90 and above earns 4.0 points, 80 earns 3.0, 70 earns 2.0, 60
// earns 1.0.
var gradeScale = []gradeBand{
	{90, "A", 4.0},
	{80, "B", 3.0},
	{70, "C", 2.0},
	{60, "D", 1.0},
}

// LetterGrade resolves a percentage to its letter and GPA points.
func LetterGrade(percentage float64) (string, float64) {
	for _, band := range gradeScale {
		if percentage >= band.min {
			return band.letter, band.points
		}
	}
	return "F", 0.0
}

// Derive fills a Grade's derived fields from its raw score. Percentages are
// rounded to 2 decimal places.
func (g *Grade) Derive() {
	if g.MaxScore > 0 {
		g.Percentage = core.Round2(g.Score / g.MaxScore * 100)
	}
	g.Letter, g.Points = LetterGrade(g.Percentage)
}
