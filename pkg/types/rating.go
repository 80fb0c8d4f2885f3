package domain

import "fmt"

// Rating is the AI assessment of how well a listing matches an item.
type Rating struct {
	Score      int    `json:"score"`
	Conclusion string `json:"conclusion"`
	Comment    string `json:"comment"`
}

// Rating scores range from MinScore to MaxScore.
const (
	MinScore = 1
	MaxScore = 5
)

var conclusions = map[int]string{
	1: "No match",
	2: "Potential match",
	3: "Poor match",
	4: "Good match",
	5: "Great deal",
}

// NewRating builds a Rating with the conclusion derived from the score.
// Scores outside 1..5 are clamped.
func NewRating(score int, comment string) Rating {
	score = max(MinScore, min(MaxScore, score))
	return Rating{
		Score:      score,
		Conclusion: conclusions[score],
		Comment:    comment,
	}
}

// IsZero reports whether the rating was never evaluated.
func (r Rating) IsZero() bool {
	return r.Score == 0
}

// Label renders the rating as "Conclusion (score)".
func (r Rating) Label() string {
	return fmt.Sprintf("%s (%d)", r.Conclusion, r.Score)
}
