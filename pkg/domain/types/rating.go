package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Rating is the five step risk rating. The zero value is not a valid rating.
type Rating string

const (
	RatingVeryLow  Rating = "Very Low"
	RatingLow      Rating = "Low"
	RatingMedium   Rating = "Medium"
	RatingHigh     Rating = "High"
	RatingVeryHigh Rating = "Very High"
)

// ratingScale is indexed by bucket (0..4).
var ratingScale = [...]Rating{
	RatingVeryLow,
	RatingLow,
	RatingMedium,
	RatingHigh,
	RatingVeryHigh,
}

// AllRatings returns all ratings in ascending order
func AllRatings() []Rating {
	out := make([]Rating, len(ratingScale))
	copy(out, ratingScale[:])
	return out
}

// IsValid checks if the rating is one of the five known ratings
func (r Rating) IsValid() bool {
	return r.Level() >= 0
}

// Level returns the position of the rating on the scale (0 = Very Low), or
// -1 for an unknown rating.
func (r Rating) Level() int {
	for i, v := range ratingScale {
		if v == r {
			return i
		}
	}
	return -1
}

// String returns the string representation of the rating
func (r Rating) String() string {
	return string(r)
}

// ParseRating parses a rating label
func ParseRating(s string) (Rating, error) {
	r := Rating(s)
	if !r.IsValid() {
		return "", goerr.New("invalid rating", goerr.V("rating", s))
	}
	return r, nil
}

// ScoreBucket quantizes a 0-100 value into one of five buckets. Thresholds
// are inclusive on the upper side: 20 is bucket 0, 20.01 is bucket 1.
func ScoreBucket(x float64) int {
	switch {
	case x <= 20:
		return 0
	case x <= 40:
		return 1
	case x <= 60:
		return 2
	case x <= 80:
		return 3
	default:
		return 4
	}
}

// RatingFromBucket maps a bucket index to its rating. Out of range indexes
// are clamped to the nearest end of the scale.
func RatingFromBucket(bucket int) Rating {
	if bucket < 0 {
		bucket = 0
	}
	if bucket >= len(ratingScale) {
		bucket = len(ratingScale) - 1
	}
	return ratingScale[bucket]
}

// RatingFromScore rates a continuous 0-100 score through ScoreBucket.
func RatingFromScore(score float64) Rating {
	return RatingFromBucket(ScoreBucket(score))
}

// RatingFromMatrixValue rates a 0-24 matrix value using fixed bands of five.
func RatingFromMatrixValue(value int) Rating {
	switch {
	case value <= 4:
		return RatingVeryLow
	case value <= 9:
		return RatingLow
	case value <= 14:
		return RatingMedium
	case value <= 19:
		return RatingHigh
	default:
		return RatingVeryHigh
	}
}
