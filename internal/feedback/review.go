package feedback

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/kudos/internal/errors"
)

// DefaultMinReviewChars is the minimum trimmed review length accepted at submission.
const DefaultMinReviewChars = 10

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// ValidateReview checks that the review, ignoring surrounding whitespace,
// has at least minChars characters. A non-positive minChars uses the default.
func ValidateReview(review string, minChars int) error {
	if minChars <= 0 {
		minChars = DefaultMinReviewChars
	}
	n := CountChars(strings.TrimSpace(review))
	if n < minChars {
		return errors.NewReviewTooShort(minChars, n)
	}
	return nil
}

// Star rating bounds. The core stores whatever rating it is handed; input
// surfaces call CheckRating before submitting.
const (
	MinRating = 1
	MaxRating = 5
)

// CheckRating rejects a rating outside MinRating..MaxRating.
func CheckRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return errors.NewInvalidRequest(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	return nil
}
