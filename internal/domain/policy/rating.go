package policy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

// AverageRating is the mean star rating of the reviews, or 0 when there are none.
func AverageRating(reviews []*entities.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// ParseRating validates a raw star rating as entered by a user.
func ParseRating(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.NewValidationError("Please provide a rating (1-5 stars).")
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s is not a valid rating.", raw))
	}
	// range first: int() of a value beyond the int range is undefined
	if value < entities.MinRating || value > entities.MaxRating {
		return 0, ratingRangeError()
	}
	if value != math.Trunc(value) {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s is not an integer value.", raw))
	}

	return int(value), nil
}

// ValidateRating checks that rating lies within the star range.
func ValidateRating(rating int) error {
	if rating < entities.MinRating || rating > entities.MaxRating {
		return ratingRangeError()
	}
	return nil
}

func ratingRangeError() error {
	return apperrors.NewValidationError(
		fmt.Sprintf("rating must be between %d and %d", entities.MinRating, entities.MaxRating),
	)
}
