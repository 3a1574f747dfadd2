package normalizer

import (
	"errors"
	"fmt"
	"math"

	"ralsponsors/internal/models"
)

// Validation errors.
var (
	ErrMissingID       = errors.New("contribution missing sponsor id")
	ErrNegativeAmount  = errors.New("contribution amount is negative")
	ErrNonFiniteAmount = errors.New("contribution amount is not finite")
	ErrNoSponsors      = errors.New("no sponsors parsed")
)

// Validator checks contributions before they are folded.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a single contribution.
func (v *Validator) Validate(c models.RawContribution) error {
	if c.ID == "" {
		return ErrMissingID
	}

	if math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) {
		return fmt.Errorf("%w: %s", ErrNonFiniteAmount, c.ID)
	}

	if c.Amount < 0 {
		return fmt.Errorf("%w: %s %.2f", ErrNegativeAmount, c.ID, c.Amount)
	}

	return nil
}
