package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxTitleLength is the longest title a deal may carry, in characters
const MaxTitleLength = 90

// Deal is one promotional offer extracted from a phrase on a deals page
type Deal struct {
	Restaurant    string    `json:"restaurant" validate:"required"`
	Market        string    `json:"market" validate:"required"`
	Title         string    `json:"title" validate:"required,max=90"`
	StartingPrice *float64  `json:"starting_price" validate:"omitempty,gte=0"`
	AllPrices     []string  `json:"all_prices" validate:"dive,price"`
	SourceURL     string    `json:"source_url" validate:"required"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScoredDeal is a stored deal with the read-time derived fields attached.
// None of ID, EstimatedSavings or ValueScore is persisted.
type ScoredDeal struct {
	Deal
	ID               string   `json:"id"`
	EstimatedSavings *float64 `json:"estimated_savings"`
	ValueScore       float64  `json:"value_score"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return IsPriceToken(fl.Field().String())
	})
	return v
}

// Validate checks the structural invariants of a deal before it is stored
func (d Deal) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
