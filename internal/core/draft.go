package core

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TransactionDraft is the content of the create form before submission.
type TransactionDraft struct {
	Title     string `validate:"required,notblank"`
	Amount    string `validate:"required,amount"`
	Category  string `validate:"required,category"`
	IsExpense bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := ParseAmount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		for _, c := range Categories {
			if c.ID == id {
				return true
			}
		}
		return false
	})
	return v
}

// Validate checks the draft in form order and returns the first problem as
// ErrEmptyTitle, ErrInvalidAmount or ErrMissingCategory.
func (d TransactionDraft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "Title":
		return ErrEmptyTitle
	case "Amount":
		return ErrInvalidAmount
	default:
		return ErrMissingCategory
	}
}

// SignedAmount returns the amount to submit: negative for expenses,
// positive for income. The draft must be valid.
func (d TransactionDraft) SignedAmount() (decimal.Decimal, error) {
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsExpense {
		return amount.Abs().Neg(), nil
	}
	return amount.Abs(), nil
}

// AlertMessage returns the text shown to the user for a draft validation
// error, or an empty string when err is not one.
func AlertMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return "Title is required"
	case errors.Is(err, ErrInvalidAmount):
		return "Enter a valid amount"
	case errors.Is(err, ErrMissingCategory):
		return "Select a category"
	default:
		return ""
	}
}
