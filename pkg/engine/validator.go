package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erain9/venue/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

// ValidationError reports a single violated field. Validation happens
// before any book mutation, so a rejected request leaves no state
// behind.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every violated field of one request
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator checks an order request before the engine touches the
// book. Field-level rules are pluggable so venue policy (symbol
// format, minimum sizes) lives outside the matching core.
type Validator interface {
	Validate(symbol string, side core.Side, quantity, price fpdecimal.Decimal) ValidationErrors
}

// LimitRules is the default validator: positive quantity and price,
// uppercase alphanumeric symbols, optional venue minimums.
type LimitRules struct {
	MinQuantity fpdecimal.Decimal
	MinPrice    fpdecimal.Decimal
}

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,11}$`)

// NewLimitRules returns rules with no venue minimums configured
func NewLimitRules() *LimitRules {
	return &LimitRules{}
}

// Validate implements Validator
func (r *LimitRules) Validate(symbol string, side core.Side, quantity, price fpdecimal.Decimal) ValidationErrors {
	var errs ValidationErrors

	if !symbolPattern.MatchString(symbol) {
		errs = append(errs, ValidationError{Field: "symbol", Message: fmt.Sprintf("%q is not a valid symbol", symbol)})
	}
	if side != core.Buy && side != core.Sell {
		errs = append(errs, ValidationError{Field: "side", Message: "must be BUY or SELL"})
	}
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		errs = append(errs, ValidationError{Field: "quantity", Message: "must be greater than zero"})
	} else if quantity.LessThan(r.MinQuantity) {
		errs = append(errs, ValidationError{Field: "quantity", Message: fmt.Sprintf("below venue minimum %s", r.MinQuantity)})
	}
	if price.LessThanOrEqual(fpdecimal.Zero) {
		errs = append(errs, ValidationError{Field: "price", Message: "must be greater than zero"})
	} else if price.LessThan(r.MinPrice) {
		errs = append(errs, ValidationError{Field: "price", Message: fmt.Sprintf("below venue minimum %s", r.MinPrice)})
	}

	return errs
}

// Ensure LimitRules implements Validator
var _ Validator = (*LimitRules)(nil)
