package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erain9/venue/pkg/core"
)

func TestLimitRulesValid(t *testing.T) {
	rules := NewLimitRules()
	errs := rules.Validate("BTCUSD", core.Buy, core.MustParseDecimal("1.0"), core.MustParseDecimal("100.0"))
	assert.Empty(t, errs)
}

func TestLimitRulesSymbolFormat(t *testing.T) {
	rules := NewLimitRules()

	for _, symbol := range []string{"", "btcusd", "BTC-USD", "1BTC", "TOOLONGSYMBOLX"} {
		errs := rules.Validate(symbol, core.Buy, core.MustParseDecimal("1.0"), core.MustParseDecimal("100.0"))
		assert.NotEmpty(t, errs, symbol)
		assert.Equal(t, "symbol", errs[0].Field, symbol)
	}
}

func TestLimitRulesCollectsAllViolations(t *testing.T) {
	rules := NewLimitRules()

	errs := rules.Validate("bad", core.Buy, core.MustParseDecimal("0"), core.MustParseDecimal("-1.0"))
	assert.Len(t, errs, 3)
	assert.Contains(t, errs.Error(), "symbol")
	assert.Contains(t, errs.Error(), "quantity")
	assert.Contains(t, errs.Error(), "price")
}

func TestLimitRulesVenueMinimums(t *testing.T) {
	rules := &LimitRules{
		MinQuantity: core.MustParseDecimal("0.01"),
		MinPrice:    core.MustParseDecimal("1.0"),
	}

	errs := rules.Validate("BTCUSD", core.Sell, core.MustParseDecimal("0.001"), core.MustParseDecimal("0.5"))
	assert.Len(t, errs, 2)

	errs = rules.Validate("BTCUSD", core.Sell, core.MustParseDecimal("0.01"), core.MustParseDecimal("1.0"))
	assert.Empty(t, errs)
}
