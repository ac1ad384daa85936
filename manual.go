package liquidity

import (
	"strings"

	"github.com/etnz/liquidity/date"
)

// NewManualMovement creates a movement entered by hand. The settlement date
// is resolved from the catalog. When the fund is not found the movement
// settles on its request date and is flagged Unmatched.
func NewManualMovement(catalog Catalog, name, code string, op Operation, value Money, request date.Date) Movement {
	m := Movement{
		FundName:    strings.TrimSpace(name),
		FundCode:    strings.TrimSpace(code),
		Operation:   op,
		Value:       value.Abs(),
		RequestDate: request,
		Source:      SourceManual,
	}
	params, ok := MatchLiquidationParams(catalog, m.FundCode, m.FundName)
	if !ok {
		m.SettleDate = request
		m.Unmatched = true
		return m
	}
	switch op {
	case AssetRedemption, Subscription:
		m.SettleDate = params.Settlement(op, request)
		m.Description = params.LagText(op)
	default:
		m.SettleDate = request
	}
	return m
}
