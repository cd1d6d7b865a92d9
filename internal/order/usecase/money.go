package usecase

import (
	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(14,2).
const moneyScale = 2

var maxMoney = decimal.New(1, 12)

// checkMoney rejects amounts the store would round or overflow.
func checkMoney(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(moneyScale)) {
		return apperror.Invalid("%s: at most %d decimal places allowed", field, moneyScale)
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return apperror.Invalid("%s: amount too large", field)
	}
	return nil
}
