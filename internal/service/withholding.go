package service

import (
	"math"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

// WithholdingCalculator produces the tax withholding percentage for one
// investor in one tax year. The percentage is per investor; cent rounding of
// the withheld amount happens per dividend row in the retention evaluator.
type WithholdingCalculator interface {
	Rate(investor model.Investor, taxYear int, rows []model.Dividend) (float64, error)
}

// BackupWithholdingCalculator applies a flat backup-withholding rate to
// investors without a valid tax certification and zero to everyone else.
type BackupWithholdingCalculator struct {
	rate float64
}

// NewBackupWithholdingCalculator creates a calculator with the configured
// backup rate (percentage, e.g. 24 for 24%).
func NewBackupWithholdingCalculator(rate float64) *BackupWithholdingCalculator {
	return &BackupWithholdingCalculator{rate: rate}
}

// Rate returns the flat backup rate for uncertified investors.
func (c *BackupWithholdingCalculator) Rate(investor model.Investor, _ int, _ []model.Dividend) (float64, error) {
	if investor.TaxCertified {
		return 0, nil
	}
	return c.rate, nil
}

// withheldCents computes the withheld amount for one row: round(p·t/100),
// rounding half up. Net is total minus withheld, so the pair always sums back
// to the row total.
func withheldCents(percentage float64, totalCents int64) int64 {
	return int64(math.Round(percentage * float64(totalCents) / 100))
}
