package service

import (
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

// RetentionEvaluator decides, per investor, whether that investor's dividends
// in a new round are issued, retained or pending signup, and computes the
// withholding bookkeeping for each row.
type RetentionEvaluator struct {
	calculator          WithholdingCalculator
	sanctionedCountries map[string]bool
}

// NewRetentionEvaluator creates an evaluator with the given withholding
// calculator and sanctioned-country set.
func NewRetentionEvaluator(calculator WithholdingCalculator, sanctionedCountries map[string]bool) *RetentionEvaluator {
	return &RetentionEvaluator{
		calculator:          calculator,
		sanctionedCountries: sanctionedCountries,
	}
}

// Evaluate mutates the investor's dividend rows in place and returns the
// notification kind owed to the investor (always exactly one notice per
// investor, regardless of row count).
//
// The branches are mutually exclusive and checked in fixed order: onboarding,
// then sanction, then threshold, then the normal withholding path. First
// match wins.
func (e *RetentionEvaluator) Evaluate(investor model.Investor, rows []*model.Dividend, taxYear int) (model.NotificationKind, error) {
	if !investor.Onboarded() {
		// Pending-signup investors still get the issuance notice even though
		// no money moves yet; withholding fields stay unset.
		for _, d := range rows {
			d.Status = model.DividendPendingSignup
			d.RetainedReason = nil
			d.WithholdingPercentage = nil
			d.WithheldAmount = nil
			d.NetAmount = nil
		}
		return model.NotifyIssued, nil
	}

	if e.sanctionedCountries[investor.Country] {
		retainAll(rows, model.RetainedSanctionedCountry)
		return model.NotifySanctionedCountry, nil
	}

	var aggregate int64
	for _, d := range rows {
		aggregate += d.TotalAmount
	}
	if aggregate < investor.MinimumPaymentAmount {
		retainAll(rows, model.RetainedBelowThreshold)
		return model.NotifyBelowThreshold, nil
	}

	values := make([]model.Dividend, len(rows))
	for i, d := range rows {
		values[i] = *d
	}
	percentage, err := e.calculator.Rate(investor, taxYear, values)
	if err != nil {
		return "", err
	}

	for _, d := range rows {
		// The percentage is per investor but the cent rounding is per row, so
		// an investor with several rows can end a cent off a single aggregate
		// computation. Intentional.
		withheld := withheldCents(percentage, d.TotalAmount)
		net := d.TotalAmount - withheld

		d.Status = model.DividendIssued
		d.RetainedReason = nil
		d.WithholdingPercentage = &percentage
		d.WithheldAmount = &withheld
		d.NetAmount = &net
	}

	return model.NotifyIssued, nil
}

// retainAll marks every row retained with the given reason. Withholding is
// recorded as zero with net equal to the full gross so reporting still sees
// the amounts, even though nothing pays out.
func retainAll(rows []*model.Dividend, reason model.RetainedReason) {
	for _, d := range rows {
		zero := int64(0)
		zeroPct := float64(0)
		net := d.TotalAmount

		d.Status = model.DividendRetained
		d.RetainedReason = &reason
		d.WithholdingPercentage = &zeroPct
		d.WithheldAmount = &zero
		d.NetAmount = &net
	}
}
