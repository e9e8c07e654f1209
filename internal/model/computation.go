package model

import (
	"math"
	"time"
)

// Computation is the output of the upstream allocation engine: the total to
// distribute plus one allocation row per investor or pass-through entity.
// Amounts arrive as USD dollars; conversion to cents happens exactly once,
// in CentsFromUSD, when rows are imported into a round.
type Computation struct {
	TotalUSD        float64
	IssuedAt        time.Time
	ReturnOfCapital bool
	Rows            []AllocationRow
}

// AllocationRow is one computed share of a distribution. Either InvestorID or
// EntityName is set, never both: entity rows are expanded into one dividend
// per underlying holding at import time.
type AllocationRow struct {
	InvestorID   string
	EntityName   string
	Shares       float64
	GrossUSD     float64
	QualifiedUSD float64
}

// CentsFromUSD converts a dollar amount to integer cents, rounding half up.
// This is the single dollars-to-cents boundary; everything downstream is
// int64 cents.
func CentsFromUSD(usd float64) int64 {
	return int64(math.Round(usd * 100))
}
