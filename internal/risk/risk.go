// Package risk classifies assets by their tokenomics: how much of the
// possible supply floats, how far the market cap sits below the fully
// diluted valuation, and how trading volume relates to both. Pure
// functions only; every numeric input, including zeros, yields a defined
// record.
package risk

import (
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// Per-metric classes. Unknown marks a metric whose numerator or
// denominator was zero or missing; Unknown metrics contribute to neither
// the high-risk nor low-risk counts.
const (
	ClassUnknown = "Unknown"

	FloatHigh   = "High"
	FloatMedium = "Medium"
	FloatLow    = "Low"

	OverhangLow      = "LowOverhang"
	OverhangModerate = "Moderate"
	OverhangHigh     = "HighOverhang"

	VolMCVeryHigh = "VeryHigh"
	VolMCHealthy  = "Healthy"
	VolMCModerate = "Moderate"
	VolMCLow      = "Low"

	VolFDVVeryStrong = "VeryStrong"
	VolFDVHealthy    = "Healthy"
	VolFDVLow        = "Low"
	VolFDVVeryLow    = "VeryLow"
)

// Composite verdict levels.
const (
	VerdictHigh     = "High"
	VerdictModerate = "Moderate"
	VerdictLow      = "Low"
)

// Factor phrases surfaced to the user alongside the composite verdict.
const (
	FactorLowFloat     = "low float (<20%)"
	FactorOverhang     = "high token overhang"
	FactorLowLiquidity = "low liquidity"
	FactorDisconnect   = "disconnect between trading & future value"
	FactorBalanced     = "well-balanced tokenomics"
	FactorMixed        = "mixed tokenomics indicators"
)

// Metric is one classified ratio: the class it landed in and the raw
// percentage that put it there. Pct is zero when the class is Unknown.
type Metric struct {
	Class string  `json:"class"`
	Pct   float64 `json:"pct"`
}

// Composite is the overall verdict with the factors that drove it.
type Composite struct {
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
}

// Record is the full classification for one asset.
type Record struct {
	Identifier  string    `json:"identifier"`
	Float       Metric    `json:"float"`
	MCToFDV     Metric    `json:"mc_to_fdv"`
	VolumeToMC  Metric    `json:"volume_to_mc"`
	VolumeToFDV Metric    `json:"volume_to_fdv"`
	Composite   Composite `json:"composite"`
}

// ratio computes num/den*100, reporting false when either side is zero or
// missing. Absence and zero both disqualify the metric.
func ratio(num, den *float64) (float64, bool) {
	if num == nil || den == nil || *num == 0 || *den == 0 {
		return 0, false
	}
	return *num / *den * 100, true
}

// bucket returns the class of the first threshold pct satisfies. The
// thresholds slice pairs descending cutoffs with their classes; the last
// class is the catch-all.
type threshold struct {
	min   float64
	class string
}

func bucket(pct float64, thresholds []threshold, fallback string) string {
	for _, t := range thresholds {
		if pct >= t.min {
			return t.class
		}
	}
	return fallback
}

func classify(num, den *float64, thresholds []threshold, fallback string) Metric {
	pct, ok := ratio(num, den)
	if !ok {
		return Metric{Class: ClassUnknown}
	}
	return Metric{Class: bucket(pct, thresholds, fallback), Pct: pct}
}

// Classify derives the four ratio metrics and the composite verdict from
// an asset's supply and volume figures.
func Classify(asset model.DetailedAsset) Record {
	rec := Record{
		Identifier: asset.Identifier,
		Float: classify(asset.CirculatingSupply, asset.MaxSupply, []threshold{
			{50, FloatHigh},
			{20, FloatMedium},
		}, FloatLow),
		MCToFDV: classify(asset.MarketCap, asset.FullyDilutedValuation, []threshold{
			{75, OverhangLow},
			{30, OverhangModerate},
		}, OverhangHigh),
		VolumeToMC: classify(asset.Volume24h, asset.MarketCap, []threshold{
			{50, VolMCVeryHigh},
			{20, VolMCHealthy},
			{10, VolMCModerate},
		}, VolMCLow),
		VolumeToFDV: classify(asset.Volume24h, asset.FullyDilutedValuation, []threshold{
			{30, VolFDVVeryStrong},
			{10, VolFDVHealthy},
			{5, VolFDVLow},
		}, VolFDVVeryLow),
	}

	rec.Composite = composite(rec)
	return rec
}

// composite counts the high-risk and low-risk contributions and maps them
// onto the verdict. Unknown metrics count for neither side.
func composite(rec Record) Composite {
	factors := []string{}
	if rec.Float.Class == FloatLow {
		factors = append(factors, FactorLowFloat)
	}
	if rec.MCToFDV.Class == OverhangHigh {
		factors = append(factors, FactorOverhang)
	}
	if rec.VolumeToMC.Class == VolMCLow {
		factors = append(factors, FactorLowLiquidity)
	}
	if rec.VolumeToFDV.Class == VolFDVVeryLow {
		factors = append(factors, FactorDisconnect)
	}

	lowRisk := 0
	if rec.Float.Class == FloatHigh {
		lowRisk++
	}
	if rec.MCToFDV.Class == OverhangLow {
		lowRisk++
	}
	if rec.VolumeToMC.Class == VolMCHealthy || rec.VolumeToMC.Class == VolMCVeryHigh {
		lowRisk++
	}
	if rec.VolumeToFDV.Class == VolFDVHealthy || rec.VolumeToFDV.Class == VolFDVVeryStrong {
		lowRisk++
	}

	switch {
	case len(factors) >= 2:
		return Composite{Level: VerdictHigh, Factors: factors}
	case lowRisk >= 3:
		return Composite{Level: VerdictLow, Factors: []string{FactorBalanced}}
	case len(factors) == 0:
		return Composite{Level: VerdictModerate, Factors: []string{FactorMixed}}
	default:
		return Composite{Level: VerdictModerate, Factors: factors}
	}
}

// RankRating is the coarse per-asset badge derived from market-cap rank.
type RankRating string

const (
	RatingPremium  RankRating = "Premium"
	RatingSafe     RankRating = "Safe"
	RatingModerate RankRating = "Moderate"
	RatingCaution  RankRating = "Caution"
	RatingHighRisk RankRating = "HighRisk"
)

// RateByRank maps a market-cap rank onto a rating. A missing rank (zero
// or negative) rates as HighRisk.
func RateByRank(rank int) RankRating {
	switch {
	case rank <= 0:
		return RatingHighRisk
	case rank <= 10:
		return RatingPremium
	case rank <= 20:
		return RatingSafe
	case rank <= 50:
		return RatingModerate
	case rank <= 100:
		return RatingCaution
	default:
		return RatingHighRisk
	}
}
