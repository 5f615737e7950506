package kpi

import "ads-insights-go/internal/types"

// Vector is an aggregate KPI set over a collection of AdRecords. The five
// base fields are sums; the rest are derived from the sums with
// zero-guarded division, so an empty collection yields the zero Vector and
// no field is ever NaN.
type Vector struct {
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Purchases   float64 `json:"purchases"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	ROAS        float64 `json:"roas"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	CPA         float64 `json:"cpa"`
	CR          float64 `json:"cr"`
}

// Aggregate sums the base metrics over records and derives the rate KPIs.
func Aggregate(records []types.AdRecord) Vector {
	var v Vector
	for _, r := range records {
		v.Spend += r.Spend
		v.Revenue += r.Revenue
		v.Purchases += r.Purchases
		v.Clicks += r.Clicks
		v.Impressions += r.Impressions
	}
	v.ROAS = safeDiv(v.Revenue, v.Spend)
	v.CTR = safeDiv(v.Clicks, v.Impressions)
	v.CPC = safeDiv(v.Spend, v.Clicks)
	v.CPA = safeDiv(v.Spend, v.Purchases)
	v.CR = safeDiv(v.Purchases, v.Clicks)
	return v
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
