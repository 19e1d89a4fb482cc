package booking

// Breakdown is the live price summary for a candidate booking.
type Breakdown struct {
	Hours    float64 `json:"hours"`
	BaseCost float64 `json:"base_cost"`
	Discount float64 `json:"discount"`
	Deposit  float64 `json:"deposit"`
	Total    float64 `json:"total"`
}

// Quote computes the price breakdown for a time window. It is deliberately
// lenient: unparsable or non-positive durations price as zero hours so the
// summary can render mid-typing without ever failing. The deposit is charged
// regardless of duration.
func Quote(timeFrom, timeTo string, policy Policy) Breakdown {
	hours := durationHours(timeFrom, timeTo)

	baseCost := hours * policy.HourlyRate

	var discount float64
	if hours >= policy.DiscountThresholdHours {
		discount = policy.DiscountAmount
	}

	return Breakdown{
		Hours:    hours,
		BaseCost: baseCost,
		Discount: discount,
		Deposit:  policy.DepositAmount,
		Total:    baseCost + policy.DepositAmount - discount,
	}
}

// durationHours returns the fractional hours between two HH:MM strings,
// or 0 when either fails to parse or the window is empty or inverted.
func durationHours(timeFrom, timeTo string) float64 {
	from, fromOK := parseClock(timeFrom)
	to, toOK := parseClock(timeTo)
	if !fromOK || !toOK || to <= from {
		return 0
	}
	return float64(to-from) / 60.0
}
