package core

import (
	"math"
	"time"
)

// Derived metrics over aggregation output and individual records. Every
// division-by-zero-shaped case resolves to a defined fallback value, never to
// an error or NaN.

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PercentOfTotal returns the share of total represented by part, rounded to
// two decimals. A non-positive total yields 0.
func PercentOfTotal(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(part / total * 100)
}

// NetWorth is total savings minus total expenses. May be negative.
func NetWorth(totalSavings, totalExpenses float64) float64 {
	return totalSavings - totalExpenses
}

// SavingsRate expresses savings as a percentage of expenses, rounded to two
// decimals. Zero expenses yield 0.
func SavingsRate(totalSavings, totalExpenses float64) float64 {
	if totalExpenses <= 0 {
		return 0
	}
	return Round2(totalSavings / totalExpenses * 100)
}

// GoalProgress returns the percentage of targetAmount reached, clamped to 100
// even when amount exceeds the target. A non-positive target yields 0.
func GoalProgress(amount, targetAmount float64) float64 {
	if targetAmount <= 0 {
		return 0
	}
	return math.Min(amount/targetAmount*100, 100)
}

// RemainingAmount is how much is still needed to reach the target. Negative
// when the goal is overfunded; the caller decides how to display that.
func RemainingAmount(amount, targetAmount float64) float64 {
	return targetAmount - amount
}

// IsOnTrack compares the achieved fraction of the target against the elapsed
// fraction of the goal window. No deadline means always on track. A
// zero-length window (target date at or before the period start) is also
// treated as on track: there is no meaningful pace to be behind.
func IsOnTrack(amount, targetAmount float64, periodStart time.Time, targetDate *time.Time, now time.Time) bool {
	if targetDate == nil {
		return true
	}
	window := targetDate.Sub(periodStart)
	if window <= 0 {
		return true
	}
	elapsed := now.Sub(periodStart)
	if elapsed < 0 {
		elapsed = 0
	}
	elapsedFraction := float64(elapsed) / float64(window)
	if targetAmount <= 0 {
		return true
	}
	achievedFraction := amount / targetAmount
	return achievedFraction >= elapsedFraction
}

// AverageMonthly divides the yearly sum by 12 unconditionally; months with no
// records count as zero toward the average.
func AverageMonthly(monthlyTotals []float64) float64 {
	var sum float64
	for _, v := range monthlyTotals {
		sum += v
	}
	return Round2(sum / 12)
}
