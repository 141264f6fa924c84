package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Display color tokens. Pure lookup, no state; unknown keys fall back to a
// single default token.

const DefaultColor = "#95A5A6"

var categoryColors = map[Category]string{
	CatFood:          "#E74C3C",
	CatTransport:     "#3498DB",
	CatHousing:       "#9B59B6",
	CatUtilities:     "#F39C12",
	CatHealthcare:    "#1ABC9C",
	CatEntertainment: "#E67E22",
	CatShopping:      "#FF6B9D",
	CatEducation:     "#2ECC71",
	CatTravel:        "#00BCD4",
	CatInsurance:     "#34495E",
	CatPersonalCare:  "#F1C40F",
	CatDebtPayment:   "#C0392B",
	CatSavings:       "#27AE60",
	CatOther:         "#7F8C8D",
}

var savingsTypeColors = map[SavingsType]string{
	TypeDaily:         "#3498DB",
	TypeWeekly:        "#2ECC71",
	TypeMonthly:       "#9B59B6",
	TypeYearly:        "#F39C12",
	TypeGoal:          "#E74C3C",
	TypeEmergencyFund: "#E67E22",
	TypeInvestment:    "#1ABC9C",
}

// CategoryColor returns the display color for an expense category.
func CategoryColor(c Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return DefaultColor
}

// SavingsTypeColor returns the display color for a savings type.
func SavingsTypeColor(t SavingsType) string {
	if color, ok := savingsTypeColors[t]; ok {
		return color
	}
	return DefaultColor
}

// GroupColor resolves a color for a raw group key coming out of the
// aggregation layer, trying categories first, then savings types.
func GroupColor(key string) string {
	if color, ok := categoryColors[Category(key)]; ok {
		return color
	}
	if color, ok := savingsTypeColors[SavingsType(key)]; ok {
		return color
	}
	return DefaultColor
}

// FormatAmount renders an amount with its currency code and thousands
// separators, e.g. "UGX 1,250,000.50".
func FormatAmount(amount float64, currency Currency) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := fmt.Sprintf("%s %s.%s", currency, b.String(), parts[1])
	if neg {
		return "-" + out
	}
	return out
}
