// Package menu holds the fixed kiosk catalog and the currency formatting
// used everywhere a price is displayed.
package menu

import (
	"fmt"
	"strconv"

	"roboburger/internal/models"
)

// Burgers is the fixed 3-item catalog served by the kiosk.
var Burgers = []models.Burger{
	{ID: 1, Name: "클래식 치즈버거", Price: 8500, Emoji: "🍔"},
	{ID: 2, Name: "베이컨 디럭스", Price: 10500, Emoji: "🥓"},
	{ID: 3, Name: "스파이시 치킨버거", Price: 9000, Emoji: "🌶️"},
}

// ByID looks a burger up by its catalog id.
func ByID(id int) (models.Burger, error) {
	for _, b := range Burgers {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Burger{}, fmt.Errorf("unknown burger id %d", id)
}

// FormatWon renders an amount with thousands separators, e.g. 8500 → "8,500".
func FormatWon(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}

// Won renders an amount with the currency symbol, e.g. "₩8,500".
func Won(amount int64) string {
	return "₩" + FormatWon(amount)
}
