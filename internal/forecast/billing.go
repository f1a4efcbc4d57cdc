// Package forecast projects future cash obligations onto a calendar
// and aggregates them into weekly exposure buckets. Everything here is
// a pure function of an input snapshot and an injected reference date;
// nothing reads the system clock or mutates its inputs.
package forecast

import (
	"futureflow/internal/core"
)

// ResolveStatementDate computes the date a card-routed purchase becomes
// a cash outflow. A purchase after the closing day bills one cycle
// later; a payment day numerically below the closing day means the
// statement period spans a month boundary and lands a further month
// out. The day-of-month is clamped to the target month's length rather
// than left to date overflow.
func ResolveStatementDate(purchase core.Date, card core.CardConfig) core.Date {
	months := 0
	if purchase.Day() > card.ClosingDay {
		months++
	}
	if card.PaymentDay < card.ClosingDay {
		months++
	}
	year, month, _ := purchase.Date()
	return core.ClampedDate(year, int(month)+months, card.PaymentDay)
}
