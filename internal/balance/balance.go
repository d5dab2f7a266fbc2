// Package balance computes a user's hour balance: worked time minus
// required time plus manual adjustments, all in seconds. Every
// timestamp that reaches this package is UTC; the required-time weekday
// bucketing uses the UTC calendar date of each clock-in.
package balance

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hac-portal/internal/domain"
)

// ExemptDisplay is rendered for users with a zero daily-hours quota.
const ExemptDisplay = "N/A"

// ErrInvalidFormat reports a balance string that is not [+|-]HH:MM.
var ErrInvalidFormat = errors.New("invalid balance format, use +HH:MM or -HH:MM")

var balancePattern = regexp.MustCompile(`^([+-])?\s*(\d+):(\d+)$`)

// Summary is the result of one balance computation.
type Summary struct {
	Seconds int64
	Display string
	Exempt  bool
}

// Compute derives the signed balance for one user from their completed
// time entries and adjustment ledger. Open entries are ignored. A zero
// quota yields the exempt sentinel with a zero balance.
func Compute(quotaHours float64, entries []domain.TimeEntry, adjustments []domain.BalanceAdjustment) Summary {
	if quotaHours == 0 {
		return Summary{Display: ExemptDisplay, Exempt: true}
	}

	var worked float64
	days := make(map[string]struct{})
	for i := range entries {
		e := &entries[i]
		if e.ClockOut == nil {
			continue
		}
		worked += e.ClockOut.Sub(e.ClockIn).Seconds()

		in := e.ClockIn.UTC()
		if wd := in.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days[in.Format("2006-01-02")] = struct{}{}
		}
	}

	required := float64(len(days)) * quotaHours * 3600

	var adjusted int64
	for _, a := range adjustments {
		adjusted += a.Seconds
	}

	seconds := int64(worked-required) + adjusted
	return Summary{Seconds: seconds, Display: FormatSeconds(seconds)}
}

// AdjustmentFor returns the ledger delta that moves the current balance
// to the desired total. Appending this delta and recomputing yields
// exactly desiredTotal.
func AdjustmentFor(desiredTotal, current int64) int64 {
	return desiredTotal - current
}

// FormatSeconds renders seconds as "HHh MMm", minutes truncated, with a
// leading '-' only when negative. Non-negative balances carry no sign.
func FormatSeconds(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%s%02dh %02dm", sign, hours, minutes)
}

// Parse converts a "[+|-]HH:MM" string into signed seconds. The sign
// applies to the whole quantity and zero-padding is not required.
func Parse(s string) (int64, error) {
	m := balancePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, ErrInvalidFormat
	}
	hours, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	minutes, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	total := hours*3600 + minutes*60
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}
