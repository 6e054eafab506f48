package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ymdLayout is the canonical date form used everywhere downstream of the
// raw export: output columns, age computation, date-of-birth storage.
const ymdLayout = "2006/01/02"

// yearPivot is the fixed two-digit-year window: values >= 45 belong to the
// 1900s, values below to the 2000s. The OnCourt export predates four-digit
// years and no player or tournament in it sits outside 1945-2044.
const yearPivot = 45

// ToYMD converts an OnCourt date string ("MM/DD/YY HH:MM:SS", time part
// optional) to canonical "YYYY/MM/DD" form.
func ToYMD(s string) (string, error) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("match: bad date %q", s)
	}
	yy, err := strconv.Atoi(parts[2])
	if err != nil || yy < 0 || yy > 99 {
		return "", fmt.Errorf("match: bad year in date %q", s)
	}
	year := 2000 + yy
	if yy >= yearPivot {
		year = 1900 + yy
	}
	out := fmt.Sprintf("%d/%s/%s", year, parts[0], parts[1])
	if _, err := time.Parse(ymdLayout, out); err != nil {
		return "", fmt.Errorf("match: bad date %q: %w", s, err)
	}
	return out, nil
}

// yearsBetween returns the span from 'from' to 'to' in fractional years,
// as calendar days divided by 365. A flat 365 ignores leap years; the
// resulting error is far below the resolution anyone analyses ages at.
func yearsBetween(fromYMD, toYMD string) (float64, error) {
	from, err := time.Parse(ymdLayout, fromYMD)
	if err != nil {
		return 0, fmt.Errorf("match: bad date %q: %w", fromYMD, err)
	}
	to, err := time.Parse(ymdLayout, toYMD)
	if err != nil {
		return 0, fmt.Errorf("match: bad date %q: %w", toYMD, err)
	}
	return to.Sub(from).Hours() / 24 / 365.0, nil
}
