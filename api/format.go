package countdown

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	// expandedDecimals is the fractional precision shown for short countdowns.
	expandedDecimals = 1
	// expandedThreshold is the remaining time at or below which expandedDecimals apply.
	expandedThreshold = 9.9

	tickScale     = 1.1
	minTickPeriod = 50 * time.Millisecond
	maxTickPeriod = 1000 * time.Millisecond
)

// TickPeriod returns the delay before the next redraw. Redraws speed up as
// the countdown approaches zero, within [50ms, 1s].
func TickPeriod(seconds float64) time.Duration {
	ms := seconds * tickScale * 1000
	ms = math.Max(math.Min(ms, float64(maxTickPeriod/time.Millisecond)), float64(minTickPeriod/time.Millisecond))
	return time.Duration(ms * float64(time.Millisecond))
}

// ExtraDecimals returns how many fractional digits to show for seconds.
func ExtraDecimals(seconds float64) int {
	if seconds <= expandedThreshold {
		return expandedDecimals
	}
	return 0
}

// FormatTime renders seconds as [H:][M:]S with the given number of
// fractional digits on the seconds field. Leading fields are omitted while
// they are zero, so 125.123 renders as "2:05" and 8.123 (one decimal) as "8.1".
func FormatTime(seconds float64, decimals int) string {
	hours := math.Floor(seconds / 3600)
	minutes := math.Floor((seconds - hours*3600) / 60)
	secs := toFixed(seconds-hours*3600-minutes*60, decimals)

	// padding looks at the rounded value, not the raw remainder
	rounded, _ := strconv.ParseFloat(secs, 64)

	hoursStr := strconv.FormatFloat(hours, 'f', 0, 64)
	minutesStr := strconv.FormatFloat(minutes, 'f', 0, 64)
	if hours < 10 {
		hoursStr = "0" + hoursStr
	}
	if minutes < 10 && hours >= 1 {
		minutesStr = "0" + minutesStr
	}
	if rounded < 10 && (minutes >= 1 || hours >= 1) {
		secs = "0" + secs
	}

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, hoursStr)
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, minutesStr)
	}
	parts = append(parts, secs)

	return strings.Join(parts, ":")
}

// MaxDisplayWidth is the widest string the display can show for a countdown
// that started at startTime. It is used to blank the previous frame.
func MaxDisplayWidth(startTime float64) int {
	startHours := 0.0
	if startTime > 0 && !math.IsInf(startTime, 0) {
		startHours = math.Mod(math.Floor(startTime/3600), 24)
	}
	return len(strconv.FormatFloat(startHours, 'f', 0, 64)) + 1 + // hours and a colon
		2 + 1 + // minutes and a colon
		2 + 1 + expandedDecimals // seconds, a decimal point and decimals
}

// toFixed formats x with exactly decimals fractional digits. Exact binary
// ties round away from zero; strconv alone would round them to even.
func toFixed(x float64, decimals int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) || decimals < 0 {
		return strconv.FormatFloat(x, 'f', decimals, 64)
	}
	if x < 0 {
		return "-" + toFixed(-x, decimals)
	}

	scaled := new(big.Float).SetPrec(256).SetFloat64(x)
	scaled.Mul(scaled, new(big.Float).SetPrec(256).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)))

	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetPrec(256).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) != 0 {
		return strconv.FormatFloat(x, 'f', decimals, 64)
	}

	digits := whole.Add(whole, big.NewInt(1)).String()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	return digits[:len(digits)-decimals] + "." + digits[len(digits)-decimals:]
}
