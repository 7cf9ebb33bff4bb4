package countdown

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		decimals int
		want     string
	}{
		{125.123, 0, "2:05"},
		{72.123, 0, "1:12"},
		{43.123, 0, "43"},
		{8.123, 1, "8.1"},
		{0, 1, "0.0"},
		{60, 0, "1:00"},
		{600, 0, "10:00"},
		{3600, 0, "01:00:00"},
		{3725, 0, "01:02:05"},
		{3725.4, 1, "01:02:05.4"},
		{36000, 0, "10:00:00"},
		{90000, 0, "25:00:00"},
		// rounding happens before the padding decision
		{69.96, 0, "1:10"},
		// ties round away from zero
		{0.25, 1, "0.3"},
		{10.5, 0, "11"},
		// the seconds field can round up to 60
		{119.7, 0, "1:60"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.seconds, tt.decimals))
		})
	}
}

func TestFormatTime_FieldPresence(t *testing.T) {
	for x := 0.0; x < 3*3600; x += 7.3 {
		hours := math.Floor(x / 3600)
		minutes := math.Floor((x - hours*3600) / 60)

		want := 1
		if hours > 0 {
			want++
		}
		if minutes > 0 || hours > 0 {
			want++
		}

		got := FormatTime(x, ExtraDecimals(x))
		if n := len(strings.Split(got, ":")); n != want {
			t.Fatalf("FormatTime(%v) = %q: expected %d fields, got %d", x, got, want, n)
		}
		if again := FormatTime(x, ExtraDecimals(x)); again != got {
			t.Fatalf("FormatTime(%v) not deterministic: %q vs %q", x, got, again)
		}
	}
}

func TestExtraDecimals(t *testing.T) {
	assert.Equal(t, 1, ExtraDecimals(0))
	assert.Equal(t, 1, ExtraDecimals(8.123))
	assert.Equal(t, 1, ExtraDecimals(9.9))
	assert.Equal(t, 0, ExtraDecimals(9.91))
	assert.Equal(t, 0, ExtraDecimals(10.0))
	assert.Equal(t, 0, ExtraDecimals(185))
}

func TestTickPeriod(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, TickPeriod(0))
	assert.Equal(t, 50*time.Millisecond, TickPeriod(0.04))
	assert.Equal(t, 50*time.Millisecond, TickPeriod(-3))
	assert.Equal(t, time.Second, TickPeriod(100))
	assert.Equal(t, time.Second, TickPeriod(2000))
	assert.InDelta(t, float64(550*time.Millisecond), float64(TickPeriod(0.5)), float64(time.Microsecond))
	assert.InDelta(t, float64(110*time.Millisecond), float64(TickPeriod(0.1)), float64(time.Microsecond))
}

func TestMaxDisplayWidth(t *testing.T) {
	assert.Equal(t, 9, MaxDisplayWidth(0))
	assert.Equal(t, 9, MaxDisplayWidth(185))
	assert.Equal(t, 9, MaxDisplayWidth(5*3600))
	assert.Equal(t, 10, MaxDisplayWidth(10*3600))
	// hours wrap at a day
	assert.Equal(t, 9, MaxDisplayWidth(24*3600))
	assert.Equal(t, 9, MaxDisplayWidth(25*3600))
	// out-of-range input stays within the two possible hour widths
	assert.Equal(t, 9, MaxDisplayWidth(-7200))
	assert.Equal(t, 9, MaxDisplayWidth(math.NaN()))
	assert.Equal(t, 9, MaxDisplayWidth(math.Inf(1)))
	assert.Contains(t, []int{9, 10}, MaxDisplayWidth(1e300))
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		x        float64
		decimals int
		want     string
	}{
		{8.123, 1, "8.1"},
		{2.5, 0, "3"},
		{0.25, 1, "0.3"},
		{0.05, 1, "0.1"},
		// 1.005 is stored just below the tie
		{1.005, 2, "1.00"},
		{-2.5, 0, "-3"},
		{0.125, 2, "0.13"},
		{59.7, 0, "60"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, toFixed(tt.x, tt.decimals), "toFixed(%v, %d)", tt.x, tt.decimals)
	}
}
