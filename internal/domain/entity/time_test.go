package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGreetingWIB(t *testing.T) {
	tests := []struct {
		utcHour  int
		greeting string
		waktu    string
	}{
		{1, "Selamat Pagi", "Pagi"},     // 08:00 WIB
		{5, "Selamat Siang", "Siang"},   // 12:00 WIB
		{9, "Selamat Sore", "Sore"},     // 16:00 WIB
		{13, "Selamat Malam", "Malam"},  // 20:00 WIB
		{21, "Selamat Malam", "Malam"},  // 04:00 WIB next day
	}
	for _, tt := range tests {
		now := time.Date(2026, 8, 28, tt.utcHour, 0, 0, 0, time.UTC)
		greeting, waktu := GreetingWIB(now)
		assert.Equal(t, tt.greeting, greeting)
		assert.Equal(t, tt.waktu, waktu)
	}
}

func TestFormatWIB(t *testing.T) {
	now := time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-08-28 08:30 WIB", FormatWIB(now))
	assert.Equal(t, "08:30 WIB", FormatWIBClock(now))
}

func TestStartOfWIBDay(t *testing.T) {
	// 23:00 UTC on the 27th is already the 28th in WIB.
	now := time.Date(2026, 8, 27, 23, 0, 0, 0, time.UTC)

	start := StartOfWIBDay(now)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, WIB).Unix(), start.Unix())
}
