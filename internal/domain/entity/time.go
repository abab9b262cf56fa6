package entity

import "time"

// WIB is the fixed reporting timezone (UTC+7). All human facing
// timestamps in reports and digests use it.
var WIB = time.FixedZone("WIB", 7*60*60)

// FormatWIB renders a timestamp as "2006-01-02 15:04 WIB".
func FormatWIB(t time.Time) string {
	return t.In(WIB).Format("2006-01-02 15:04") + " WIB"
}

// FormatWIBClock renders only the wall-clock part, "15:04 WIB".
func FormatWIBClock(t time.Time) string {
	return t.In(WIB).Format("15:04") + " WIB"
}

// GreetingWIB returns the Indonesian salutation and day-part label for
// the WIB wall clock. Pagi 5-11, Siang 11-15, Sore 15-18, Malam
// otherwise.
func GreetingWIB(t time.Time) (string, string) {
	switch h := t.In(WIB).Hour(); {
	case h >= 5 && h < 11:
		return "Selamat Pagi", "Pagi"
	case h >= 11 && h < 15:
		return "Selamat Siang", "Siang"
	case h >= 15 && h < 18:
		return "Selamat Sore", "Sore"
	default:
		return "Selamat Malam", "Malam"
	}
}

// StartOfWIBDay returns midnight WIB of the day containing t.
func StartOfWIBDay(t time.Time) time.Time {
	l := t.In(WIB)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, WIB)
}
