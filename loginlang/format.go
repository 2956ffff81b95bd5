package loginlang

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tag converts a catalogue code to a BCP 47 language tag.
func (c Code) Tag() language.Tag {
	tag, err := language.Parse(strings.ReplaceAll(string(c), "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}

// FormatAmount renders a balance figure with the locale's digit grouping
// and no fraction digits, matching the dashboard display.
func FormatAmount(code Code, value float64) string {
	p := message.NewPrinter(code.Tag())
	return p.Sprint(number.Decimal(value, number.MaxFractionDigits(0)))
}

// FormatTimestamp renders the last-updated stamp in the local time zone.
// The layout is deliberately locale-neutral; only the digits group per
// locale conventions.
func FormatTimestamp(code Code, t time.Time) string {
	p := message.NewPrinter(code.Tag())
	local := t.Local()
	return p.Sprintf("%s", local.Format("2006-01-02 15:04"))
}
