package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Artifact is one generated declaration file. Content is the bit-exact
// regulatory payload: pipe-delimited, newline-separated records, UTF-8,
// no trailing empty line. MachineName is the stable programmatic filename;
// DisplayName is presentation-only and must never be used for comparisons.
type Artifact struct {
	Code        string // "606", "607" or "608"
	Period      string // YYYYMM
	Content     string
	MachineName string
	DisplayName string
}

// spanishMonths backs the localized display filename.
var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// newArtifact assembles an artifact with both filenames derived from the
// report code, period and tenant tax id.
func newArtifact(code, tenantTaxID, period string, records []string) Artifact {
	return Artifact{
		Code:        code,
		Period:      period,
		Content:     strings.Join(records, "\n"),
		MachineName: fmt.Sprintf("DGII_%s_%s_%s.txt", code, tenantTaxID, period),
		DisplayName: fmt.Sprintf("%s %s %s - %s.txt", code, periodMonthName(period), period[:4], tenantTaxID),
	}
}

func periodMonthName(period string) string {
	t, err := time.Parse("200601", period)
	if err != nil {
		return period
	}
	return spanishMonths[t.Month()-1]
}

// stripTaxID removes the separators commonly found in tax identifiers.
func stripTaxID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// taxIDClassification classifies a tax identifier by its stripped length:
// 9 digits is a business ("1"), 11 digits an individual ("2"), anything
// else is left unclassified.
func taxIDClassification(id string) string {
	switch len(stripTaxID(id)) {
	case 9:
		return "1"
	case 11:
		return "2"
	default:
		return ""
	}
}

// padRight space-pads a value to a fixed character width, truncating values
// that exceed it. Truncation is by rune so a multibyte value is never split
// into invalid UTF-8. Field widths are part of the regulatory contract.
func padRight(v string, width int) string {
	r := []rune(v)
	if len(r) > width {
		return string(r[:width])
	}
	return v + strings.Repeat(" ", width-len(r))
}

// exportDate renders a YYYY-MM-DD date as the declarations' YYYYMMDD form.
func exportDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid record date %q: %w", date, err)
	}
	return t.Format("20060102"), nil
}

// money renders a monetary value with exactly two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

const zeroMoney = "0.00"

// withinPeriod reports whether a YYYY-MM-DD date falls inside the selection.
// Dates are compared lexically, which is safe for the ISO form.
func withinPeriod(date string, p PeriodSelection) bool {
	return date >= p.StartDate && date <= p.EndDate
}
