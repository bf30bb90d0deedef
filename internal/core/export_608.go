package core

import (
	"fmt"
	"sort"
)

// voidReasonDeteriorated is the only void reason the system currently
// produces ("deteriorated/voided original").
const voidReasonDeteriorated = "01"

// Export608 builds the voided-documents declaration: one record per
// distinct voided fiscal number in the period. Two sources are merged and
// de-duplicated by fiscal number:
//
//	(a) invoices with status VOIDED dated inside the period, and
//	(b) the affected invoice of every reason-"01" note dated inside the
//	    period, when not already covered by (a).
//
// Invoice-sourced records carry the invoice date; note-sourced records
// carry the note date. Records are ordered by fiscal number so repeated
// exports of the same snapshot are byte-identical.
//
// Record layout: fiscal number | date YYYYMMDD | void reason (01).
func Export608(tenantTaxID string, period PeriodSelection, invoices []Invoice, notes []CreditDebitNote) (Artifact, error) {
	dates := make(map[string]string)

	for _, inv := range invoices {
		if inv.Status != StatusVoided || !withinPeriod(inv.Date, period) {
			continue
		}
		dates[inv.FiscalNumber] = inv.Date
	}
	for _, n := range notes {
		if n.Kind != NoteCredit || n.ModificationReason != ReasonVoided || !withinPeriod(n.Date, period) {
			continue
		}
		if _, covered := dates[n.AffectedFiscalNum]; !covered {
			dates[n.AffectedFiscalNum] = n.Date
		}
	}

	numbers := make([]string, 0, len(dates))
	for ncf := range dates {
		numbers = append(numbers, ncf)
	}
	sort.Strings(numbers)

	records := []string{fmt.Sprintf("608|%s|%s|%d", tenantTaxID, period.Period, len(numbers))}
	for _, ncf := range numbers {
		date, err := exportDate(dates[ncf])
		if err != nil {
			return Artifact{}, fmt.Errorf("voided document %s: %w", ncf, err)
		}
		records = append(records, fmt.Sprintf("%s|%s|%s", ncf, date, voidReasonDeteriorated))
	}

	artifact := newArtifact("608", tenantTaxID, period.Period, records)
	if len(records) == 1 {
		return artifact, ErrEmptyPeriodSelection
	}
	return artifact, nil
}
