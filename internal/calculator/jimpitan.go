// Package calculator implements the jimpitan split and recap arithmetic.
package calculator

import "github.com/yusapedia/jimpitan/internal/model"

// Split divides a collected amount into the mandatory fund portion and the
// savings portion using the configured fixed nominal: the fund portion is
// capped at the nominal, anything above it is savings. For all non-negative
// inputs fund + savings == amount.
//
// Portions are computed once, when a record is authored, with the nominal in
// force at that moment. Editing the nominal later does not recompute stored
// records; historical portions keep the split that was current on their date.
func Split(amount, nominal int) (fund, savings int) {
	if amount < 0 {
		amount = 0
	}
	if nominal < 0 {
		nominal = 0
	}
	fund = amount
	if fund > nominal {
		fund = nominal
	}
	return fund, amount - fund
}

// Recap aggregates jimpitan records for dashboard summaries.
type Recap struct {
	Count   int
	Total   int
	Fund    int
	Savings int
}

// Summarize totals all records.
func Summarize(records []model.JimpitanRecord) Recap {
	var r Recap
	for _, rec := range records {
		r.Count++
		r.Total += rec.Amount
		r.Fund += rec.JimpitanPortion
		r.Savings += rec.SavingsPortion
	}
	return r
}

// SummarizeCitizen totals the records belonging to one citizen.
func SummarizeCitizen(records []model.JimpitanRecord, citizenID string) Recap {
	var r Recap
	for _, rec := range records {
		if rec.CitizenID != citizenID {
			continue
		}
		r.Count++
		r.Total += rec.Amount
		r.Fund += rec.JimpitanPortion
		r.Savings += rec.SavingsPortion
	}
	return r
}
