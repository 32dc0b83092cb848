package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DailyAggregate holds the per-calendar-day credit and debit sums that drive
// the balance chart.
type DailyAggregate struct {
	Date    string          `json:"data"`
	Credit  decimal.Decimal `json:"entrada"`
	Debit   decimal.Decimal `json:"saida"`
	Balance decimal.Decimal `json:"balanco"`
}

// Totals carries the running credit and debit sums over the whole collection.
type Totals struct {
	Credit  decimal.Decimal `json:"totalEntradas"`
	Debit   decimal.Decimal `json:"totalSaidas"`
	Balance decimal.Decimal `json:"saldoAtual"`
}

// AggregateByDay groups the current entries by calendar day and sums the
// magnitudes per sign, returning the series sorted ascending by date. Entries
// with missing or malformed dates are skipped, never errored; a non-numeric
// magnitude contributes zero. The result is pure: the same collection always
// yields the same series, regardless of entry order.
func (c *Cache) AggregateByDay() []DailyAggregate {
	byDay := make(map[string]*DailyAggregate)

	for _, entry := range c.Snapshot() {
		day, ok := entry.Day()
		if !ok {
			continue
		}
		agg, ok := byDay[day]
		if !ok {
			agg = &DailyAggregate{Date: day}
			byDay[day] = agg
		}
		sign, magnitude := entry.Classify()
		switch sign {
		case SignCredit:
			agg.Credit = agg.Credit.Add(magnitude)
		case SignDebit:
			agg.Debit = agg.Debit.Add(magnitude)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]DailyAggregate, 0, len(days))
	for _, day := range days {
		agg := byDay[day]
		agg.Balance = agg.Credit.Sub(agg.Debit)
		out = append(out, *agg)
	}
	return out
}

// Totals sums credit and debit magnitudes over the whole collection.
// Balance is always credit minus debit.
func (c *Cache) Totals() Totals {
	totals := Totals{}
	for _, entry := range c.Snapshot() {
		sign, magnitude := entry.Classify()
		switch sign {
		case SignCredit:
			totals.Credit = totals.Credit.Add(magnitude)
		case SignDebit:
			totals.Debit = totals.Debit.Add(magnitude)
		}
	}
	totals.Balance = totals.Credit.Sub(totals.Debit)
	return totals
}
