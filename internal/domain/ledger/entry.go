package ledger

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sign classifies a ledger entry as credit (inbound) or debit (outbound).
type Sign string

const (
	SignCredit Sign = "C"
	SignDebit  Sign = "D"
)

// Amount is a lenient monetary value. Upstream data quality is not
// guaranteed: a magnitude that does not parse as a number unmarshals as an
// invalid zero instead of failing the whole fetch.
type Amount struct {
	value decimal.Decimal
	valid bool
}

// NewAmount wraps a decimal as a valid amount.
func NewAmount(value decimal.Decimal) Amount {
	return Amount{value: value, valid: true}
}

// AmountFromString parses a numeric string, yielding an invalid zero amount
// when it does not parse.
func AmountFromString(raw string) Amount {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Amount{}
	}
	return Amount{value: value, valid: true}
}

// Decimal returns the numeric value, zero when invalid.
func (a Amount) Decimal() decimal.Decimal {
	if !a.valid {
		return decimal.Zero
	}
	return a.value
}

// Valid reports whether the amount carried a usable numeric value.
func (a Amount) Valid() bool {
	return a.valid
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = Amount{}
		return nil
	}
	// numeric strings are accepted alongside plain numbers
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*a = AmountFromString(asString)
		return nil
	}
	*a = AmountFromString(raw)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal().String()), nil
}

// Entry is one financial movement record. JSON field names follow the
// service's wire format.
type Entry struct {
	ID           string `json:"extratoid"`
	MovementDate string `json:"data_movimento"`
	Description  string `json:"descricao"`
	Amount       Amount `json:"valorLancamento"`
	Sign         Sign   `json:"sinal"`
}

// Day returns the calendar-day key of the movement date: the first ten
// characters of the ISO date string. Missing or malformed dates report false
// and are skipped by the aggregator.
func (e Entry) Day() (string, bool) {
	if len(e.MovementDate) < 10 {
		return "", false
	}
	day := e.MovementDate[:10]
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return "", false
	}
	return day, true
}

// Classify resolves the effective sign and magnitude of the entry. When the
// sign field is set by the server it is authoritative. When it is absent the
// arithmetic sign of the raw value decides: strictly negative counts as debit,
// everything else as credit. The fallback exists because at least one upstream
// path omits the sign field.
func (e Entry) Classify() (Sign, decimal.Decimal) {
	value := e.Amount.Decimal()
	switch e.Sign {
	case SignCredit:
		return SignCredit, value
	case SignDebit:
		return SignDebit, value
	}
	if value.IsNegative() {
		return SignDebit, value.Abs()
	}
	return SignCredit, value
}
