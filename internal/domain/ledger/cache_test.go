package ledger

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func entry(id, date, sign string, amount float64) Entry {
	return Entry{
		ID:           id,
		MovementDate: date,
		Description:  "movimento " + id,
		Amount:       NewAmount(decimal.NewFromFloat(amount)),
		Sign:         Sign(sign),
	}
}

func TestCache_SeedReplacesCollection(t *testing.T) {
	cache := NewCache()
	cache.Seed([]Entry{entry("1", "2024-01-01", "C", 100)})
	cache.Seed([]Entry{
		entry("2", "2024-01-02", "D", 40),
		entry("3", "2024-01-03", "C", 10),
	})

	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}
	if _, ok := cache.Get("1"); ok {
		t.Error("seed should have dropped entry 1")
	}
}

func TestCache_ApplyCreateOverwritesInPlace(t *testing.T) {
	cache := NewCache()
	cache.Seed([]Entry{
		entry("1", "2024-01-01", "C", 100),
		entry("2", "2024-01-02", "D", 40),
	})

	// duplicate notification racing a fetch: same id, new data
	cache.ApplyCreate(entry("1", "2024-01-05", "D", 70))

	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (no duplicate)", cache.Len())
	}
	got, ok := cache.Get("1")
	if !ok {
		t.Fatal("entry 1 missing")
	}
	if got.MovementDate != "2024-01-05" || got.Sign != SignDebit {
		t.Errorf("entry 1 not overwritten: %+v", got)
	}
	// position preserved
	if snapshot := cache.Snapshot(); snapshot[0].ID != "1" {
		t.Errorf("overwrite moved entry to position of %q", snapshot[0].ID)
	}
}

func TestCache_ApplyUpdateFallsBackToCreate(t *testing.T) {
	cache := NewCache()
	cache.ApplyUpdate(entry("9", "2024-02-01", "C", 5))

	if cache.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", cache.Len())
	}
	if _, ok := cache.Get("9"); !ok {
		t.Error("out-of-order update should insert the entry")
	}
}

func TestCache_ApplyDelete(t *testing.T) {
	cache := NewCache()
	cache.Seed([]Entry{
		entry("1", "2024-01-01", "C", 100),
		entry("2", "2024-01-02", "D", 40),
	})

	cache.ApplyDelete("1")
	if cache.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", cache.Len())
	}
	cache.ApplyDelete("missing") // unknown id ignored
	if cache.Len() != 1 {
		t.Fatalf("Len() = %d after deleting unknown id, want 1", cache.Len())
	}
}

func TestCache_ClearEmptiesCollectionAndTotals(t *testing.T) {
	cache := NewCache()
	cache.Seed([]Entry{
		entry("1", "2024-01-01", "C", 100),
		entry("2", "2024-01-02", "D", 40),
	})

	cache.Clear()

	if cache.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", cache.Len())
	}
	totals := cache.Totals()
	if !totals.Credit.IsZero() || !totals.Debit.IsZero() || !totals.Balance.IsZero() {
		t.Errorf("totals after clear = %+v, want all zero", totals)
	}
}

func TestCache_FilterByDescription(t *testing.T) {
	cache := NewCache()
	a := entry("1", "2024-01-01", "C", 100)
	a.Description = "Salário Mensal"
	b := entry("2", "2024-01-02", "D", 40)
	b.Description = "Mercado"
	cache.Seed([]Entry{a, b})

	if got := cache.FilterByDescription("salário"); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("FilterByDescription(salário) = %v", got)
	}
	if got := cache.FilterByDescription(""); len(got) != 2 {
		t.Errorf("empty term should match all, got %d", len(got))
	}
	if got := cache.FilterByDescription("aluguel"); len(got) != 0 {
		t.Errorf("no match expected, got %d", len(got))
	}
}

func TestEntry_UnmarshalToleratesBadAmounts(t *testing.T) {
	payloads := []string{
		`{"extratoid":"1","data_movimento":"2024-01-01","descricao":"ok","valorLancamento":100.5,"sinal":"C"}`,
		`{"extratoid":"2","data_movimento":"2024-01-01","descricao":"string amount","valorLancamento":"42.10","sinal":"D"}`,
		`{"extratoid":"3","data_movimento":"2024-01-01","descricao":"garbage","valorLancamento":"abc","sinal":"C"}`,
		`{"extratoid":"4","data_movimento":"2024-01-01","descricao":"null","valorLancamento":null,"sinal":"D"}`,
	}

	for _, payload := range payloads {
		var e Entry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			t.Fatalf("unmarshal %s: %v", payload, err)
		}
	}

	var e Entry
	if err := json.Unmarshal([]byte(payloads[2]), &e); err != nil {
		t.Fatal(err)
	}
	if e.Amount.Valid() {
		t.Error("garbage amount should be invalid")
	}
	if !e.Amount.Decimal().IsZero() {
		t.Error("garbage amount should decode as zero")
	}
}

func TestEntry_Day(t *testing.T) {
	tests := []struct {
		date string
		want string
		ok   bool
	}{
		{"2024-01-01", "2024-01-01", true},
		{"2024-01-01T15:04:05.000Z", "2024-01-01", true},
		{"", "", false},
		{"2024-1-1", "", false},
		{"not-a-date-at-all", "", false},
	}
	for _, tt := range tests {
		got, ok := Entry{MovementDate: tt.date}.Day()
		if got != tt.want || ok != tt.ok {
			t.Errorf("Day(%q) = (%q, %v), want (%q, %v)", tt.date, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEntry_ClassifySignFallback(t *testing.T) {
	// explicit sign is authoritative
	sign, mag := entry("1", "2024-01-01", "D", 50).Classify()
	if sign != SignDebit || !mag.Equal(decimal.NewFromInt(50)) {
		t.Errorf("explicit debit: (%v, %v)", sign, mag)
	}

	// absent sign: negative value counts as debit with absolute magnitude
	sign, mag = entry("2", "2024-01-01", "", -30).Classify()
	if sign != SignDebit || !mag.Equal(decimal.NewFromInt(30)) {
		t.Errorf("inferred debit: (%v, %v)", sign, mag)
	}

	// absent sign: non-negative value counts as credit
	sign, mag = entry("3", "2024-01-01", "", 30).Classify()
	if sign != SignCredit || !mag.Equal(decimal.NewFromInt(30)) {
		t.Errorf("inferred credit: (%v, %v)", sign, mag)
	}
}
