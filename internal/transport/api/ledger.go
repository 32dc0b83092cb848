package api

import (
	"context"
	"encoding/json"
	"net/http"

	"finboard-go/internal/domain/ledger"
)

// ledgerList is the envelope returned by the entry listing endpoint.
type ledgerList struct {
	Entries []ledger.Entry `json:"extratos"`
}

// ChartRow is one day of server-computed credit and debit sums.
type ChartRow struct {
	Date   string        `json:"data"`
	Credit ledger.Amount `json:"entrada"`
	Debit  ledger.Amount `json:"saida"`
}

// Summary carries the server's aggregate view of one side of the ledger.
type Summary struct {
	Credit ledger.Amount `json:"totalEntradas"`
	Debit  ledger.Amount `json:"totalSaidas"`
	Count  int           `json:"quantidade"`
}

// ListEntries fetches the full ledger collection.
func (g *Gateway) ListEntries(ctx context.Context) ([]ledger.Entry, error) {
	var list ledgerList
	if err := g.do(ctx, "ledger.list", http.MethodGet, "/extrato/extrato", nil, &list); err != nil {
		return nil, err
	}
	return list.Entries, nil
}

// CreateEntry records a new manual movement.
func (g *Gateway) CreateEntry(ctx context.Context, entry ledger.Entry) error {
	return g.do(ctx, "ledger.create", http.MethodPost, "/extrato/manual", entry, nil)
}

// UpdateEntry replaces one movement after a user edit.
func (g *Gateway) UpdateEntry(ctx context.Context, entry ledger.Entry) error {
	return g.do(ctx, "ledger.update", http.MethodPut, "/extrato/"+entry.ID, entry, nil)
}

// DeleteEntry removes one movement.
func (g *Gateway) DeleteEntry(ctx context.Context, id string) error {
	return g.do(ctx, "ledger.delete", http.MethodDelete, "/extrato/"+id, nil, nil)
}

// DeleteAllEntries clears the account's whole ledger.
func (g *Gateway) DeleteAllEntries(ctx context.Context) error {
	return g.do(ctx, "ledger.deleteAll", http.MethodDelete, "/extrato/", nil, nil)
}

// SyncEntries asks the server to re-import the account's movements. Progress
// arrives over the realtime status topic.
func (g *Gateway) SyncEntries(ctx context.Context) error {
	return g.do(ctx, "ledger.sync", http.MethodGet, "/extrato/sincronizar", nil, nil)
}

// Chart fetches the server's per-day series. The endpoint answers either a
// bare array or an envelope with a "dados" field.
func (g *Gateway) Chart(ctx context.Context) ([]ChartRow, error) {
	var raw json.RawMessage
	if err := g.do(ctx, "ledger.chart", http.MethodGet, "/extrato/grafico", nil, &raw); err != nil {
		return nil, err
	}

	var rows []ChartRow
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}
	var envelope struct {
		Rows []ChartRow `json:"dados"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		return envelope.Rows, nil
	}
	return nil, nil
}

// Credits fetches the inbound totals summary.
func (g *Gateway) Credits(ctx context.Context) (Summary, error) {
	var summary Summary
	err := g.do(ctx, "ledger.credits", http.MethodGet, "/extrato/entradas", nil, &summary)
	return summary, err
}

// Debits fetches the outbound totals summary.
func (g *Gateway) Debits(ctx context.Context) (Summary, error) {
	var summary Summary
	err := g.do(ctx, "ledger.debits", http.MethodGet, "/extrato/saidas", nil, &summary)
	return summary, err
}
