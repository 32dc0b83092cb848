package api

import (
	"context"
	"net/http"
	"net/url"

	"finboard-go/internal/domain/event"
)

// ListEvents fetches every event.
func (g *Gateway) ListEvents(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	if err := g.do(ctx, "event.list", http.MethodGet, "/evento", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent fetches one event by identifier.
func (g *Gateway) GetEvent(ctx context.Context, id string) (event.Event, error) {
	var ev event.Event
	err := g.do(ctx, "event.get", http.MethodGet, "/evento/"+id, nil, &ev)
	return ev, err
}

// SearchEventsByTitle asks the server for events matching a title fragment.
func (g *Gateway) SearchEventsByTitle(ctx context.Context, title string) ([]event.Event, error) {
	var events []event.Event
	path := "/evento/search/titulo?titulo=" + url.QueryEscape(title)
	if err := g.do(ctx, "event.search", http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent registers a new event.
func (g *Gateway) CreateEvent(ctx context.Context, ev event.Event) error {
	return g.do(ctx, "event.create", http.MethodPost, "/evento", ev, nil)
}

// UpdateEvent replaces one event after a user edit.
func (g *Gateway) UpdateEvent(ctx context.Context, ev event.Event) error {
	return g.do(ctx, "event.update", http.MethodPut, "/evento/"+ev.ID, ev, nil)
}

// DeleteEvent removes one event.
func (g *Gateway) DeleteEvent(ctx context.Context, id string) error {
	return g.do(ctx, "event.delete", http.MethodDelete, "/evento/"+id, nil, nil)
}

// DeleteAllEvents removes every event.
func (g *Gateway) DeleteAllEvents(ctx context.Context) error {
	return g.do(ctx, "event.deleteAll", http.MethodDelete, "/evento/delete-all", nil, nil)
}
