package api

import (
	"context"
	"net/http"

	"finboard-go/internal/domain/event"
)

// ListRegistrations fetches the registrations of one event.
func (g *Gateway) ListRegistrations(ctx context.Context, eventID string) ([]event.Registration, error) {
	var registrations []event.Registration
	if err := g.do(ctx, "registration.list", http.MethodGet, "/registro/evento/"+eventID, nil, &registrations); err != nil {
		return nil, err
	}
	return registrations, nil
}

// GetRegistration fetches one registration by identifier.
func (g *Gateway) GetRegistration(ctx context.Context, id string) (event.Registration, error) {
	var reg event.Registration
	err := g.do(ctx, "registration.get", http.MethodGet, "/registro/"+id, nil, &reg)
	return reg, err
}

// CreateRegistration signs a person up for an event.
func (g *Gateway) CreateRegistration(ctx context.Context, reg event.Registration) error {
	return g.do(ctx, "registration.create", http.MethodPost, "/registro/registro", reg, nil)
}

// UpdateRegistration replaces one registration after a user edit.
func (g *Gateway) UpdateRegistration(ctx context.Context, reg event.Registration) error {
	return g.do(ctx, "registration.update", http.MethodPut, "/registro/"+reg.ID, reg, nil)
}

// DeleteRegistration removes one registration.
func (g *Gateway) DeleteRegistration(ctx context.Context, id string) error {
	return g.do(ctx, "registration.delete", http.MethodDelete, "/registro/"+id, nil, nil)
}

// DeleteAllRegistrations removes every registration of one event, leaving
// other events' registrations untouched.
func (g *Gateway) DeleteAllRegistrations(ctx context.Context, eventID string) error {
	return g.do(ctx, "registration.deleteAll", http.MethodDelete, "/registro/"+eventID+"/registros", nil, nil)
}
