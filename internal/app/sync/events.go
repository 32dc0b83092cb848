package sync

import (
	"context"
	"encoding/json"
	"sync"

	"finboard-go/internal/domain/event"
	"finboard-go/internal/platform/logging"
	"finboard-go/internal/transport/api"
	"finboard-go/internal/transport/channel"
)

// Events keeps the event and registration caches consistent under the same
// seed-then-patch contract as the ledger.
type Events struct {
	events        *event.Cache
	registrations *event.RegistrationCache
	gateway       *api.Gateway
	channel       *channel.Client
	notify        Notifier
	logger        *logging.Logger

	mu          sync.Mutex
	observers   map[int]func()
	nextID      int
	openEventID string
}

// NewEvents builds the event synchronizer.
func NewEvents(events *event.Cache, registrations *event.RegistrationCache, gateway *api.Gateway, ch *channel.Client, notify Notifier, logger *logging.Logger) *Events {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Events{
		events:        events,
		registrations: registrations,
		gateway:       gateway,
		channel:       ch,
		notify:        notify,
		logger:        logger,
		observers:     make(map[int]func()),
	}
}

// EventCache exposes the read-only event view.
func (s *Events) EventCache() *event.Cache {
	return s.events
}

// RegistrationCache exposes the read-only registration view.
func (s *Events) RegistrationCache() *event.RegistrationCache {
	return s.registrations
}

// Observe registers a change listener fired after every cache mutation.
func (s *Events) Observe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Refresh fetches all events and seeds the event cache. Failure leaves the
// cache unchanged.
func (s *Events) Refresh(ctx context.Context) error {
	events, err := s.gateway.ListEvents(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("event refresh failed: %v", err)
		}
		s.notify.Error("Falha ao carregar eventos.")
		return err
	}
	s.events.Seed(events)
	s.fireObservers()
	return nil
}

// OpenEvent fetches one event and its registrations, seeding only that
// event's slice of the registration cache.
func (s *Events) OpenEvent(ctx context.Context, eventID string) (event.Event, error) {
	ev, err := s.gateway.GetEvent(ctx, eventID)
	if err != nil {
		s.notify.Error("Falha ao carregar dados.")
		return event.Event{}, err
	}

	registrations, err := s.gateway.ListRegistrations(ctx, eventID)
	if err != nil {
		s.notify.Error("Falha ao carregar dados.")
		return event.Event{}, err
	}

	s.events.ApplyUpdate(ev)
	s.registrations.SeedForEvent(eventID, registrations)

	s.mu.Lock()
	s.openEventID = eventID
	s.mu.Unlock()

	s.fireObservers()
	return ev, nil
}

// Bind subscribes both caches to their realtime topics and returns the
// release func that removes every handler.
func (s *Events) Bind() (func(), error) {
	handlers := map[string]channel.Handler{
		channel.TopicEventCreated:        s.handleEventUpsert((*event.Cache).ApplyCreate),
		channel.TopicEventUpdated:        s.handleEventUpsert((*event.Cache).ApplyUpdate),
		channel.TopicEventDeleted:        s.handleEventDelete,
		channel.TopicRegistrationCreated: s.handleRegistrationChanged,
		channel.TopicRegistrationUpdated: s.handleRegistrationChanged,
		channel.TopicRegistrationDeleted: s.handleRegistrationChanged,
	}

	subscribed := make(map[string]channel.Handler, len(handlers))
	for topic, handler := range handlers {
		if err := s.channel.On(topic, handler); err != nil {
			for st, sh := range subscribed {
				_ = s.channel.Off(st, sh)
			}
			return nil, err
		}
		subscribed[topic] = handler
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			for topic, handler := range subscribed {
				_ = s.channel.Off(topic, handler)
			}
		})
	}
	return release, nil
}

// DeleteEvent removes one event server-side and patches the cache on success.
func (s *Events) DeleteEvent(ctx context.Context, id string) error {
	if err := s.gateway.DeleteEvent(ctx, id); err != nil {
		s.notify.Error("Falha ao deletar o evento.")
		return err
	}
	s.events.ApplyDelete(id)
	s.registrations.DeleteAllForEvent(id)
	s.fireObservers()
	s.notify.Success("Evento deletado com sucesso!")
	return nil
}

// DeleteAllEvents wipes every event.
func (s *Events) DeleteAllEvents(ctx context.Context) error {
	if err := s.gateway.DeleteAllEvents(ctx); err != nil {
		s.notify.Error("Falha ao deletar todos os eventos.")
		return err
	}
	s.events.Clear()
	s.fireObservers()
	s.notify.Success("Todos os eventos foram deletados!")
	return nil
}

// UpdateRegistration sends a user edit and patches the cache once confirmed.
func (s *Events) UpdateRegistration(ctx context.Context, reg event.Registration) error {
	if err := s.gateway.UpdateRegistration(ctx, reg); err != nil {
		s.notify.Error("Erro ao atualizar registro.")
		return err
	}
	s.registrations.ApplyUpdate(reg)
	s.fireObservers()
	s.notify.Success("Registro atualizado!")
	return nil
}

// DeleteAllRegistrations removes one event's registrations, leaving other
// events' registrations untouched.
func (s *Events) DeleteAllRegistrations(ctx context.Context, eventID string) error {
	if err := s.gateway.DeleteAllRegistrations(ctx, eventID); err != nil {
		s.notify.Error("Falha ao deletar todos os registros.")
		return err
	}
	s.registrations.DeleteAllForEvent(eventID)
	s.fireObservers()
	s.notify.Success("Todos os registros foram deletados!")
	return nil
}

// Search asks the server for events matching a title fragment, falling back
// to the local cache filter when the fetch fails.
func (s *Events) Search(ctx context.Context, title string) ([]event.Event, error) {
	if title == "" {
		return s.events.Snapshot(), nil
	}
	events, err := s.gateway.SearchEventsByTitle(ctx, title)
	if err != nil {
		return s.events.FilterByTitle(title), err
	}
	return events, nil
}

// Event notifications carry the entity when the server produced them, but
// client-emitted hints arrive without a payload. A frame that does not decode
// falls back to a full refetch so the change still lands.
func (s *Events) handleEventUpsert(apply func(*event.Cache, event.Event)) channel.Handler {
	return func(data json.RawMessage) {
		var ev event.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.ID == "" {
			go s.refetchEvents()
			return
		}
		apply(s.events, ev)
		s.fireObservers()
	}
}

func (s *Events) handleEventDelete(data json.RawMessage) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil || id == "" {
		go s.refetchEvents()
		return
	}
	s.events.ApplyDelete(id)
	s.registrations.DeleteAllForEvent(id)
	s.fireObservers()
}

// Registration topics are refetch hints for the open event, payload or not.
func (s *Events) handleRegistrationChanged(json.RawMessage) {
	s.mu.Lock()
	eventID := s.openEventID
	s.mu.Unlock()
	if eventID == "" {
		return
	}
	go s.refetchRegistrations(eventID)
}

func (s *Events) refetchEvents() {
	events, err := s.gateway.ListEvents(context.Background())
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("event refetch failed: %v", err)
		}
		return
	}
	s.events.Seed(events)
	s.fireObservers()
}

func (s *Events) refetchRegistrations(eventID string) {
	registrations, err := s.gateway.ListRegistrations(context.Background(), eventID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("registration refetch failed: %v", err)
		}
		return
	}
	s.registrations.SeedForEvent(eventID, registrations)
	s.fireObservers()
}

func (s *Events) fireObservers() {
	s.mu.Lock()
	observers := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}
