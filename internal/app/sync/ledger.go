package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"finboard-go/internal/domain/ledger"
	"finboard-go/internal/platform/logging"
	"finboard-go/internal/transport/api"
	"finboard-go/internal/transport/channel"
)

// statusPayload is the free-form progress notification. The server has sent
// both field names over time.
type statusPayload struct {
	Stage  string `json:"etapa"`
	Status string `json:"status"`
}

// Ledger keeps the ledger cache consistent: one-shot fetches seed it, realtime
// notifications patch it. The cache is only ever written from here.
type Ledger struct {
	cache   *ledger.Cache
	gateway *api.Gateway
	channel *channel.Client
	notify  Notifier
	logger  *logging.Logger

	mu        sync.Mutex
	observers map[int]func()
	nextID    int
	onStatus  func(stage string)
	onChart   func(rows []api.ChartRow)
}

// NewLedger builds the ledger synchronizer.
func NewLedger(cache *ledger.Cache, gateway *api.Gateway, ch *channel.Client, notify Notifier, logger *logging.Logger) *Ledger {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Ledger{
		cache:     cache,
		gateway:   gateway,
		channel:   ch,
		notify:    notify,
		logger:    logger,
		observers: make(map[int]func()),
	}
}

// Cache exposes the read-only view the binding renders from.
func (s *Ledger) Cache() *ledger.Cache {
	return s.cache
}

// Observe registers a change listener fired after every cache mutation. The
// returned func removes it.
func (s *Ledger) Observe(fn func()) func() {
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

// OnStatus registers the progress display callback for the status topic.
func (s *Ledger) OnStatus(fn func(stage string)) {
	s.mu.Lock()
	s.onStatus = fn
	s.mu.Unlock()
}

// OnChart registers the callback receiving server-pushed chart rows.
func (s *Ledger) OnChart(fn func(rows []api.ChartRow)) {
	s.mu.Lock()
	s.onChart = fn
	s.mu.Unlock()
}

// Refresh fetches the full collection and seeds the cache. A failed fetch
// leaves the cache unchanged and surfaces the error as a user message.
// In-flight refreshes are never cancelled: a slow stale response can land
// after a notification and win.
func (s *Ledger) Refresh(ctx context.Context) error {
	entries, err := s.gateway.ListEntries(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("ledger refresh failed: %v", err)
		}
		s.notify.Error(fmt.Sprintf("Erro: %v", err))
		return err
	}

	s.cache.Seed(entries)
	s.fireObservers()
	s.notify.Success(fmt.Sprintf("Foram carregados %d extratos.", len(entries)))
	return nil
}

// Bind subscribes the cache to the realtime topics. The returned release func
// unsubscribes every handler; callers must invoke it on teardown so no handler
// leaks across reconnects or logout.
func (s *Ledger) Bind() (func(), error) {
	handlers := map[string]channel.Handler{
		channel.TopicEntryCreated:    s.handleUpsert((*ledger.Cache).ApplyCreate),
		channel.TopicEntryUpdated:    s.handleUpsert((*ledger.Cache).ApplyUpdate),
		channel.TopicEntryDeleted:    s.handleDelete,
		channel.TopicEntryDeletedAll: s.handleDeleteAll,
		channel.TopicStatus:          s.handleStatus,
		channel.TopicChartRefresh:    s.handleChart,
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

// Create records a new movement. The cache is patched by the create
// notification the server sends back, not here.
func (s *Ledger) Create(ctx context.Context, entry ledger.Entry) error {
	if err := s.gateway.CreateEntry(ctx, entry); err != nil {
		s.notify.Error(fmt.Sprintf("Erro: %v", err))
		return err
	}
	return nil
}

// Update sends a user edit and patches the cache once the server confirms.
func (s *Ledger) Update(ctx context.Context, entry ledger.Entry) error {
	if err := s.gateway.UpdateEntry(ctx, entry); err != nil {
		s.notify.Error(fmt.Sprintf("Erro: %v", err))
		return err
	}
	s.cache.ApplyUpdate(entry)
	s.fireObservers()
	return nil
}

// Delete removes one movement and patches the cache once the server confirms.
func (s *Ledger) Delete(ctx context.Context, id string) error {
	if err := s.gateway.DeleteEntry(ctx, id); err != nil {
		s.notify.Error(fmt.Sprintf("Erro: %v", err))
		return err
	}
	s.cache.ApplyDelete(id)
	s.fireObservers()
	return nil
}

// DeleteAll wipes the ledger server-side, clears the cache and refetches.
func (s *Ledger) DeleteAll(ctx context.Context) error {
	if err := s.gateway.DeleteAllEntries(ctx); err != nil {
		s.notify.Error(fmt.Sprintf("Erro: %v", err))
		return err
	}
	s.cache.Clear()
	s.fireObservers()
	s.notify.Success("Todos os extratos foram deletados com sucesso!")
	return s.Refresh(ctx)
}

// Sync asks the server to re-import movements; progress comes back over the
// status topic.
func (s *Ledger) Sync(ctx context.Context) error {
	return s.gateway.SyncEntries(ctx)
}

func (s *Ledger) handleUpsert(apply func(*ledger.Cache, ledger.Entry)) channel.Handler {
	return func(data json.RawMessage) {
		var entry ledger.Entry
		if err := json.Unmarshal(data, &entry); err != nil || entry.ID == "" {
			return
		}
		apply(s.cache, entry)
		s.fireObservers()
	}
}

func (s *Ledger) handleDelete(data json.RawMessage) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil || id == "" {
		return
	}
	s.cache.ApplyDelete(id)
	s.fireObservers()
}

func (s *Ledger) handleDeleteAll(json.RawMessage) {
	s.cache.Clear()
	s.fireObservers()
}

func (s *Ledger) handleStatus(data json.RawMessage) {
	var payload statusPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	stage := payload.Stage
	if stage == "" {
		stage = payload.Status
	}

	s.mu.Lock()
	fn := s.onStatus
	s.mu.Unlock()
	if fn != nil && stage != "" {
		fn(stage)
	}
}

func (s *Ledger) handleChart(data json.RawMessage) {
	var rows []api.ChartRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return
	}

	s.mu.Lock()
	fn := s.onChart
	s.mu.Unlock()
	if fn != nil {
		fn(rows)
	}
}

func (s *Ledger) fireObservers() {
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
