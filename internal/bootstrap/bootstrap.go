package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	appsync "finboard-go/internal/app/sync"
	"finboard-go/internal/domain/event"
	"finboard-go/internal/domain/ledger"
	"finboard-go/internal/domain/session"
	platformconfig "finboard-go/internal/platform/config"
	perrors "finboard-go/internal/platform/errors"
	platformlogging "finboard-go/internal/platform/logging"
	"finboard-go/internal/transport/api"
	"finboard-go/internal/transport/channel"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Title   string
	Kind    perrors.Kind
	Execute stepFn
}

type appState struct {
	config  *platformconfig.Config
	logger  *platformlogging.Logger
	store   *session.Store
	clock   *session.Clock
	gateway *api.Gateway
	channel *channel.Client
	ledger  *appsync.Ledger
	events  *appsync.Events

	releases []func()
}

// logNotifier is the headless stand-in for toast messages.
type logNotifier struct {
	logger *platformlogging.Logger
}

func (n *logNotifier) Success(message string) { n.logger.Info("%s", message) }
func (n *logNotifier) Error(message string)   { n.logger.Warn("%s", message) }

func steps() []initStep {
	return []initStep{
		{ID: "config", Title: "load configuration", Kind: perrors.KindConfig, Execute: stepConfig},
		{ID: "logging", Title: "initialize logging", Kind: perrors.KindBootstrap, Execute: stepLogging},
		{ID: "session", Title: "initialize session state", Kind: perrors.KindSession, Execute: stepSession},
		{ID: "gateway", Title: "initialize request gateway", Kind: perrors.KindTransport, Execute: stepGateway},
		{ID: "channel", Title: "connect realtime channel", Kind: perrors.KindChannel, Execute: stepChannel},
		{ID: "sync", Title: "bind caches", Kind: perrors.KindBootstrap, Execute: stepSync},
	}
}

// Run wires the client and blocks until the context or a signal stops it.
// The page-load equivalent: seed the caches, bind realtime topics, arm the
// session clock.
func Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state := &appState{}
	if err := initialize(ctx, state); err != nil {
		return err
	}
	defer state.teardown()

	// arming last mirrors page load: everything is wired before the clock
	// can force a logout
	state.clock.Arm()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	return group.Wait()
}

func initialize(ctx context.Context, state *appState) error {
	for _, step := range steps() {
		if err := step.Execute(ctx, state); err != nil {
			return perrors.Wrap(step.Kind, step.ID, fmt.Sprintf("failed to %s", step.Title), err)
		}
		if state.logger != nil {
			state.logger.Debug("bootstrap: %s done", step.ID)
		}
	}
	return nil
}

func stepConfig(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	return nil
}

func stepLogging(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{Level: state.config.Log.Level})
	if err != nil {
		return err
	}
	state.logger = logger
	return nil
}

func stepSession(_ context.Context, state *appState) error {
	state.store = session.NewStore(state.config.Session)
	state.clock = session.NewClock(state.store, state.config.Session, state.logger)

	// logout tears down realtime bindings so no handler outlives the session
	state.clock.OnLogout(func() {
		state.releaseAll()
		if state.channel != nil {
			state.channel.Close()
		}
		state.logger.Info("session ended, realtime bindings released")
	})
	return nil
}

func stepGateway(_ context.Context, state *appState) error {
	state.gateway = api.NewGateway(state.config.API, state.store, state.logger)
	return nil
}

func stepChannel(ctx context.Context, state *appState) error {
	state.channel = channel.New(state.config.Channel, state.logger)
	state.channel.Connect(ctx)
	return nil
}

func stepSync(ctx context.Context, state *appState) error {
	notify := &logNotifier{logger: state.logger}

	state.ledger = appsync.NewLedger(ledger.NewCache(), state.gateway, state.channel, notify, state.logger)
	state.events = appsync.NewEvents(event.NewCache(), event.NewRegistrationCache(), state.gateway, state.channel, notify, state.logger)

	ledgerRelease, err := state.ledger.Bind()
	if err != nil {
		return err
	}
	state.releases = append(state.releases, ledgerRelease)

	eventsRelease, err := state.events.Bind()
	if err != nil {
		return err
	}
	state.releases = append(state.releases, eventsRelease)

	// seeding failures are user messages, not startup failures: the view
	// shows an empty collection until the next refetch succeeds
	if err := state.ledger.Refresh(ctx); err != nil {
		state.logger.Warn("bootstrap: ledger seed failed: %v", err)
	}
	if err := state.events.Refresh(ctx); err != nil {
		state.logger.Warn("bootstrap: events seed failed: %v", err)
	}
	return nil
}

func (s *appState) releaseAll() {
	for _, release := range s.releases {
		release()
	}
	s.releases = nil
}

func (s *appState) teardown() {
	s.releaseAll()
	if s.channel != nil {
		s.channel.Close()
	}
}
