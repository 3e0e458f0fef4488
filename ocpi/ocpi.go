// Package ocpi is the eMSP side of an OCPI connection to one CPO: version
// discovery, commands with their asynchronous results and the data pulled from
// the CPO modules.
package ocpi

import (
	"context"
	"emsp/internal"
	"emsp/internal/config"
	"emsp/ocpi/client"
	"emsp/ocpi/commands"
	"emsp/ocpi/envelope"
	"emsp/ocpi/observer"
	"emsp/ocpi/options"
	"emsp/ocpi/versions"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidArgument = errors.New("invalid argument")

type OCPI struct {
	executor   client.Executor
	registry   *versions.Registry
	resolver   *versions.Resolver
	store      *commands.Store
	dispatcher *commands.Dispatcher
	observers  *observer.List
	logger     internal.LogHandler
	defaults   options.Call
}

// New wires the OCPI components from the configuration. A nil executor means the
// default http client with the configured token and timeout.
func New(conf *config.Config, executor client.Executor, logger internal.LogHandler, observers *observer.List) *OCPI {
	if executor == nil {
		executor = client.New(conf.Ocpi.Token, client.WithTimeout(conf.Ocpi.RequestTimeout))
	}
	if observers == nil {
		observers = observer.NewList()
	}
	logger = internal.OrDiscard(logger)

	registry := versions.NewRegistry(executor, conf.Ocpi.VersionsUrl, logger, observers)
	resolver := versions.NewResolver(registry, logger)

	store := commands.NewStore(conf.Commands.TTL)
	store.OnExpire(func(pc commands.PendingCommand) {
		event := &observer.CommandEvent{
			CommandId:     pc.CommandId,
			CommandType:   string(pc.Type),
			RequestId:     pc.RequestId,
			CorrelationId: pc.CorrelationId,
			Stage:         observer.StageExpired,
			NoResult:      !pc.HasResult(),
		}
		if pc.HasResult() {
			event.Result = string(pc.Result.Result)
		} else {
			logger.FeatureEvent(string(pc.Type), pc.CommandId, "no result received, entry expired")
		}
		observers.Command(event)
	})
	if conf.Commands.TTL > 0 {
		store.StartReaper(conf.Commands.ReapInterval)
	}

	dispatcher := commands.NewDispatcher(resolver, executor, store, conf.Ocpi.CommandsBaseUrl)
	dispatcher.SetLogger(logger)
	dispatcher.SetObservers(observers)

	return &OCPI{
		executor:   executor,
		registry:   registry,
		resolver:   resolver,
		store:      store,
		dispatcher: dispatcher,
		observers:  observers,
		logger:     logger,
		defaults: options.Call{
			Version: conf.Ocpi.Version,
			Timeout: conf.Ocpi.RequestTimeout,
		},
	}
}

func (o *OCPI) Observers() *observer.List {
	return o.observers
}

func (o *OCPI) Store() *commands.Store {
	return o.store
}

func (o *OCPI) Registry() *versions.Registry {
	return o.registry
}

// Reset drops the discovered versions and endpoints; the next call runs discovery again.
func (o *OCPI) Reset() {
	o.registry.Reset()
}

// Wait blocks until the result of a dispatched command arrives, the entry expires or ctx is done.
func (o *OCPI) Wait(ctx context.Context, commandId string) (*commands.CommandResult, error) {
	return o.store.Wait(ctx, commandId)
}

func (o *OCPI) Close() {
	o.store.Close()
}

func (o *OCPI) call(opts []options.Option) options.Call {
	return options.Normalize(o.defaults, opts...)
}

func (o *OCPI) ReserveNow(ctx context.Context, cmd *commands.ReserveNowCommand, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: reserve now command is nil", ErrInvalidArgument)
	}
	return o.Send(ctx, cmd, opts...)
}

func (o *OCPI) CancelReservation(ctx context.Context, cmd *commands.CancelReservationCommand, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: cancel reservation command is nil", ErrInvalidArgument)
	}
	return o.Send(ctx, cmd, opts...)
}

func (o *OCPI) StartSession(ctx context.Context, cmd *commands.StartSessionCommand, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: start session command is nil", ErrInvalidArgument)
	}
	return o.Send(ctx, cmd, opts...)
}

func (o *OCPI) StopSession(ctx context.Context, cmd *commands.StopSessionCommand, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: stop session command is nil", ErrInvalidArgument)
	}
	return o.Send(ctx, cmd, opts...)
}

func (o *OCPI) UnlockConnector(ctx context.Context, cmd *commands.UnlockConnectorCommand, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: unlock connector command is nil", ErrInvalidArgument)
	}
	return o.Send(ctx, cmd, opts...)
}

// Send dispatches any command; the typed methods above are the usual entry points.
func (o *OCPI) Send(ctx context.Context, cmd commands.Command, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: command is nil", ErrInvalidArgument)
	}
	call := o.call(opts)
	start := time.Now()
	response, err := o.dispatcher.Dispatch(ctx, cmd, call)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	o.logger.FeatureEvent(string(cmd.CommandType()), call.CommandId,
		fmt.Sprintf("%s in %s", response, time.Since(start).Round(time.Millisecond)))
	return response, nil
}
