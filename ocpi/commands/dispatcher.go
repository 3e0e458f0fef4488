// Package commands sends OCPI commands to the remote party and correlates the
// asynchronous results posted back to the callback url with the original request.
package commands

import (
	"context"
	"emsp/internal"
	"emsp/ocpi/client"
	"emsp/ocpi/envelope"
	"emsp/ocpi/observer"
	"emsp/ocpi/options"
	"emsp/ocpi/versions"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrInvalidCommand = errors.New("invalid command")

type Dispatcher struct {
	resolver     *versions.Resolver
	executor     client.Executor
	store        *Store
	observers    *observer.List
	logger       internal.LogHandler
	callbackBase string
}

func NewDispatcher(resolver *versions.Resolver, executor client.Executor, store *Store, callbackBase string) *Dispatcher {
	return &Dispatcher{
		resolver:     resolver,
		executor:     executor,
		store:        store,
		logger:       internal.Discard,
		callbackBase: strings.TrimRight(callbackBase, "/"),
	}
}

func (d *Dispatcher) SetLogger(logger internal.LogHandler) {
	d.logger = internal.OrDiscard(logger)
}

func (d *Dispatcher) SetObservers(observers *observer.List) {
	d.observers = observers
}

func (d *Dispatcher) Store() *Store {
	return d.store
}

// CallbackUrl is where the remote party posts the final result of a command.
func CallbackUrl(base, version string, commandType Type, commandId string) string {
	return fmt.Sprintf("%s/%s/emsp/%s%s", strings.TrimRight(base, "/"), version, callbackToken(commandType), commandId)
}

func callbackToken(commandType Type) string {
	return string(commandType) + "/"
}

// Dispatch posts cmd to the remote commands endpoint. The pending entry is stored
// before the request goes out and is kept whatever happens to the request. Every
// failure after argument validation comes back as an envelope with status -1; the
// error return is reserved for invalid arguments.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command, call options.Call) (*envelope.Response[CommandResponse], error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: command is nil", ErrInvalidCommand)
	}
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, cmd.CommandType(), err)
	}
	if call.CommandId == "" {
		return nil, fmt.Errorf("%w: %s: command id is empty", ErrInvalidCommand, cmd.CommandType())
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return d.dispatch(ctx, cmd, call), nil
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd Command, call options.Call) (result *envelope.Response[CommandResponse]) {
	commandType := cmd.CommandType()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(fmt.Sprintf("%s %s", commandType, call.CommandId), fmt.Errorf("panic: %v", r))
			result = envelope.Failure[CommandResponse](call.RequestId, call.CorrelationId, fmt.Sprintf("%v", r), "panic")
		}
	}()

	resolved, ok, err := d.resolver.Resolve(ctx, call.Version, versions.Commands, versions.Receiver)
	if err != nil {
		d.logger.Warn(fmt.Sprintf("%s %s: %v", commandType, call.CommandId, err))
		return envelope.FromError[CommandResponse](call.RequestId, call.CorrelationId, err)
	}
	if !ok {
		d.logger.FeatureEvent(string(commandType), call.CommandId, envelope.MessageNoRemoteUrl)
		return envelope.NoRemoteUrl[CommandResponse](call.RequestId, call.CorrelationId)
	}

	cmd.SetResponseUrl(CallbackUrl(d.callbackBase, resolved.Version, commandType, call.CommandId))
	body, err := json.Marshal(cmd)
	if err != nil {
		return envelope.FromError[CommandResponse](call.RequestId, call.CorrelationId, fmt.Errorf("encoding %s: %w", commandType, err))
	}

	d.register(cmd, call)

	response := d.send(ctx, strings.TrimRight(resolved.Url, "/")+"/"+string(commandType), body, call)
	d.store.SetResponse(call.CommandId, response)

	event := &observer.CommandEvent{
		CommandId:     call.CommandId,
		CommandType:   string(commandType),
		RequestId:     call.RequestId,
		CorrelationId: call.CorrelationId,
		Stage:         observer.StageResponse,
		Result:        string(response.Data.Result),
		Message:       response.Message,
	}
	if !response.IsSuccess() && event.Result == "" {
		event.Result = fmt.Sprintf("status %d", response.StatusCode)
	}
	d.observers.Command(event)
	return response
}

func (d *Dispatcher) register(cmd Command, call options.Call) {
	d.store.Upsert(call.CommandId,
		func() *PendingCommand {
			return &PendingCommand{
				RequestId:     call.RequestId,
				CorrelationId: call.CorrelationId,
				Type:          cmd.CommandType(),
				Command:       cmd,
			}
		},
		func(existing *PendingCommand) {
			existing.RequestId = call.RequestId
			existing.CorrelationId = call.CorrelationId
			existing.Type = cmd.CommandType()
			existing.Command = cmd
		},
	)
	d.observers.Command(&observer.CommandEvent{
		CommandId:     call.CommandId,
		CommandType:   string(cmd.CommandType()),
		RequestId:     call.RequestId,
		CorrelationId: call.CorrelationId,
		Stage:         observer.StageRegistered,
	})
}

func (d *Dispatcher) send(ctx context.Context, url string, body []byte, call options.Call) *envelope.Response[CommandResponse] {
	req := &client.Request{
		Method:  http.MethodPost,
		Url:     url,
		Body:    body,
		Timeout: call.Timeout,
	}
	response, err := envelope.Exchange[CommandResponse](ctx, d.executor, d.observers, req, call.RequestId, call.CorrelationId)
	if err != nil {
		return envelope.FromError[CommandResponse](call.RequestId, call.CorrelationId, err)
	}
	return response
}
