package server

import (
	"context"
	"crypto/tls"
	"emsp/internal"
	"emsp/internal/config"
	"emsp/ocpi/commands"
	"emsp/ocpi/envelope"
	"emsp/ocpi/observer"
	"emsp/ocpi/options"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiEndpoint     = "/api"
	commandEndpoint = "/api/commands/"
	maxApiBody      = 64 << 10
)

// Sender is the part of the OCPI client the api needs.
type Sender interface {
	Send(ctx context.Context, cmd commands.Command, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error)
	Wait(ctx context.Context, commandId string) (*commands.CommandResult, error)
	Store() *commands.Store
}

// Api lets operators issue commands over plain http and optionally wait for the result.
type Api struct {
	conf       *config.Config
	httpServer *http.Server
	sender     Sender
	database   internal.Database
	logger     internal.LogHandler
}

type apiCommand struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload"`
	Version string          `json:"version,omitempty"`
	Wait    bool            `json:"wait,omitempty"`
}

type apiAnswer struct {
	CommandId string                                       `json:"command_id"`
	Response  *envelope.Response[commands.CommandResponse] `json:"response"`
	Result    *commands.CommandResult                      `json:"result,omitempty"`
}

type commandState struct {
	CommandId string                                       `json:"command_id"`
	Type      commands.Type                                `json:"type,omitempty"`
	Pending   bool                                         `json:"pending"`
	Response  *envelope.Response[commands.CommandResponse] `json:"response,omitempty"`
	Result    *commands.CommandResult                      `json:"result,omitempty"`
	Created   *time.Time                                   `json:"created,omitempty"`
	ResultAt  *time.Time                                   `json:"result_at,omitempty"`
	History   []*observer.CommandEvent                     `json:"history,omitempty"`
}

func NewServerApi(conf *config.Config, sender Sender, logger internal.LogHandler) *Api {
	server := Api{
		conf:   conf,
		sender: sender,
		logger: internal.OrDiscard(logger),
	}
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: http.HandlerFunc(server.handleRoot),
	}
	return &server
}

// SetDatabase attach database service for command history
func (s *Api) SetDatabase(database internal.Database) {
	s.database = database
}

func (s *Api) Start() error {
	if !s.conf.Api.TLS {
		return s.httpServer.ListenAndServe()
	}
	cert, err := tls.LoadX509KeyPair(s.conf.Api.CertFile, s.conf.Api.KeyFile)
	if err != nil {
		return fmt.Errorf("api: failed to load certificate: %v", err)
	}
	s.httpServer.TLSConfig = &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}
	return s.httpServer.ListenAndServeTLS("", "")
}

func (s *Api) Close() error {
	return s.httpServer.Close()
}

// handle requests to the root path
func (s *Api) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, commandEndpoint) {
		s.handleCommandState(w, r, strings.TrimPrefix(r.URL.Path, commandEndpoint))
		return
	}
	if r.Method != http.MethodPost {
		s.logger.Warn(fmt.Sprintf("api: invalid method %s from %s", r.Method, r.RemoteAddr))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != apiEndpoint {
		s.logger.Warn(fmt.Sprintf("api: invalid path %s from %s", r.URL.Path, r.RemoteAddr))
		w.WriteHeader(http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxApiBody))
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: error reading body from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var request apiCommand
	if err = json.Unmarshal(body, &request); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing command from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	commandType, ok := commands.ParseType(request.Command)
	if !ok {
		s.logger.Warn(fmt.Sprintf("api: unsupported command %q from %s", request.Command, r.RemoteAddr))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	cmd, err := commands.ParseCommand(commandType, request.Payload)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing %s payload from %s: %s", commandType, r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	answer := apiAnswer{CommandId: uuid.NewString()}
	answer.Response, err = s.sender.Send(r.Context(), cmd,
		options.WithCommandId(answer.CommandId),
		options.WithVersion(request.Version))
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: %s rejected: %s", commandType, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if request.Wait && answer.Response.IsSuccess() && answer.Response.Data.Result == commands.ResponseAccepted {
		ctx, cancel := context.WithTimeout(r.Context(), s.waitTimeout(answer.Response.Data.Timeout))
		answer.Result, err = s.sender.Wait(ctx, answer.CommandId)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn(fmt.Sprintf("api: waiting for %s %s: %s", commandType, answer.CommandId, err))
		}
	}

	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if err = json.NewEncoder(w).Encode(answer); err != nil {
		s.logger.Error("api: command send response", err)
	}
}

// handleCommandState reports what the store knows about a command, plus its
// stored history when a database is attached.
func (s *Api) handleCommandState(w http.ResponseWriter, r *http.Request, commandId string) {
	if commandId == "" || strings.Contains(commandId, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	state := commandState{CommandId: commandId}
	if pc, ok := s.sender.Store().TryGet(commandId); ok {
		state.Pending = !pc.HasResult()
		state.Type = pc.Type
		state.Response = pc.Response
		state.Result = pc.Result
		state.Created = &pc.Created
		if pc.HasResult() {
			state.ResultAt = &pc.ResultAt
		}
	}
	if s.database != nil {
		history, err := s.database.ReadCommandEvents(commandId)
		if err != nil {
			s.logger.Error(fmt.Sprintf("api: reading history of %s", commandId), err)
		}
		state.History = history
	}
	if state.Created == nil && len(state.History) == 0 {
		s.logger.Warn(fmt.Sprintf("api: unknown command %s requested from %s", commandId, r.RemoteAddr))
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		s.logger.Error("api: command state response", err)
	}
}

// waitTimeout is the configured wait, shortened to the timeout the CPO announced.
func (s *Api) waitTimeout(announced int) time.Duration {
	wait := s.conf.Api.WaitTimeout
	if announced > 0 && time.Duration(announced)*time.Second < wait {
		wait = time.Duration(announced) * time.Second
	}
	return wait
}
