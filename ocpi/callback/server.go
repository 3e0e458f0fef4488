// Package callback receives the command results the remote party posts to the
// response url and streams command updates to websocket subscribers.
package callback

import (
	"crypto/subtle"
	"emsp/internal"
	"emsp/internal/config"
	"emsp/ocpi/commands"
	"emsp/ocpi/envelope"
	"emsp/ocpi/observer"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const (
	resultEndpoint = "/:version/emsp/:command/:id"
	feedEndpoint   = "/ws/commands"
	maxBodySize    = 64 << 10
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	router     *httprouter.Router
	store      *commands.Store
	observers  *observer.List
	feed       *Feed
	token      string
	logger     internal.LogHandler
}

// NewServer mounts the result route under the path of the commands base url so the
// urls handed out in commands resolve to this server.
func NewServer(conf *config.Config, store *commands.Store, observers *observer.List) (*Server, error) {
	prefix, err := pathPrefix(conf.Ocpi.CommandsBaseUrl)
	if err != nil {
		return nil, err
	}
	s := &Server{
		conf:      conf,
		store:     store,
		observers: observers,
		token:     conf.Ocpi.CallbackToken,
		logger:    internal.Discard,
	}
	s.feed = NewFeed(s.logger)
	s.router = httprouter.New()
	s.router.POST(prefix+resultEndpoint, s.handleResult)
	s.router.GET(feedEndpoint, s.feed.handleWsRequest)
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port),
		Handler: s.router,
	}
	return s, nil
}

func (s *Server) SetLogger(logger internal.LogHandler) {
	s.logger = internal.OrDiscard(logger)
	s.feed.logger = s.logger
}

// Feed is the websocket broadcaster; add it to the observer list to stream updates.
func (s *Server) Feed() *Feed {
	return s.feed
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	if s.conf.Listen.TLS {
		s.logger.Debug(fmt.Sprintf("starting https callback server on %s", s.httpServer.Addr))
		return s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	}
	s.logger.Debug(fmt.Sprintf("starting http callback server on %s", s.httpServer.Addr))
	return s.httpServer.Serve(listener)
}

func (s *Server) Close() error {
	s.feed.Close()
	return s.httpServer.Close()
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	commandId := params.ByName("id")
	if !s.authorized(r) {
		s.logger.Warn(fmt.Sprintf("callback: unauthorized result for %s from %s", commandId, r.RemoteAddr))
		s.reply(w, http.StatusUnauthorized, envelope.StatusClientError, "invalid or missing token")
		return
	}
	commandType, ok := commands.ParseType(params.ByName("command"))
	if !ok {
		s.logger.Warn(fmt.Sprintf("callback: unknown command %s from %s", params.ByName("command"), r.RemoteAddr))
		s.reply(w, http.StatusNotFound, envelope.StatusClientError, "unknown command type")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.reply(w, http.StatusBadRequest, envelope.StatusClientError, "unable to read body")
		return
	}
	s.logger.RawDataEvent("IN", string(body))
	var result commands.CommandResult
	if err = json.Unmarshal(body, &result); err != nil || result.Result == "" {
		s.logger.Warn(fmt.Sprintf("callback: invalid %s result for %s: %s", commandType, commandId, string(body)))
		s.reply(w, http.StatusBadRequest, envelope.StatusInvalidParameters, "invalid command result")
		return
	}

	pc, recorded := s.store.RecordResult(commandId, commandType, &result)
	if !recorded {
		s.logger.FeatureEvent(string(commandType), commandId, "duplicate result ignored")
		s.reply(w, http.StatusOK, envelope.StatusSuccess, "")
		return
	}
	s.observers.Command(&observer.CommandEvent{
		CommandId:     commandId,
		CommandType:   string(commandType),
		RequestId:     pc.RequestId,
		CorrelationId: pc.CorrelationId,
		Stage:         observer.StageResult,
		Result:        string(result.Result),
		Message:       result.Text(),
	})
	s.reply(w, http.StatusOK, envelope.StatusSuccess, "")
}

func (s *Server) authorized(r *http.Request) bool {
	if s.token == "" {
		return true
	}
	given := strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")
	return subtle.ConstantTimeCompare([]byte(given), []byte(s.token)) == 1
}

func (s *Server) reply(w http.ResponseWriter, httpStatus, ocpiStatus int, message string) {
	if err := envelope.Write[any](w, httpStatus, envelope.NewWire[any](nil, ocpiStatus, message)); err != nil {
		s.logger.Error("callback: writing response", err)
	}
}

func pathPrefix(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("commands base url: %w", err)
	}
	prefix := strings.TrimRight(u.Path, "/")
	if prefix == "" || strings.HasPrefix(prefix, feedEndpoint) {
		return "", fmt.Errorf("commands base url %q needs a path of its own", base)
	}
	return prefix, nil
}
