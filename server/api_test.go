package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"emsp/internal"
	"emsp/internal/config"
	"emsp/ocpi/commands"
	"emsp/ocpi/envelope"
	"emsp/ocpi/observer"
	"emsp/ocpi/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	store    *commands.Store
	mu       sync.Mutex
	sent     []commands.Command
	calls    []options.Call
	response *envelope.Response[commands.CommandResponse]
	result   *commands.CommandResult
	waited   string
}

func (f *fakeSender) Send(_ context.Context, cmd commands.Command, opts ...options.Option) (*envelope.Response[commands.CommandResponse], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	f.calls = append(f.calls, options.Normalize(options.Call{}, opts...))
	return f.response, nil
}

func (f *fakeSender) Wait(_ context.Context, commandId string) (*commands.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waited = commandId
	return f.result, nil
}

func (f *fakeSender) Store() *commands.Store {
	if f.store == nil {
		f.store = commands.NewStore(0)
	}
	return f.store
}

type historyDatabase struct {
	events []*observer.CommandEvent
}

func (d *historyDatabase) WriteLogMessage(_ internal.Data) error { return nil }

func (d *historyDatabase) WriteCommandEvent(event *observer.CommandEvent) error {
	d.events = append(d.events, event)
	return nil
}

func (d *historyDatabase) ReadCommandEvents(commandId string) ([]*observer.CommandEvent, error) {
	var out []*observer.CommandEvent
	for _, e := range d.events {
		if e.CommandId == commandId {
			out = append(out, e)
		}
	}
	return out, nil
}

func accepted() *envelope.Response[commands.CommandResponse] {
	return &envelope.Response[commands.CommandResponse]{
		StatusCode:     http.StatusOK,
		OcpiStatusCode: envelope.StatusSuccess,
		Data:           commands.CommandResponse{Result: commands.ResponseAccepted, Timeout: 30},
	}
}

func newApi(sender Sender) *Api {
	conf := &config.Config{}
	conf.Api.WaitTimeout = 10 * time.Second
	return NewServerApi(conf, sender, nil)
}

func post(api *Api, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.handleRoot(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestApi_SendsCommand(t *testing.T) {
	sender := &fakeSender{response: accepted()}
	api := newApi(sender)

	rec := post(api, apiEndpoint, `{"command":"STOP_SESSION","payload":{"session_id":"S1"},"version":"2.1.1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var answer apiAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.NotEmpty(t, answer.CommandId)
	assert.Equal(t, commands.ResponseAccepted, answer.Response.Data.Result)
	assert.Nil(t, answer.Result)

	require.Len(t, sender.sent, 1)
	stop, ok := sender.sent[0].(*commands.StopSessionCommand)
	require.True(t, ok)
	assert.Equal(t, "S1", stop.SessionId)
	assert.Equal(t, "2.1.1", sender.calls[0].Version)
	assert.Equal(t, answer.CommandId, sender.calls[0].CommandId)
	assert.Empty(t, sender.waited)
}

func TestApi_WaitsForResult(t *testing.T) {
	sender := &fakeSender{response: accepted(), result: &commands.CommandResult{Result: commands.ResultAccepted}}
	api := newApi(sender)

	rec := post(api, apiEndpoint, `{"command":"UNLOCK_CONNECTOR","payload":{"location_id":"L1","evse_uid":"E1","connector_id":"1"},"wait":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var answer apiAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	require.NotNil(t, answer.Result)
	assert.Equal(t, commands.ResultAccepted, answer.Result.Result)
	assert.Equal(t, answer.CommandId, sender.waited)
}

func TestApi_NoWaitWhenRejected(t *testing.T) {
	response := accepted()
	response.Data.Result = commands.ResponseRejected
	sender := &fakeSender{response: response, result: &commands.CommandResult{Result: commands.ResultAccepted}}
	api := newApi(sender)

	rec := post(api, apiEndpoint, `{"command":"STOP_SESSION","payload":{"session_id":"S1"},"wait":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.waited)
}

func TestApi_BadRequests(t *testing.T) {
	api := newApi(&fakeSender{response: accepted()})

	assert.Equal(t, http.StatusNotFound, post(api, "/other", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(api, apiEndpoint, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(api, apiEndpoint, `{"command":"REBOOT"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(api, apiEndpoint, `{"command":"STOP_SESSION","payload":"x"}`).Code)

	rec := httptest.NewRecorder()
	api.handleRoot(rec, httptest.NewRequest(http.MethodGet, apiEndpoint, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestApi_WaitTimeout(t *testing.T) {
	api := newApi(&fakeSender{})
	assert.Equal(t, 10*time.Second, api.waitTimeout(0))
	assert.Equal(t, 3*time.Second, api.waitTimeout(3))
	assert.Equal(t, 10*time.Second, api.waitTimeout(60))
}

func get(api *Api, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.handleRoot(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestApi_CommandState(t *testing.T) {
	sender := &fakeSender{}
	sender.Store().Upsert("cmd-1", func() *commands.PendingCommand {
		return &commands.PendingCommand{Type: commands.StopSession, Response: accepted()}
	}, nil)
	sender.Store().RecordResult("cmd-1", commands.StopSession, &commands.CommandResult{Result: commands.ResultAccepted})
	db := &historyDatabase{}
	require.NoError(t, db.WriteCommandEvent(&observer.CommandEvent{CommandId: "cmd-1", Stage: observer.StageRegistered}))
	require.NoError(t, db.WriteCommandEvent(&observer.CommandEvent{CommandId: "cmd-1", Stage: observer.StageResult}))
	api := newApi(sender)
	api.SetDatabase(db)

	rec := get(api, commandEndpoint+"cmd-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var state commandState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, commands.StopSession, state.Type)
	assert.False(t, state.Pending)
	require.NotNil(t, state.Result)
	assert.Equal(t, commands.ResultAccepted, state.Result.Result)
	assert.NotNil(t, state.ResultAt)
	assert.Len(t, state.History, 2)
}

func TestApi_CommandStateUnknown(t *testing.T) {
	api := newApi(&fakeSender{})
	assert.Equal(t, http.StatusNotFound, get(api, commandEndpoint+"missing").Code)
	assert.Equal(t, http.StatusNotFound, get(api, commandEndpoint).Code)
}
