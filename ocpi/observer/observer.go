// Package observer carries request, response and command notifications to an
// ordered list of listeners. Listeners run synchronously on the calling goroutine
// in the order they were added, so they should hand off slow work themselves.
package observer

import (
	"sync"
	"time"
)

type Stage string

const (
	StageRegistered Stage = "registered"
	StageResponse   Stage = "response"
	StageResult     Stage = "result"
	StageExpired    Stage = "expired"
)

type RequestEvent struct {
	Method        string
	Url           string
	RequestId     string
	CorrelationId string
	Body          []byte
	Time          time.Time
}

type ResponseEvent struct {
	Method        string
	Url           string
	RequestId     string
	CorrelationId string
	StatusCode    int
	Body          []byte
	Err           error
	Runtime       time.Duration
}

// CommandEvent describes a state change of a pending command.
type CommandEvent struct {
	CommandId     string    `json:"command_id" bson:"command_id"`
	CommandType   string    `json:"command_type" bson:"command_type"`
	RequestId     string    `json:"request_id,omitempty" bson:"request_id,omitempty"`
	CorrelationId string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Stage         Stage     `json:"stage" bson:"stage"`
	Result        string    `json:"result,omitempty" bson:"result,omitempty"`
	NoResult      bool      `json:"no_result,omitempty" bson:"no_result,omitempty"`
	Message       string    `json:"message,omitempty" bson:"message,omitempty"`
	Time          time.Time `json:"time" bson:"time"`
}

func (e *CommandEvent) DataType() string {
	return "commandEvent"
}

type Observer interface {
	OnRequest(event *RequestEvent)
	OnResponse(event *ResponseEvent)
	OnCommand(event *CommandEvent)
}

// List is safe for concurrent use; a nil List notifies nobody.
type List struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewList(observers ...Observer) *List {
	l := &List{}
	for _, o := range observers {
		l.Add(o)
	}
	return l
}

func (l *List) Add(o Observer) {
	if o == nil {
		return
	}
	l.mu.Lock()
	l.observers = append(l.observers, o)
	l.mu.Unlock()
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.observers)
}

func (l *List) snapshot() []Observer {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Observer(nil), l.observers...)
}

func (l *List) Request(event *RequestEvent) {
	for _, o := range l.snapshot() {
		o.OnRequest(event)
	}
}

func (l *List) Response(event *ResponseEvent) {
	for _, o := range l.snapshot() {
		o.OnResponse(event)
	}
}

func (l *List) Command(event *CommandEvent) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	for _, o := range l.snapshot() {
		o.OnCommand(event)
	}
}

// Funcs adapts plain functions to Observer; nil fields are skipped.
type Funcs struct {
	Request  func(event *RequestEvent)
	Response func(event *ResponseEvent)
	Command  func(event *CommandEvent)
}

func (f Funcs) OnRequest(event *RequestEvent) {
	if f.Request != nil {
		f.Request(event)
	}
}

func (f Funcs) OnResponse(event *ResponseEvent) {
	if f.Response != nil {
		f.Response(event)
	}
}

func (f Funcs) OnCommand(event *CommandEvent) {
	if f.Command != nil {
		f.Command(event)
	}
}
