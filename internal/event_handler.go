package internal

import (
	"emsp/ocpi/observer"
	"fmt"
)

// EventLogger writes request, response and command notifications to the log
// and keeps command history in the database when one is attached.
type EventLogger struct {
	logger   LogHandler
	database Database
}

func NewEventLogger(logger LogHandler, database Database) *EventLogger {
	return &EventLogger{
		logger:   OrDiscard(logger),
		database: database,
	}
}

func (e *EventLogger) OnRequest(event *observer.RequestEvent) {
	e.logger.FeatureEvent(event.Method, event.RequestId, fmt.Sprintf("%s correlation=%s", event.Url, event.CorrelationId))
	if len(event.Body) > 0 {
		e.logger.RawDataEvent("OUT", string(event.Body))
	}
}

func (e *EventLogger) OnResponse(event *observer.ResponseEvent) {
	if event.Err != nil {
		e.logger.Warn(fmt.Sprintf("%s %s [%s] failed after %v: %v", event.Method, event.Url, event.RequestId, event.Runtime, event.Err))
		return
	}
	e.logger.FeatureEvent(event.Method, event.RequestId, fmt.Sprintf("%s status %d in %v", event.Url, event.StatusCode, event.Runtime))
	if len(event.Body) > 0 {
		e.logger.RawDataEvent("IN", string(event.Body))
	}
}

func (e *EventLogger) OnCommand(event *observer.CommandEvent) {
	text := fmt.Sprintf("%s %s", event.Stage, event.Result)
	if event.Message != "" {
		text = fmt.Sprintf("%s: %s", text, event.Message)
	}
	e.logger.FeatureEvent(event.CommandType, event.CommandId, text)
	if e.database == nil {
		return
	}
	if err := e.database.WriteCommandEvent(event); err != nil {
		e.logger.Error("write command event to database", err)
	}
}
