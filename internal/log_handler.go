package internal

type LogHandler interface {
	FeatureEvent(feature, id, text string)
	Debug(text string)
	Warn(text string)
	Error(text string, err error)
	RawDataEvent(direction, data string)
}

type discard struct{}

func (discard) FeatureEvent(_, _, _ string) {}
func (discard) Debug(_ string)              {}
func (discard) Warn(_ string)               {}
func (discard) Error(_ string, _ error)     {}
func (discard) RawDataEvent(_, _ string)    {}

// Discard drops every log line; components fall back to it when no logger is set.
var Discard LogHandler = discard{}

func OrDiscard(log LogHandler) LogHandler {
	if log == nil {
		return Discard
	}
	return log
}
