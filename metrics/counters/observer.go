package counters

import "emsp/ocpi/observer"

// Observer feeds the OCPI traffic into the counters. pending, when set, is
// sampled after every command event.
type Observer struct {
	pending func() int
}

func NewObserver(pending func() int) *Observer {
	return &Observer{pending: pending}
}

func (o *Observer) OnRequest(_ *observer.RequestEvent) {}

func (o *Observer) OnResponse(event *observer.ResponseEvent) {
	if event.Err != nil {
		CountRequestError(event.Method)
		return
	}
	ObserveRequest(event.Method, event.StatusCode, event.Runtime)
}

func (o *Observer) OnCommand(event *observer.CommandEvent) {
	switch event.Stage {
	case observer.StageResponse:
		CountDispatched(event.CommandType, event.Result)
	case observer.StageResult:
		CountResult(event.CommandType, event.Result)
	case observer.StageExpired:
		if event.NoResult {
			CountExpired(event.CommandType)
		}
	}
	if o.pending != nil {
		ObservePending(o.pending())
	}
}
