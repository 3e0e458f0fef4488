package commands

import (
	"emsp/entity/common"
	"strings"
)

// ResponseType is the immediate answer of the remote party to a posted command.
type ResponseType string

const (
	ResponseAccepted            ResponseType = "ACCEPTED"
	ResponseCanceledReservation ResponseType = "CANCELED_RESERVATION"
	ResponseNotSupported        ResponseType = "NOT_SUPPORTED"
	ResponseRejected            ResponseType = "REJECTED"
	ResponseUnknownSession      ResponseType = "UNKNOWN_SESSION"
)

type CommandResponse struct {
	Result  ResponseType         `json:"result"`
	Timeout int                  `json:"timeout"`
	Message []common.DisplayText `json:"message,omitempty"`
}

// ResultType is the final outcome reported to the response url.
type ResultType string

const (
	ResultAccepted            ResultType = "ACCEPTED"
	ResultCanceledReservation ResultType = "CANCELED_RESERVATION"
	ResultEvseOccupied        ResultType = "EVSE_OCCUPIED"
	ResultEvseInoperative     ResultType = "EVSE_INOPERATIVE"
	ResultFailed              ResultType = "FAILED"
	ResultNotSupported        ResultType = "NOT_SUPPORTED"
	ResultRejected            ResultType = "REJECTED"
	ResultTimeout             ResultType = "TIMEOUT"
	ResultUnknownReservation  ResultType = "UNKNOWN_RESERVATION"
)

type CommandResult struct {
	Result  ResultType           `json:"result"`
	Message []common.DisplayText `json:"message,omitempty"`
}

func (r *CommandResult) Text() string {
	return joinText(r.Message)
}

func joinText(message []common.DisplayText) string {
	parts := make([]string, 0, len(message))
	for _, m := range message {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}
