package commands

import (
	"emsp/entity/token"
	"encoding/json"
	"fmt"
	"time"
)

type Type string

const (
	CancelReservation Type = "CANCEL_RESERVATION"
	ReserveNow        Type = "RESERVE_NOW"
	StartSession      Type = "START_SESSION"
	StopSession       Type = "STOP_SESSION"
	UnlockConnector   Type = "UNLOCK_CONNECTOR"
)

// Command is the body posted to the remote commands endpoint.
type Command interface {
	CommandType() Type
	SetResponseUrl(url string)
	Validate() error
}

type ReserveNowCommand struct {
	ResponseUrl            string      `json:"response_url"`
	Token                  token.Token `json:"token"`
	ExpiryDate             time.Time   `json:"expiry_date"`
	ReservationId          string      `json:"reservation_id"`
	LocationId             string      `json:"location_id"`
	EvseUid                string      `json:"evse_uid,omitempty"`
	AuthorizationReference string      `json:"authorization_reference,omitempty"`
}

func NewReserveNow(tok token.Token, expiry time.Time, reservationId, locationId string) *ReserveNowCommand {
	return &ReserveNowCommand{
		Token:         tok,
		ExpiryDate:    expiry.UTC(),
		ReservationId: reservationId,
		LocationId:    locationId,
	}
}

func (c *ReserveNowCommand) CommandType() Type         { return ReserveNow }
func (c *ReserveNowCommand) SetResponseUrl(url string) { c.ResponseUrl = url }

func (c *ReserveNowCommand) Validate() error {
	switch {
	case c.Token.Uid == "":
		return fmt.Errorf("token uid is required")
	case c.ExpiryDate.IsZero():
		return fmt.Errorf("expiry date is required")
	case c.ReservationId == "":
		return fmt.Errorf("reservation id is required")
	case c.LocationId == "":
		return fmt.Errorf("location id is required")
	}
	return nil
}

type CancelReservationCommand struct {
	ResponseUrl   string `json:"response_url"`
	ReservationId string `json:"reservation_id"`
}

func NewCancelReservation(reservationId string) *CancelReservationCommand {
	return &CancelReservationCommand{ReservationId: reservationId}
}

func (c *CancelReservationCommand) CommandType() Type         { return CancelReservation }
func (c *CancelReservationCommand) SetResponseUrl(url string) { c.ResponseUrl = url }

func (c *CancelReservationCommand) Validate() error {
	if c.ReservationId == "" {
		return fmt.Errorf("reservation id is required")
	}
	return nil
}

type StartSessionCommand struct {
	ResponseUrl            string      `json:"response_url"`
	Token                  token.Token `json:"token"`
	LocationId             string      `json:"location_id"`
	EvseUid                string      `json:"evse_uid,omitempty"`
	ConnectorId            string      `json:"connector_id,omitempty"`
	AuthorizationReference string      `json:"authorization_reference,omitempty"`
}

func NewStartSession(tok token.Token, locationId, evseUid, connectorId string) *StartSessionCommand {
	return &StartSessionCommand{
		Token:       tok,
		LocationId:  locationId,
		EvseUid:     evseUid,
		ConnectorId: connectorId,
	}
}

func (c *StartSessionCommand) CommandType() Type         { return StartSession }
func (c *StartSessionCommand) SetResponseUrl(url string) { c.ResponseUrl = url }

func (c *StartSessionCommand) Validate() error {
	switch {
	case c.Token.Uid == "":
		return fmt.Errorf("token uid is required")
	case c.LocationId == "":
		return fmt.Errorf("location id is required")
	case c.ConnectorId != "" && c.EvseUid == "":
		return fmt.Errorf("evse uid is required when connector id is set")
	}
	return nil
}

type StopSessionCommand struct {
	ResponseUrl string `json:"response_url"`
	SessionId   string `json:"session_id"`
}

func NewStopSession(sessionId string) *StopSessionCommand {
	return &StopSessionCommand{SessionId: sessionId}
}

func (c *StopSessionCommand) CommandType() Type         { return StopSession }
func (c *StopSessionCommand) SetResponseUrl(url string) { c.ResponseUrl = url }

func (c *StopSessionCommand) Validate() error {
	if c.SessionId == "" {
		return fmt.Errorf("session id is required")
	}
	return nil
}

type UnlockConnectorCommand struct {
	ResponseUrl string `json:"response_url"`
	LocationId  string `json:"location_id"`
	EvseUid     string `json:"evse_uid"`
	ConnectorId string `json:"connector_id"`
}

func NewUnlockConnector(locationId, evseUid, connectorId string) *UnlockConnectorCommand {
	return &UnlockConnectorCommand{
		LocationId:  locationId,
		EvseUid:     evseUid,
		ConnectorId: connectorId,
	}
}

func (c *UnlockConnectorCommand) CommandType() Type         { return UnlockConnector }
func (c *UnlockConnectorCommand) SetResponseUrl(url string) { c.ResponseUrl = url }

func (c *UnlockConnectorCommand) Validate() error {
	switch {
	case c.LocationId == "":
		return fmt.Errorf("location id is required")
	case c.EvseUid == "":
		return fmt.Errorf("evse uid is required")
	case c.ConnectorId == "":
		return fmt.Errorf("connector id is required")
	}
	return nil
}

// ParseCommand decodes a command body the way the receiving party does.
func ParseCommand(commandType Type, data []byte) (Command, error) {
	var cmd Command
	switch commandType {
	case ReserveNow:
		cmd = &ReserveNowCommand{}
	case CancelReservation:
		cmd = &CancelReservationCommand{}
	case StartSession:
		cmd = &StartSessionCommand{}
	case StopSession:
		cmd = &StopSessionCommand{}
	case UnlockConnector:
		cmd = &UnlockConnectorCommand{}
	default:
		return nil, fmt.Errorf("unknown command type %q", commandType)
	}
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", commandType, err)
	}
	return cmd, nil
}

func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case ReserveNow, CancelReservation, StartSession, StopSession, UnlockConnector:
		return t, true
	}
	return "", false
}
