package internal

import "emsp/ocpi/observer"

type Database interface {
	WriteLogMessage(data Data) error
	WriteCommandEvent(event *observer.CommandEvent) error
	ReadCommandEvents(commandId string) ([]*observer.CommandEvent, error)
}

type Data interface {
	DataType() string
}
