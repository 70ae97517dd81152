package service

import (
	"errors"
	"time"
)

var (
	ErrUnknownTag      = errors.New("unknown tag")
	ErrInvalidHandover = errors.New("invalid handover log")
)

// Broadcaster pushes typed messages to connected console clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, interface{}) {}

// MultiBroadcaster fans a message out to every non-nil target.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) Broadcast(msgType string, payload interface{}) {
	for _, b := range m {
		if b != nil {
			b.Broadcast(msgType, payload)
		}
	}
}

func orNop(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}

func utcNow() time.Time {
	return time.Now().UTC()
}
