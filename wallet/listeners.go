package wallet

import (
	"github.com/hannahhoward/go-pubsub"
	"golang.org/x/xerrors"
)

type connListeners struct {
	ps *pubsub.PubSub
}

type connSubscriberFn func(ConnectionEvent)

func newConnListeners() *connListeners {
	ps := pubsub.New(func(event pubsub.Event, subFn pubsub.SubscriberFn) error {
		evt, ok := event.(ConnectionEvent)
		if !ok {
			return xerrors.Errorf("wrong type of event")
		}
		sub, ok := subFn.(connSubscriberFn)
		if !ok {
			return xerrors.Errorf("wrong type of subscriber")
		}
		sub(evt)
		return nil
	})
	return &connListeners{ps: ps}
}

func (cl *connListeners) subscribe(cb func(ConnectionEvent)) Unsubscribe {
	return cl.ps.Subscribe(connSubscriberFn(cb))
}

func (cl *connListeners) fire(evt ConnectionEvent) {
	if err := cl.ps.Publish(evt); err != nil {
		log.Errorf("unexpected error publishing connection update: %s", err)
	}
}
