// Package mq is the cross-node event bus: a game's events are published on
// a per-game subject so any connector node holding one of the four seats'
// sockets receives the seat-targeted or broadcast frame, even when that
// socket isn't on the node that ran the game's rule engine. Generalized
// from the teacher's framework/node.NatsClient (connect, Subscribe into a
// read channel, Publish from a write channel) — the teacher's handler-route
// indirection (LogicHandler keyed by stream.Message.Route) is dropped since
// this bus carries opaque already-addressed event frames, not RPC-style
// request/response messages.
package mq

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"riichiserver/internal/obs"
)

// Frame is what crosses the bus: one game event, already resolved to its
// wire target ("seat_0".."seat_3" or "all"), JSON-encoded by the publishing
// node and re-decoded as a json.RawMessage by subscribers that forward it
// straight to a WebSocket connection without caring about its Go type.
type Frame struct {
	GameID  string          `json:"game_id"`
	Target  string          `json:"target"`
	WireMsg json.RawMessage `json:"wire_msg"`
}

func subject(gameID string) string { return "game.events." + gameID }

// Bus wraps one *nats.Conn shared by a Publisher and any number of
// Subscriptions.
type Bus struct {
	conn *nats.Conn
}

// Connect dials the NATS server at url. Mirrors the teacher's
// NatsClient.Run, minus its background read/write channel goroutines —
// nats.Conn already dispatches subscription callbacks on their own
// goroutines, so this package has no reason to add another hop.
func Connect(url string) (*Bus, error) {
	conn, err := nats.Connect(url, nats.Name("riichiserver"))
	if err != nil {
		return nil, fmt.Errorf("mq: connect to %s: %w", url, err)
	}
	return &Bus{conn: conn}, nil
}

func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// Publish fans out one event frame for gameID. Marshals the frame and
// publishes it fire-and-forget (no ack) — a node crashing between publish
// and ack would've lost the socket it was pushing to anyway, so NATS's
// at-most-once delivery is already the right failure mode here.
func (b *Bus) Publish(gameID, target string, wireMsg json.RawMessage) error {
	frame := Frame{GameID: gameID, Target: target, WireMsg: wireMsg}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(subject(gameID), data); err != nil {
		obs.Warn("mq: publish failed for game %s: %v", gameID, err)
		return err
	}
	return nil
}

// Subscription is a live subscription to one game's event subject.
type Subscription struct {
	sub *nats.Subscription
}

// Subscribe delivers every Frame published for gameID to handle, on the
// nats client library's own dispatch goroutine (handle must not block
// long, same contract as the teacher's Subscribe callback).
func (b *Bus) Subscribe(gameID string, handle func(Frame)) (*Subscription, error) {
	sub, err := b.conn.Subscribe(subject(gameID), func(msg *nats.Msg) {
		var frame Frame
		if err := json.Unmarshal(msg.Data, &frame); err != nil {
			obs.Warn("mq: dropped malformed frame on %s: %v", msg.Subject, err)
			return
		}
		handle(frame)
	})
	if err != nil {
		return nil, fmt.Errorf("mq: subscribe to %s: %w", subject(gameID), err)
	}
	return &Subscription{sub: sub}, nil
}

// Unsubscribe ends delivery for this subscription.
func (s *Subscription) Unsubscribe() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Unsubscribe()
}
