// Package bridge ships guarded scripts to the addon living inside the host
// 3D application and returns the evaluation outcome. The daemon never
// evaluates generated code itself.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"sync"

	"github.com/google/uuid"
)

// Message is one JSON frame on the bridge socket. The daemon sends kind
// "exec" or "ping"; the host addon answers with "result" or "pong" carrying
// the same ID.
type Message struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Code   string `json:"code,omitempty"`
	OK     bool   `json:"ok,omitempty"`
	Output string `json:"output,omitempty"`
}

const (
	KindExec   = "exec"
	KindPing   = "ping"
	KindResult = "result"
	KindPong   = "pong"
)

// Config configures a bridge connection.
type Config struct {
	URL              string
	ReconnectSeconds uint
}

// Bridge is a request/reply client over a single websocket. Replies are
// matched to requests by message ID, so commands may overlap.
type Bridge struct {
	conn *conn

	waiterMu sync.Mutex
	waiters  map[string]chan *Message

	closed chan struct{}
}

// Dial connects to the host addon. Call Run in a goroutine afterwards to
// start the read loop.
func Dial(cfg Config) (*Bridge, error) {
	if cfg.ReconnectSeconds == 0 {
		cfg.ReconnectSeconds = 3
	}
	c, err := dial(cfg.URL, cfg.ReconnectSeconds)
	if err != nil {
		return nil, fmt.Errorf("bridge: dial %q: %w", cfg.URL, err)
	}
	return &Bridge{
		conn:    c,
		waiters: make(map[string]chan *Message),
		closed:  make(chan struct{}),
	}, nil
}

// Run reads frames until Close, reconnecting when the host goes away.
func (b *Bridge) Run() {
	for {
		select {
		case <-b.closed:
			return
		default:
		}

		in := b.conn.read()
		switch in.kind {
		case connClose:
			select {
			case <-b.closed:
				return
			default:
			}
			log.Warn("host bridge closed, reconnecting", "url", b.conn.url)
			b.conn.tryReconn()
			log.Info("host bridge reconnected")

		case readFailure:
			select {
			case <-b.closed:
				return
			default:
			}
			log.Error("bridge read failed", "err", in.err)

		case readOK:
			var msg Message
			if err := json.Unmarshal(in.msg, &msg); err != nil {
				log.Warn("malformed bridge frame", "err", err)
				continue
			}
			b.deliver(&msg)
		}
	}
}

func (b *Bridge) deliver(msg *Message) {
	b.waiterMu.Lock()
	w, ok := b.waiters[msg.ID]
	if ok {
		delete(b.waiters, msg.ID)
	}
	b.waiterMu.Unlock()

	if !ok {
		log.Warn("bridge reply without waiter", "id", msg.ID, "kind", msg.Kind)
		return
	}
	w <- msg
}

func (b *Bridge) installWaiter(id string) chan *Message {
	w := make(chan *Message, 1)
	b.waiterMu.Lock()
	b.waiters[id] = w
	b.waiterMu.Unlock()
	return w
}

func (b *Bridge) clearWaiter(id string) {
	b.waiterMu.Lock()
	delete(b.waiters, id)
	b.waiterMu.Unlock()
}

func (b *Bridge) roundTrip(ctx context.Context, msg Message) (*Message, error) {
	msg.ID = uuid.NewString()
	w := b.installWaiter(msg.ID)

	data, err := json.Marshal(msg)
	if err != nil {
		b.clearWaiter(msg.ID)
		return nil, fmt.Errorf("bridge: marshal: %w", err)
	}
	if err := b.conn.write(data); err != nil {
		b.clearWaiter(msg.ID)
		return nil, fmt.Errorf("bridge: write: %w", err)
	}

	select {
	case reply := <-w:
		return reply, nil
	case <-ctx.Done():
		b.clearWaiter(msg.ID)
		return nil, fmt.Errorf("bridge: %w", ctx.Err())
	case <-b.closed:
		b.clearWaiter(msg.ID)
		return nil, errors.New("bridge: closed")
	}
}

// Execute sends code to the host for evaluation and returns its output.
// A host-side evaluation error comes back as a normal error; any side effects
// the script performed before failing are not rolled back.
func (b *Bridge) Execute(ctx context.Context, code string) (string, error) {
	reply, err := b.roundTrip(ctx, Message{Kind: KindExec, Code: code})
	if err != nil {
		return "", err
	}
	if reply.Kind != KindResult {
		return "", fmt.Errorf("bridge: unexpected reply kind %q", reply.Kind)
	}
	if !reply.OK {
		return "", fmt.Errorf("host evaluation failed: %s", reply.Output)
	}
	return reply.Output, nil
}

// Ping checks that the host addon is alive.
func (b *Bridge) Ping(ctx context.Context) error {
	reply, err := b.roundTrip(ctx, Message{Kind: KindPing})
	if err != nil {
		return err
	}
	if reply.Kind != KindPong {
		return fmt.Errorf("bridge: unexpected reply kind %q", reply.Kind)
	}
	return nil
}

// Close shuts the connection down and unblocks pending round trips.
func (b *Bridge) Close() error {
	close(b.closed)
	return b.conn.close()
}
