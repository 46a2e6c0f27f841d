package display

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"github.com/tarjama-live/tarjama/pkg/types"
)

// Control is the slice of the pipeline controller the display surface needs:
// read the current direction and request a change. Implemented by
// pipeline.Controller.
type Control interface {
	Mode() types.Mode
	SetMode(m types.Mode) error
}

// Event is a server-to-client message: a caption line or a mode announcement.
type Event struct {
	Type string `json:"type"` // "caption", "mode", or "error"
	Text string `json:"text,omitempty"`
	Mode string `json:"mode,omitempty"`
	Err  string `json:"error,omitempty"`
}

// Command is a client-to-server control message.
type Command struct {
	Cmd  string `json:"cmd"`  // "set_mode" or "toggle_mode"
	Mode string `json:"mode"` // direction for set_mode
}

// Broadcaster is a WebSocket caption display: it implements [Sink] by
// fanning captions out to every connected client, and routes mode commands
// from clients into the pipeline controller.
//
// A slow or dead client is disconnected rather than waited on; Show is
// bounded by writeTimeout per client.
type Broadcaster struct {
	control      Control
	writeTimeout time.Duration

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// Compile-time assertion that Broadcaster implements Sink.
var _ Sink = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster routing control commands to control.
func NewBroadcaster(control Control) *Broadcaster {
	return &Broadcaster{
		control:      control,
		writeTimeout: 2 * time.Second,
		conns:        make(map[*websocket.Conn]struct{}),
	}
}

// Show broadcasts a caption event to every connected client. Empty captions
// are skipped. Clients that fail the bounded write are dropped.
func (b *Broadcaster) Show(text string) {
	if text == "" {
		return
	}
	b.broadcast(Event{Type: "caption", Text: text})
}

// ServeHTTP upgrades the request to a WebSocket, announces the current mode,
// and processes control commands until the client disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("websocket accept failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	n := len(b.conns)
	b.mu.Unlock()
	slog.Info("caption client connected", "clients", n)

	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
	}()

	ctx := r.Context()
	b.send(ctx, conn, Event{Type: "mode", Mode: string(b.control.Mode())})

	for {
		var cmd Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			slog.Debug("caption client disconnected", "err", err)
			return
		}
		b.handleCommand(ctx, conn, cmd)
	}
}

// handleCommand applies one control command. Invalid commands are answered
// with an error event on the issuing connection only; successful mode
// changes are announced to everyone.
func (b *Broadcaster) handleCommand(ctx context.Context, conn *websocket.Conn, cmd Command) {
	switch cmd.Cmd {
	case "set_mode":
		mode, err := types.ParseMode(cmd.Mode)
		if err == nil {
			err = b.control.SetMode(mode)
		}
		if err != nil {
			b.send(ctx, conn, Event{Type: "error", Err: err.Error()})
			return
		}
		b.broadcast(Event{Type: "mode", Mode: string(mode)})

	case "toggle_mode":
		mode := b.control.Mode().Toggle()
		if err := b.control.SetMode(mode); err != nil {
			b.send(ctx, conn, Event{Type: "error", Err: err.Error()})
			return
		}
		b.broadcast(Event{Type: "mode", Mode: string(mode)})

	default:
		b.send(ctx, conn, Event{Type: "error", Err: "unknown command " + cmd.Cmd})
	}
}

// broadcast writes ev to every connection concurrently, dropping the ones
// that fail. The slowest client bounds the whole fan-out at writeTimeout, not
// at writeTimeout times the client count.
func (b *Broadcaster) broadcast(ev Event) {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	var g errgroup.Group
	for _, c := range conns {
		g.Go(func() error {
			if !b.send(context.Background(), c, ev) {
				b.mu.Lock()
				delete(b.conns, c)
				b.mu.Unlock()
				c.Close(websocket.StatusPolicyViolation, "write timeout")
			}
			return nil
		})
	}
	g.Wait()
}

// send writes one event with the bounded write timeout. Reports success.
func (b *Broadcaster) send(ctx context.Context, conn *websocket.Conn, ev Event) bool {
	wctx, cancel := context.WithTimeout(ctx, b.writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, ev); err != nil {
		slog.Debug("caption write failed, dropping client", "err", err)
		return false
	}
	return true
}
