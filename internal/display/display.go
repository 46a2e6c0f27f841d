// Package display delivers translated caption text to whatever is rendering
// it.
//
// The pipeline only knows the [Sink] interface; concrete sinks include a
// console writer for headless runs and a WebSocket [Broadcaster] that pushes
// captions to browser clients and accepts mode-toggle commands back from
// them. Sinks must never block the inference loop for long — a stalled
// display is dropped, not waited on.
package display

import (
	"fmt"
	"io"
	"sync"
)

// Sink accepts translated caption text for rendering.
type Sink interface {
	Show(text string)
}

// Console writes each caption as a line to an io.Writer (stdout in
// production). Safe for concurrent use.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Show writes the caption followed by a newline. Empty captions are skipped.
func (c *Console) Show(text string) {
	if text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, text)
}

// Multi fans captions out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Show(text string) {
	for _, s := range m {
		s.Show(text)
	}
}

// Compile-time assertions.
var (
	_ Sink = (*Console)(nil)
	_ Sink = multiSink(nil)
)
