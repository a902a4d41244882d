package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// console shows notifications and navigations as terminal output.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) Notify(_ context.Context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.w, "! %s\n", message)
}

// Navigate prints the target view and, for error views, the state handed to it.
func (c *console) Navigate(_ context.Context, path string, state json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.w, "-> %s\n", path)
	if len(state) == 0 {
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, state, "   ", "  "); err != nil {
		_, _ = fmt.Fprintf(c.w, "   %s\n", state)

		return
	}
	_, _ = fmt.Fprintf(c.w, "   %s\n", pretty.String())
}
