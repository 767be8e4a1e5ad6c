package script

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single script execution.
const DefaultTimeout = 5 * time.Second

// Host runs Lua snippets for handlers that carry scripted behavior. It
// satisfies the engine's ScriptHost collaborator interface. Each Run
// uses a fresh interpreter state, so scripts cannot leak globals into
// each other.
type Host struct {
	timeout time.Duration
}

// New creates a script host. A zero timeout uses DefaultTimeout.
func New(timeout time.Duration) *Host {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Host{timeout: timeout}
}

// Run executes the script and returns the value of its global
// "result" as a string, or the last returned value when the script
// returns one.
func (h *Host) Run(script string) (string, error) {
	L := lua.NewState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoString(script); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("script timed out after %s", h.timeout)
		}
		return "", fmt.Errorf("script failed: %w", err)
	}

	if top := L.GetTop(); top > 0 {
		return L.Get(top).String(), nil
	}
	if result := L.GetGlobal("result"); result != lua.LNil {
		return result.String(), nil
	}
	return "", nil
}
