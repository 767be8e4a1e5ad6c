/*
Package script implements the engine's optional script host
collaborator with an embedded Lua interpreter.

The engine treats script execution as an opaque handler hook: a handler
that carries scripted behavior hands the snippet to the host and gets a
textual result back. Each run gets a fresh interpreter state and a
bounded execution time.

# Usage

	host := script.New(2 * time.Second)

	out, err := host.Run(`return "hello " .. "burrow"`)
	// out == "hello burrow"

# Integration Points

  - pkg/types: satisfies the ScriptHost collaborator interface
  - cmd/burrow: scripted demo handlers in serve mode
*/
package script
