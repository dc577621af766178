package runtime

import (
	"context"
	"log"
)

// engine is the global engine variable for the runtime.
var engine *Engine

// Serve builds an Engine for the handler and drives the runtime loop.
// A fatal condition terminates the process with a diagnostic; recovery
// is left to the execution environment, which restarts the process.
func Serve(handler Handler, opts ...Option) {
	engine = NewEngine(handler, opts...)
	if err := engine.Run(context.Background()); err != nil {
		log.Fatalf("[Runtime] %v", err)
	}
}

// Close stops the runtime loop after the current cycle.
func Close() {
	if engine != nil {
		engine.Stop()
	}
}
