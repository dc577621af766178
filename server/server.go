package server

import (
	"context"

	"github.com/aura-studio/bootstrap/runtime"
	"github.com/aura-studio/bootstrap/tunnel"
)

var engine *runtime.Engine

// Serve wires a tunnel handler into the runtime engine and runs the
// invocation loop on the calling goroutine until the engine stops.
func Serve(opts ...Option) error {
	options := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}

	serveOpts := make([]tunnel.ServeOption, 0, len(options.Tunnel)+len(options.Dynamic))
	for _, opt := range options.Tunnel {
		serveOpts = append(serveOpts, opt)
	}
	for _, opt := range options.Dynamic {
		serveOpts = append(serveOpts, opt)
	}

	engine = runtime.NewEngine(tunnel.NewTunnel(serveOpts...), options.Runtime...)
	return engine.Run(context.Background())
}

// Close stops the invocation loop. The loop exits once the current
// poll or invocation finishes.
func Close() {
	if engine != nil {
		engine.Stop()
	}
}
