package main

import (
	"log"

	"github.com/aura-studio/bootstrap/server"
)

// The bootstrap binary is deployed as the custom runtime entry point.
// It reads bootstrap.yml from the task root and serves dynamically
// loaded packages through the tunnel handler.
func main() {
	if err := server.Serve(server.WithDefaultServeConfigFile()); err != nil {
		log.Fatalf("[Bootstrap] %v", err)
	}
}
