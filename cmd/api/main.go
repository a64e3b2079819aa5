package main

import (
	"context"
	"log"

	"github.com/Fhkhdu777/chase-linker-payout/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start the distribution scheduler and HTTP server.
func main() {
	log.Println("payout distribution api starting")
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("payout distribution api stopped with error: %v", err)
	}
}
