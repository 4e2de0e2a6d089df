package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/filehaven/filehaven/internal/server"
	"github.com/filehaven/filehaven/internal/server/config"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(context.Background())
}
