package main

import (
	"flag"

	"civicfix/backend/server"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local runs; real deployments pass flags and env.
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}
	flag.Parse()

	server.StartService()
}
