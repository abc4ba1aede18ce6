package main

import (
	"os"

	"github.com/jakoblorz/go-mvnaudit/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// GH_TOKEN and friends may live in .env; a missing file is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
