package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; a missing .env is fine.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
