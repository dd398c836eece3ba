package main

import (
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/vizboard/internal/cli"
)

func main() {
	// VIZBOARD_* settings may come from a .env file; real env vars win.
	_ = godotenv.Load()
	cli.Execute()
}
