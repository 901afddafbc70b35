package config

import (
	"os"

	"github.com/joho/godotenv"
)

var loaded bool

// Config func to get env value by key
func Config(key string) string {
	if !loaded {
		godotenv.Load(".env")
		loaded = true
	}
	return os.Getenv(key)
}
