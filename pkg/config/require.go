package config

import (
	"log"
	"os"
)

// MustEnv returns the value of name and exits when it is unset or empty.
func MustEnv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		log.Fatalf("missing required env %s", name)
	}
	return value
}

func MustEnvBytes(name string) []byte {
	return []byte(MustEnv(name))
}
