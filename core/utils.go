package core

import (
	"log"
	"os"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd returns the current working directory; it dies if that fails.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("core.Getwd: %v", err)
	}
	return wd
}
