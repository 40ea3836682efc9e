package main

import (
	"os"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// defaultKeyPath is where the private key of the user is stored unless
// configured otherwise.
func defaultKeyPath() string {
	return env("SAFECLI_PRIV_KEY", os.Getenv("HOME")+"/.safe.priv.key")
}

// defaultHome is the directory of the application state unless configured
// otherwise.
func defaultHome() string {
	return env("SAFECLI_HOME", os.Getenv("HOME")+"/.safe")
}
