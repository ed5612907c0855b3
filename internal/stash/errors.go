package stash

import "errors"

var (
	// ErrMissingVariable is returned when a required environment variable is not set.
	ErrMissingVariable = errors.New("environment variable is not set")
	// ErrMissingPrefixList is returned when prefix-based loading is invoked without prefixes.
	ErrMissingPrefixList = errors.New("no environment variable prefixes provided")
	// ErrMissingFetcher is returned when secret loading is requested but no fetcher is configured.
	ErrMissingFetcher = errors.New("no secret fetcher configured")
	// ErrMalformedVaultReference is returned when a VAULT. placeholder does not decompose into exactly a path and a key.
	ErrMalformedVaultReference = errors.New("vault reference must have the form VAULT.<path>.<key>")
)
