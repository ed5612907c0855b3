package stash

import (
	"fmt"
	"os"
	"strings"
)

// SecretFetcher resolves a (path, key) pair to a secret value. It is a
// capability supplied by the embedding application; errors it returns
// propagate to callers uninterpreted.
type SecretFetcher interface {
	FetchSecret(path, key string) (string, error)
}

// EnvLoader reads a single environment variable by exact name.
type EnvLoader struct{}

// Load returns the current value of the named environment variable.
func (EnvLoader) Load(key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingVariable, key)
	}
	return value, nil
}

// MultipleEnvLoader reads an ordered sequence of environment variables.
type MultipleEnvLoader struct{}

// Load returns a mapping of key to value for every requested key.
// It fails on the first unset key without returning a partial result.
func (MultipleEnvLoader) Load(keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok := os.LookupEnv(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingVariable, key)
		}
		values[key] = value
	}
	return values, nil
}

// PrefixedEnvLoader scans the environment for variables whose names
// start with one of a set of prefixes.
type PrefixedEnvLoader struct{}

// Load returns every environment variable whose name starts with at
// least one prefix. Matching is case-sensitive. An empty result is not
// an error; an empty prefix set is.
func (PrefixedEnvLoader) Load(prefixes []string) (map[string]string, error) {
	if len(prefixes) == 0 {
		return nil, ErrMissingPrefixList
	}

	values := make(map[string]string)
	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(name, prefix) {
				values[name] = value
				break
			}
		}
	}
	return values, nil
}

// VaultLoader resolves a secret through an externally supplied fetcher.
type VaultLoader struct{}

// Load delegates to the fetcher and returns its result verbatim. A nil
// fetcher is a wiring error, distinct from fetch failures, which pass
// through unwrapped.
func (VaultLoader) Load(path, key string, fetcher SecretFetcher) (string, error) {
	if fetcher == nil {
		return "", ErrMissingFetcher
	}
	return fetcher.FetchSecret(path, key)
}
