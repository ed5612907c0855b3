package stash

import "os"

// Option configures the behaviour of New.
type Option func(*Stash)

// WithFetcher supplies the secret fetcher used by vault-backed loads.
func WithFetcher(fetcher SecretFetcher) Option {
	return func(s *Stash) {
		s.fetcher = fetcher
	}
}

// WithValues pre-seeds the store. Seeded keys go through the normal
// write path and are therefore mirrored into the environment.
func WithValues(values map[string]Value) Option {
	return func(s *Stash) {
		for key, value := range values {
			s.Set(key, value)
		}
	}
}

// Stash is the aggregate configuration store. It grows monotonically
// across load operations and mirrors every written key into the
// process environment. It is not safe for concurrent use.
type Stash struct {
	values  *Map
	fetcher SecretFetcher

	env      EnvLoader
	multi    MultipleEnvLoader
	prefixed PrefixedEnvLoader
	vault    VaultLoader
}

// New creates an empty Stash.
func New(opts ...Option) *Stash {
	s := &Stash{values: NewMap()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set writes key into the store and mirrors the stringified value into
// the process environment. Every load operation funnels through here;
// mirroring is the one invariant all write paths share.
func (s *Stash) Set(key string, value Value) {
	s.values.Set(key, value)
	os.Setenv(key, value.String())
}

// Get returns the value stored under key.
func (s *Stash) Get(key string) (Value, bool) {
	return s.values.Get(key)
}

// Has reports whether key is present in the store.
func (s *Stash) Has(key string) bool {
	return s.values.Has(key)
}

// Keys returns the stored keys in insertion order.
func (s *Stash) Keys() []string {
	return s.values.Keys()
}

// Len returns the number of stored keys.
func (s *Stash) Len() int {
	return s.values.Len()
}

// LoadFromEnv resolves one environment variable and stores it under
// customKeyName when non-empty, else under key. Overwrites
// unconditionally.
func (s *Stash) LoadFromEnv(key, customKeyName string) error {
	value, err := s.env.Load(key)
	if err != nil {
		return err
	}
	if customKeyName != "" {
		s.Set(customKeyName, StringValue(value))
	} else {
		s.Set(key, StringValue(value))
	}
	return nil
}

// LoadManyKeysFromEnv resolves all given environment variables and
// stores each under its own name, overwriting unconditionally. The
// load is all-or-nothing: when any key is unset, the store is left
// untouched.
func (s *Stash) LoadManyKeysFromEnv(keys []string) error {
	values, err := s.multi.Load(keys)
	if err != nil {
		return err
	}
	for _, key := range keys {
		s.Set(key, StringValue(values[key]))
	}
	return nil
}

// LoadPrefixedEnvVars scans the environment for variables matching any
// of the prefixes and stores each only when the key is not already
// present; existing keys win and are not re-mirrored.
func (s *Stash) LoadPrefixedEnvVars(prefixes []string) error {
	values, err := s.prefixed.Load(prefixes)
	if err != nil {
		return err
	}
	for key, value := range values {
		if !s.values.Has(key) {
			s.Set(key, StringValue(value))
		}
	}
	return nil
}

// LoadFromYAMLFile resolves the document at filepath and merges the
// result into the store. Top-level keys carry the resolver's own
// precedence (first-write-wins for plain values, overwrite for
// resolved markers); the store writes each resolved key
// unconditionally without re-applying a policy of its own.
func (s *Stash) LoadFromYAMLFile(filepath string) error {
	resolver := NewYAMLResolver(s.fetcher)
	values, err := resolver.ResolveFile(filepath)
	if err != nil {
		return err
	}
	for _, key := range values.Keys() {
		value, _ := values.Get(key)
		s.Set(key, value)
	}
	return nil
}

// LoadFromVault resolves one secret through the configured fetcher.
// The value is stored under customKeyName when that name is given and
// not already present; otherwise it is stored under key
// unconditionally.
func (s *Stash) LoadFromVault(path, key, customKeyName string) error {
	value, err := s.vault.Load(path, key, s.fetcher)
	if err != nil {
		return err
	}
	if customKeyName != "" && !s.values.Has(customKeyName) {
		s.Set(customKeyName, StringValue(value))
	} else {
		s.Set(key, StringValue(value))
	}
	return nil
}
