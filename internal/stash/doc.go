// Package stash assembles a single ordered key-value store from
// environment variables, YAML files, and an injected secret-fetching
// capability. YAML string values beginning with "ENV." or "VAULT." are
// placeholder markers resolved against the environment or the secret
// fetcher during loading; there is no escape mechanism for literal
// strings that happen to start with either prefix.
//
// Every key written to a Stash is mirrored into the process environment
// as a string. The mirror is process-global state: concurrent writers
// racing on the same key end up last-write-wins. The Stash itself holds
// no lock; callers needing concurrent access must serialize all load and
// write operations externally.
package stash
