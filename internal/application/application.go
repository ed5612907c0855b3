package application

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/config-stash/internal/stash"
	"github.com/eugenenazirov/config-stash/internal/vaultapi"
)

// VaultRef names one secret to load: its path and key, plus an
// optional alias under which the value is stored.
type VaultRef struct {
	Path  string
	Key   string
	Alias string
}

// Options describes the load operations to apply and how to reach the
// secret store.
type Options struct {
	EnvKeys     []string
	Prefixes    []string
	ConfigFiles []string
	VaultRefs   []VaultRef

	VaultAddr    string
	VaultToken   string
	VaultRateRPS float64
	VaultBurst   int
}

// Build assembles a stash by applying the configured load operations
// in a fixed order: named environment keys, prefixed scan, YAML files,
// then individual vault secrets.
func Build(opts Options, logger *zap.Logger) (*stash.Stash, error) {
	var stashOpts []stash.Option
	if opts.VaultAddr != "" {
		clientOpts := []vaultapi.Option{vaultapi.WithLogger(logger)}
		if opts.VaultRateRPS > 0 {
			clientOpts = append(clientOpts, vaultapi.WithRateLimit(opts.VaultRateRPS, opts.VaultBurst))
		}
		fetcher := vaultapi.New(opts.VaultAddr, opts.VaultToken, clientOpts...)
		stashOpts = append(stashOpts, stash.WithFetcher(fetcher))
	}

	store := stash.New(stashOpts...)

	if len(opts.EnvKeys) > 0 {
		if err := store.LoadManyKeysFromEnv(opts.EnvKeys); err != nil {
			return nil, fmt.Errorf("load environment keys: %w", err)
		}
	}

	if len(opts.Prefixes) > 0 {
		if err := store.LoadPrefixedEnvVars(opts.Prefixes); err != nil {
			return nil, fmt.Errorf("load prefixed environment variables: %w", err)
		}
	}

	for _, file := range opts.ConfigFiles {
		if err := store.LoadFromYAMLFile(file); err != nil {
			return nil, err
		}
	}

	for _, ref := range opts.VaultRefs {
		if err := store.LoadFromVault(ref.Path, ref.Key, ref.Alias); err != nil {
			return nil, fmt.Errorf("load secret %s.%s: %w", ref.Path, ref.Key, err)
		}
	}

	logger.Debug("configuration assembled", zap.Int("keys", store.Len()))
	return store, nil
}

// ParseVaultRef parses the CLI syntax "path.key" or "path.key:alias".
// The path.key part follows the same two-component rule as VAULT.
// markers in YAML documents.
func ParseVaultRef(raw string) (VaultRef, error) {
	ref := raw
	alias := ""
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		ref, alias = raw[:i], raw[i+1:]
	}

	parts := strings.Split(ref, ".")
	if len(parts) != 2 {
		return VaultRef{}, fmt.Errorf("vault reference %q must have the form path.key[:alias]", raw)
	}
	return VaultRef{Path: parts[0], Key: parts[1], Alias: alias}, nil
}
