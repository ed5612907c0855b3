package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/config-stash/internal/application"
	"github.com/eugenenazirov/config-stash/internal/logging"
	"github.com/eugenenazirov/config-stash/internal/stash"
)

func main() {
	kingpinApp := kingpin.New("configstash", "Aggregates configuration from environment variables, YAML files, and Vault secrets into the process environment")
	envKeys := kingpinApp.Flag("env", "Environment variable to load (repeatable, all-or-nothing)").Strings()
	prefixes := kingpinApp.Flag("prefix", "Environment variable name prefix to scan for (repeatable)").Strings()
	configFiles := kingpinApp.Flag("config", "YAML configuration file to resolve (repeatable)").Strings()
	vaultRefs := kingpinApp.Flag("vault", "Vault secret to load, as path.key[:alias] (repeatable)").Strings()
	vaultAddr := kingpinApp.Flag("vault-addr", "Vault server address").Envar("VAULT_ADDR").String()
	vaultToken := kingpinApp.Flag("vault-token", "Vault authentication token").Envar("VAULT_TOKEN").String()
	vaultRPS := kingpinApp.Flag("vault-rps", "Vault fetch rate limit in requests per second (0 disables)").Default("0").Float64()
	vaultBurst := kingpinApp.Flag("vault-burst", "Vault fetch burst capacity").Default("1").Int()
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Short('v').Bool()
	command := kingpinApp.Arg("command", "Command to run with the resolved environment; omit to print KEY=value lines").Strings()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, err := logging.NewConsole(*verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := application.Options{
		EnvKeys:      *envKeys,
		Prefixes:     *prefixes,
		ConfigFiles:  *configFiles,
		VaultAddr:    *vaultAddr,
		VaultToken:   *vaultToken,
		VaultRateRPS: *vaultRPS,
		VaultBurst:   *vaultBurst,
	}
	for _, raw := range *vaultRefs {
		ref, err := application.ParseVaultRef(raw)
		if err != nil {
			logger.Fatal("invalid vault reference", zap.Error(err))
		}
		opts.VaultRefs = append(opts.VaultRefs, ref)
	}

	store, err := application.Build(opts, logger)
	if err != nil {
		logger.Fatal("failed to assemble configuration", zap.Error(err))
	}

	if len(*command) == 0 {
		printStore(store)
		return
	}

	if err := runCommand(*command); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		logger.Fatal("command failed", zap.Error(err))
	}
}

func printStore(store *stash.Stash) {
	for _, key := range store.Keys() {
		value, _ := store.Get(key)
		fmt.Printf("%s=%s\n", key, value)
	}
}

// runCommand executes the child with the current environment, which the
// store's mirror-on-write has already populated.
func runCommand(args []string) error {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	return cmd.Run()
}
