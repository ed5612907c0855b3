package stash

import (
	"errors"
	"os"
	"strings"
	"testing"
)

// stubFetcher is a canned SecretFetcher recording every call.
type stubFetcher struct {
	values map[string]string
	err    error
	calls  [][2]string
}

func (f *stubFetcher) FetchSecret(path, key string) (string, error) {
	f.calls = append(f.calls, [2]string{path, key})
	if f.err != nil {
		return "", f.err
	}
	return f.values[path+"."+key], nil
}

// unsetEnv removes a variable for the duration of the test, restoring
// whatever was there before.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestEnvLoader(t *testing.T) {
	t.Run("returns value for set variable", func(t *testing.T) {
		t.Setenv("STASH_TEST_SINGLE", "value")

		got, err := EnvLoader{}.Load("STASH_TEST_SINGLE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "value" {
			t.Fatalf("expected %q, got %q", "value", got)
		}
	})

	t.Run("fails for unset variable", func(t *testing.T) {
		unsetEnv(t, "STASH_TEST_ABSENT")

		_, err := EnvLoader{}.Load("STASH_TEST_ABSENT")
		if !errors.Is(err, ErrMissingVariable) {
			t.Fatalf("expected ErrMissingVariable, got %v", err)
		}
		if !strings.Contains(err.Error(), "STASH_TEST_ABSENT") {
			t.Fatalf("expected error to name the variable, got %q", err.Error())
		}
	})
}

func TestMultipleEnvLoader(t *testing.T) {
	t.Run("returns all requested keys", func(t *testing.T) {
		t.Setenv("API_KEY", "k")
		t.Setenv("DATABASE_URL", "postgres://db")

		got, err := MultipleEnvLoader{}.Load([]string{"API_KEY", "DATABASE_URL"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got["API_KEY"] != "k" || got["DATABASE_URL"] != "postgres://db" {
			t.Fatalf("unexpected result: %v", got)
		}
	})

	t.Run("fails on first unset key without partial result", func(t *testing.T) {
		t.Setenv("API_KEY", "k")
		t.Setenv("DATABASE_URL", "postgres://db")
		unsetEnv(t, "MISSING")

		got, err := MultipleEnvLoader{}.Load([]string{"API_KEY", "MISSING", "DATABASE_URL"})
		if !errors.Is(err, ErrMissingVariable) {
			t.Fatalf("expected ErrMissingVariable, got %v", err)
		}
		if !strings.Contains(err.Error(), "MISSING") {
			t.Fatalf("expected error to name the unset key, got %q", err.Error())
		}
		if got != nil {
			t.Fatalf("expected no partial result, got %v", got)
		}
	})
}

func TestPrefixedEnvLoader(t *testing.T) {
	t.Run("fails without prefixes", func(t *testing.T) {
		if _, err := (PrefixedEnvLoader{}).Load(nil); !errors.Is(err, ErrMissingPrefixList) {
			t.Fatalf("expected ErrMissingPrefixList, got %v", err)
		}
	})

	t.Run("returns only matching variables", func(t *testing.T) {
		t.Setenv("RM_API_KEY", "x")
		t.Setenv("API_KEY", "y")

		got, err := PrefixedEnvLoader{}.Load([]string{"RM"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got["RM_API_KEY"] != "x" {
			t.Fatalf("expected RM_API_KEY=x, got %v", got)
		}
		if _, ok := got["API_KEY"]; ok {
			t.Fatalf("expected API_KEY to be excluded, got %v", got)
		}
	})

	t.Run("matching is case-sensitive", func(t *testing.T) {
		t.Setenv("RM_API_KEY", "x")

		got, err := PrefixedEnvLoader{}.Load([]string{"rm"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := got["RM_API_KEY"]; ok {
			t.Fatalf("expected lowercase prefix not to match, got %v", got)
		}
	})

	t.Run("no matches is not an error", func(t *testing.T) {
		got, err := PrefixedEnvLoader{}.Load([]string{"STASH_TEST_NO_SUCH_PREFIX_"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty result, got %v", got)
		}
	})
}

func TestVaultLoader(t *testing.T) {
	t.Run("fails without fetcher", func(t *testing.T) {
		if _, err := (VaultLoader{}).Load("secret/path", "key", nil); !errors.Is(err, ErrMissingFetcher) {
			t.Fatalf("expected ErrMissingFetcher, got %v", err)
		}
	})

	t.Run("delegates to fetcher verbatim", func(t *testing.T) {
		fetcher := &stubFetcher{values: map[string]string{"secret/path.secret_key": "s3cr3t"}}

		got, err := VaultLoader{}.Load("secret/path", "secret_key", fetcher)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "s3cr3t" {
			t.Fatalf("expected s3cr3t, got %q", got)
		}
		if len(fetcher.calls) != 1 || fetcher.calls[0] != [2]string{"secret/path", "secret_key"} {
			t.Fatalf("unexpected fetcher calls: %v", fetcher.calls)
		}
	})

	t.Run("propagates fetch errors unwrapped", func(t *testing.T) {
		fetchErr := errors.New("sealed")
		fetcher := &stubFetcher{err: fetchErr}

		_, err := VaultLoader{}.Load("secret/path", "secret_key", fetcher)
		if !errors.Is(err, fetchErr) {
			t.Fatalf("expected fetch error to propagate, got %v", err)
		}
	})
}
