package logging

import "testing"

func TestNew(t *testing.T) {
	logger, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger instance")
	}
	_ = logger.Sync()
}

func TestNewConsole(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		logger, err := NewConsole(verbose)
		if err != nil {
			t.Fatalf("unexpected error (verbose=%v): %v", verbose, err)
		}
		if logger == nil {
			t.Fatalf("expected logger instance (verbose=%v)", verbose)
		}
		_ = logger.Sync()
	}
}
