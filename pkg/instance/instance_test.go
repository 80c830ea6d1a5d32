package instance

import "testing"

func TestIDPrefersDyno(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("WORKER_ID", "worker-3")
	if got := ID(); got != "web.1" {
		t.Fatalf("expected dyno id, got %q", got)
	}
}

func TestIDFallsBackToWorkerID(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("WORKER_ID", "worker-3")
	if got := ID(); got != "worker-3" {
		t.Fatalf("expected worker id, got %q", got)
	}
}

func TestIDNeverEmpty(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("WORKER_ID", "")
	if ID() == "" {
		t.Fatal("expected a non-empty instance id")
	}
}
