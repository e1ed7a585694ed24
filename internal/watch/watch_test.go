package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, root string) <-chan struct{} {
	t.Helper()
	fired := make(chan struct{}, 16)
	w, err := New([]string{root}, []string{"**/*.txt"}, 50*time.Millisecond, func(context.Context) {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return fired
}

func waitFired(t *testing.T, fired <-chan struct{}) {
	t.Helper()
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("expected change callback")
	}
}

func TestWatchMatchingFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "family"), 0o755); err != nil {
		t.Fatal(err)
	}
	fired := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, "family", "chat.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFired(t, fired)
}

func TestWatchNewDirectory(t *testing.T) {
	root := t.TempDir()
	fired := startWatcher(t, root)

	dir := filepath.Join(root, "new")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFired(t, fired)

	if err := os.WriteFile(filepath.Join(dir, "chat.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFired(t, fired)
}

func TestNewSkipsMissingRoot(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing")}, []string{"*.txt"}, 0, func(context.Context) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()
	if len(w.Roots()) != 0 {
		t.Errorf("expected no roots, got %v", w.Roots())
	}
}
