package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherRechecksOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.cpp": "int counter;\nint f() { return countr; }\n"})

	ws := NewWorkspace(dir)
	w, err := NewWatcher(ws, 20*time.Millisecond)
	require.NoError(t, err)

	reports := make(chan *Report, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(r *Report) { reports <- r })
	}()

	select {
	case r := <-reports:
		assert.Equal(t, 1, r.Errors)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial report")
	}

	writeFiles(t, dir, map[string]string{"a.cpp": "int counter;\nint f() { return counter; }\n"})

	deadline := time.After(5 * time.Second)
	for fixed := false; !fixed; {
		select {
		case r := <-reports:
			fixed = r.Errors == 0
		case <-deadline:
			t.Fatal("no report after the change")
		}
	}

	// other files are ignored
	writeFiles(t, dir, map[string]string{"notes.txt": "text"})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
