package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeDataset(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func waitChanged(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changed():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.csv")
	writeDataset(t, path, "Sex\n")

	var changes atomic.Int32
	w, err := New(path,
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(20*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeDataset(t, path, "Sex\nmale\n")

	if !waitChanged(t, w, 3*time.Second) {
		t.Fatal("expected a change notification")
	}
	if changes.Load() == 0 {
		t.Error("expected OnChange to run")
	}
}

func TestWatcher_ForcePoll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.csv")
	writeDataset(t, path, "a")

	w, err := New(path, WithForcePoll(true), WithPollInterval(20*time.Millisecond), WithDebounceDuration(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}
	writeDataset(t, path, "a longer body")
	if !waitChanged(t, w, 3*time.Second) {
		t.Fatal("expected polling to notice the size change")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv(ForcePollEnvVar, "yes")
	w, err := New(filepath.Join(t.TempDir(), "titanic.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected polling when the env var is set")
	}
}

func TestWatcher_RemoteFilesystemPolls(t *testing.T) {
	orig := detectFilesystemTypeFunc
	detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
	t.Cleanup(func() { detectFilesystemTypeFunc = orig })

	w, err := New(filepath.Join(t.TempDir(), "titanic.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected polling on NFS")
	}
	if w.FilesystemType() != FSTypeNFS {
		t.Errorf("expected nfs, got %v", w.FilesystemType())
	}
}

func TestWatcher_PollOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.csv")
	writeDataset(t, path, "a")

	var gotErr atomic.Value
	w, err := New(path, WithOnError(func(err error) { gotErr.Store(err) }))
	if err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)
	w.lastMod, w.lastSize = info.ModTime(), info.Size()

	if w.pollOnce() {
		t.Error("unchanged file reported as changed")
	}
	writeDataset(t, path, "abc")
	if !w.pollOnce() {
		t.Error("size change not reported")
	}
	if w.pollOnce() {
		t.Error("change reported twice")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if w.pollOnce() {
		t.Error("removal reported as a change")
	}
	if err, _ := gotErr.Load().(error); !errors.Is(err, ErrFileRemoved) {
		t.Errorf("expected ErrFileRemoved, got %v", err)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "titanic.csv"), WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Fatal("started before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	w.Stop()
	w.Stop()
	if w.IsStarted() {
		t.Error("still started after Stop")
	}
	if err := w.Start(); err != nil {
		t.Errorf("restart failed: %v", err)
	}
	w.Stop()
}

func TestWatcher_PathAndInterval(t *testing.T) {
	w, err := New("titanic.csv", WithPollInterval(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) || filepath.Base(w.Path()) != "titanic.csv" {
		t.Errorf("unexpected path %q", w.Path())
	}
	if w.PollInterval() != 5*time.Second {
		t.Errorf("unexpected interval %v", w.PollInterval())
	}
}

func TestFilesystemType_String(t *testing.T) {
	tests := []struct {
		fsType FilesystemType
		want   string
	}{
		{FSTypeUnknown, "unknown"},
		{FSTypeLocal, "local"},
		{FSTypeNFS, "nfs"},
		{FSTypeSMB, "smb"},
		{FSTypeSSHFS, "sshfs"},
		{FSTypeFUSE, "fuse"},
		{FilesystemType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.fsType.String(); got != tt.want {
			t.Errorf("FilesystemType(%d).String() = %q, want %q", tt.fsType, got, tt.want)
		}
	}
}

func TestDetectFilesystemType_EmptyPath(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("expected unknown, got %v", got)
	}
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		t.Setenv("TITANIC_TEST_BOOL", v)
		if !envBool("TITANIC_TEST_BOOL") {
			t.Errorf("%q should be true", v)
		}
	}
	for _, v := range []string{"", "0", "false", "maybe"} {
		t.Setenv("TITANIC_TEST_BOOL", v)
		if envBool("TITANIC_TEST_BOOL") {
			t.Errorf("%q should be false", v)
		}
	}
}
