package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/rechord/internal/config"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	files := []InputFile{{Name: "a.txt", Data: []byte("A\n\nla")}, {Name: "b.txt"}}
	job := NewJob(files, config.Typesetting{Format: config.FormatHTML})

	snap := job.Snapshot()
	if snap.Status != StatusQueued || snap.Phase != "queued" {
		t.Errorf("expected queued job, got %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.ID) != 26 {
		t.Errorf("expected ULID job id, got %q", snap.ID)
	}
	if snap.Progress.TotalFiles != 2 {
		t.Errorf("expected 2 files, got %d", snap.Progress.TotalFiles)
	}
	if snap.Format != "html" {
		t.Errorf("expected html format, got %q", snap.Format)
	}
	if len(job.Files()) != 2 {
		t.Errorf("expected inputs to be kept, got %d", len(job.Files()))
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusLayout, "layout"},
		{StatusRendering, "rendering"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("a.xlsx: unsupported")
	job.AddError("invalid song: missing title")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "a.xlsx: unsupported" {
		t.Errorf("expected first error %q, got %q", "a.xlsx: unsupported", snap.Progress.Errors[0])
	}

	// Snapshots must not alias job state.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "a.xlsx: unsupported" {
		t.Error("expected snapshot errors to be a copy")
	}
}

func TestJob_Progress(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.IncrSongsLoaded()
	job.IncrSongsLoaded()
	job.SetLayoutResult(1, 6)

	snap := job.Snapshot()
	if snap.Progress.SongsLoaded != 2 {
		t.Errorf("expected 2 songs loaded, got %d", snap.Progress.SongsLoaded)
	}
	if snap.Progress.SongsSkipped != 1 || snap.Progress.Pages != 6 {
		t.Errorf("expected 1 skipped on 6 pages, got %d on %d", snap.Progress.SongsSkipped, snap.Progress.Pages)
	}
}

func TestJob_Output(t *testing.T) {
	job := NewJob([]InputFile{{Name: "a.txt", Data: []byte("x")}}, config.Typesetting{})
	if data, _, _ := job.Output(); data != nil {
		t.Error("expected no output before completion")
	}

	job.SetOutput([]byte("hello world"), "application/pdf")
	data, ct, hash := job.Output()
	if string(data) != "hello world" || ct != "application/pdf" {
		t.Errorf("unexpected output %q (%s)", data, ct)
	}
	if hash != ContentHashHex([]byte("hello world")) {
		t.Errorf("unexpected hash %q", hash)
	}
	if job.Files() != nil {
		t.Error("expected inputs to be released")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
