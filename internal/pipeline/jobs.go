package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/rechord/internal/config"
)

// JobStatus represents the state of a render job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusLayout    JobStatus = "layout"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// InputFile is one uploaded song source.
type InputFile struct {
	Name string
	Data []byte
}

// Job tracks the state of a single songbook render.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	files       []InputFile
	typesetting config.Typesetting
	output      []byte
	contentType string
	outputHash  string
	errors      []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalFiles   int      `json:"total_files"`
	SongsLoaded  int      `json:"songs_loaded"`
	SongsSkipped int      `json:"songs_skipped"`
	Pages        int      `json:"pages"`
	Errors       []string `json:"errors"`
}

// NewJob creates a queued job for files typeset with ts.
func NewJob(files []InputFile, ts config.Typesetting) *Job {
	now := time.Now()
	return &Job{
		ID:          generateULID(),
		Status:      StatusQueued,
		Phase:       "queued",
		Progress:    Progress{TotalFiles: len(files)},
		CreatedAt:   now,
		UpdatedAt:   now,
		files:       files,
		typesetting: ts,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	evicted := 0
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrSongsLoaded counts a parsed input file.
func (j *Job) IncrSongsLoaded() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SongsLoaded++
	j.UpdatedAt = time.Now()
}

// SetLayoutResult records the outcome of page layout.
func (j *Job) SetLayoutResult(skipped, pages int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SongsSkipped = skipped
	j.Progress.Pages = pages
	j.UpdatedAt = time.Now()
}

// Files returns the uploaded inputs.
func (j *Job) Files() []InputFile {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// Typesetting returns the settings the job renders with.
func (j *Job) Typesetting() config.Typesetting {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.typesetting
}

// SetOutput stores the rendered document and releases the inputs.
func (j *Job) SetOutput(data []byte, contentType string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.output = data
	j.contentType = contentType
	j.outputHash = ContentHashHex(data)
	j.files = nil
	j.UpdatedAt = time.Now()
}

// Output returns the rendered document, its MIME type and content hash.
// data is nil until the job completes.
func (j *Job) Output() (data []byte, contentType, hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output, j.contentType, j.outputHash
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Format    string    `json:"format"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	progress := j.Progress
	progress.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Format:    j.typesetting.Format,
		Progress:  progress,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
