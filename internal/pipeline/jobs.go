package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/pdfstruct/internal/analyze"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = JobStatus(analyze.PhaseParsing)
	StatusLayout      JobStatus = JobStatus(analyze.PhaseLayout)
	StatusSegmenting  JobStatus = JobStatus(analyze.PhaseSegmenting)
	StatusClassifying JobStatus = JobStatus(analyze.PhaseClassifying)
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusCached      JobStatus = "cached"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCached
}

// Job tracks the state of a single document analysis.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	DocID  string `json:"doc_id"`
	UserID string `json:"user_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	AnalysisID  string    `json:"analysis_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks what the analysis has found so far.
type Progress struct {
	Pages        int      `json:"pages"`
	PagesSampled int      `json:"pages_sampled"`
	Blocks       int      `json:"blocks"`
	Sentences    int      `json:"sentences"`
	Headers      int      `json:"headers"`
	Footers      int      `json:"footers"`
	TOC          int      `json:"toc"`
	Sections     int      `json:"sections"`
	Errors       []string `json:"errors"`
}

// NewJob creates a queued job for data. The content hash is computed here
// so duplicates can be found before any parsing.
func NewJob(id, docID, userID, filename string, data []byte) *Job {
	now := time.Now()
	hash := ContentHashHex(data)
	if docID == "" {
		docID = hash[:16]
	}
	return &Job{
		ID:          id,
		DocID:       docID,
		UserID:      userID,
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
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

// Counts tallies tracked jobs by status.
func (s *JobStore) Counts() map[JobStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[JobStatus]int)
	for _, job := range s.jobs {
		job.mu.Lock()
		out[job.Status]++
		job.mu.Unlock()
	}
	return out
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
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

// RecordAnalysis copies counts from a finished or partial analysis.
func (j *Job) RecordAnalysis(an *analyze.Analysis) {
	if an == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if an.Result != nil {
		j.Progress.Pages = an.Result.Metadata.Pages
		j.Progress.Headers = an.Result.Counts.Headers
		j.Progress.Footers = an.Result.Counts.Footers
		j.Progress.TOC = an.Result.Counts.TOC
		j.Progress.Sections = an.Result.Counts.Sections
	}
	j.Progress.PagesSampled = len(an.Layouts)
	j.Progress.Blocks = an.Blocks()
	j.Progress.Sentences = len(an.Sentences)
	j.UpdatedAt = time.Now()
}

// SetAnalysisID points the job at its stored analysis.
func (j *Job) SetAnalysisID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.AnalysisID = id
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	UserID      string    `json:"user_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	AnalysisID  string    `json:"analysis_id,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Errors = make([]string, len(j.errors))
	copy(progress.Errors, j.errors)
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		UserID:      j.UserID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		AnalysisID:  j.AnalysisID,
		Progress:    progress,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
