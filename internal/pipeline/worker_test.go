package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/pdfstruct/internal/analyze"
	"github.com/dgallion1/pdfstruct/internal/config"
	"github.com/dgallion1/pdfstruct/internal/pathstore"
	"github.com/dgallion1/pdfstruct/internal/store"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fakeAnalyzer struct {
	err   error
	calls int
}

func (f *fakeAnalyzer) Run(_ context.Context, filename string, data []byte, onPhase func(analyze.Phase)) (*analyze.Analysis, error) {
	f.calls++
	res := structure.NewResult()
	onPhase(analyze.PhaseParsing)
	if f.err != nil {
		return &analyze.Analysis{Result: res}, &analyze.Error{Phase: analyze.PhaseLayout, Err: f.err}
	}
	onPhase(analyze.PhaseClassifying)
	res.Metadata = structure.NewMetadata(2, "", filename)
	res.Sections = []structure.Section{{Heading: "1 Scope", Content: []string{string(data)}}}
	res.Recount()
	return &analyze.Analysis{
		Result:    res,
		Sentences: structure.NewSentences([]string{"1 Scope", string(data)}),
		Text:      "1 Scope\n" + string(data),
	}, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	sums []pathstore.Summary
	err  error
}

func (p *fakePublisher) PublishStructure(_ context.Context, _, _ string, sum pathstore.Summary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sums = append(p.sums, sum)
	return p.err
}

func memStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestWorker_Completes(t *testing.T) {
	st := memStore(t)
	pub := &fakePublisher{}
	w := NewWorker(&fakeAnalyzer{}, st, pub, quietLogger())

	job := NewJob("j1", "", "u1", "scope.txt", []byte("body text"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %s, errors = %v", snap.Status, snap.Progress.Errors)
	}
	if snap.AnalysisID == "" || snap.Progress.Sections != 1 || snap.Progress.Sentences != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
	if job.FileData() != nil {
		t.Error("file data should be released after processing")
	}

	got, err := st.Get(context.Background(), snap.AnalysisID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RawText != "1 Scope\nbody text" || got.ContentHash != job.ContentHash {
		t.Errorf("stored = %+v", got)
	}
	if len(pub.sums) != 1 || pub.sums[0].AnalysisID != snap.AnalysisID {
		t.Errorf("published = %+v", pub.sums)
	}
}

func TestWorker_CachedDuplicate(t *testing.T) {
	st := memStore(t)
	an := &fakeAnalyzer{}
	w := NewWorker(an, st, nil, quietLogger())

	first := NewJob("j1", "", "u1", "a.txt", []byte("same bytes"))
	w.Process(context.Background(), first)
	second := NewJob("j2", "", "u1", "b.txt", []byte("same bytes"))
	w.Process(context.Background(), second)

	if an.calls != 1 {
		t.Errorf("analyzer ran %d times, want 1", an.calls)
	}
	s1, s2 := first.Snapshot(), second.Snapshot()
	if s2.Status != StatusCached || s2.AnalysisID != s1.AnalysisID {
		t.Errorf("second = %+v", s2)
	}
	if s2.Progress.Sections != 1 {
		t.Errorf("cached job should report stored counts, got %+v", s2.Progress)
	}

	other := NewJob("j3", "", "u2", "a.txt", []byte("same bytes"))
	w.Process(context.Background(), other)
	if other.Snapshot().Status != StatusCompleted {
		t.Errorf("other users do not share cache, got %s", other.Snapshot().Status)
	}
}

func TestWorker_AnalysisFailure(t *testing.T) {
	st := memStore(t)
	w := NewWorker(&fakeAnalyzer{err: errors.New("service down")}, st, nil, quietLogger())

	job := NewJob("j1", "", "u1", "a.pdf", []byte("%PDF"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "detecting_layout" {
		t.Errorf("status = %s phase = %s", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "analysis failed: detecting_layout: service down" {
		t.Errorf("errors = %v", snap.Progress.Errors)
	}
	if list, _ := st.List(context.Background(), "u1", 0); len(list) != 0 {
		t.Errorf("failed analysis should not be stored, got %d", len(list))
	}
}

func TestWorker_PublishErrorStillCompletes(t *testing.T) {
	w := NewWorker(&fakeAnalyzer{}, memStore(t), &fakePublisher{err: errors.New("503")}, quietLogger())
	job := NewJob("j1", "", "u1", "a.txt", []byte("x"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || len(snap.Progress.Errors) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestOrchestrator_ProcessesAndRejectsWhenFull(t *testing.T) {
	cfg := config.Defaults()
	cfg.WorkerCount = 2
	cfg.MaxQueueSize = 4

	o := NewOrchestrator(cfg, &lockedAnalyzer{}, memStore(t), nil, quietLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("j1", "", "u1", "a.txt", []byte("hello"))
	if err := o.Submit(job); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !job.Snapshot().Status.Done() {
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in %s", job.Snapshot().Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if o.GetJob("j1") != job {
		t.Error("job not registered")
	}
	if job.Snapshot().Status != StatusCompleted {
		t.Errorf("status = %s", job.Snapshot().Status)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Defaults()
	cfg.MaxQueueSize = 1

	// Not started, so nothing drains the queue.
	o := NewOrchestrator(cfg, &fakeAnalyzer{}, memStore(t), nil, quietLogger())
	if err := o.Submit(NewJob("a", "", "u", "a.txt", []byte("1"))); err != nil {
		t.Fatal(err)
	}
	overflow := NewJob("b", "", "u", "b.txt", []byte("2"))
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if s := overflow.Snapshot(); s.Status != StatusFailed || s.Phase != "queue_full" {
		t.Errorf("overflow = %s/%s", s.Status, s.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("depth = %d", o.QueueDepth())
	}
	counts := o.JobCounts()
	if counts[StatusQueued] != 1 || counts[StatusFailed] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

// lockedAnalyzer is a fakeAnalyzer safe for concurrent workers.
type lockedAnalyzer struct {
	mu sync.Mutex
	fakeAnalyzer
}

func (l *lockedAnalyzer) Run(ctx context.Context, filename string, data []byte, onPhase func(analyze.Phase)) (*analyze.Analysis, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeAnalyzer.Run(ctx, filename, data, onPhase)
}
