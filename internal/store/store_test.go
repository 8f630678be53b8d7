package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/pdfstruct/internal/structure"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(title string) *structure.AnalysisResult {
	r := structure.NewResult()
	r.Metadata = structure.NewMetadata(3, "Jane Doe", title)
	r.Headers = []string{"ACME"}
	r.Sections = []structure.Section{{Heading: "Chapter 1 Intro", Content: []string{"It begins."}}}
	r.Recount()
	return r
}

func TestSaveAndGet(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	a := &Analysis{
		UserID:      "u1",
		DocID:       "d1",
		Filename:    "report.pdf",
		Format:      "pdf",
		ContentHash: "abc",
		Result:      sampleResult("Report"),
		RawText:     "Chapter 1 Intro\nIt begins.",
	}
	if err := s.Save(ctx, a); err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Fatalf("id/created not assigned: %+v", a)
	}

	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "report.pdf" || got.UserID != "u1" || got.RawText != a.RawText {
		t.Errorf("got %+v", got)
	}
	if got.Result.Metadata.Title != "Report" || got.Result.Counts.Sections != 1 {
		t.Errorf("result = %+v", got.Result)
	}
	if got.Result.Footers == nil {
		t.Error("empty lists should decode as empty, not nil")
	}
	if !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, a.CreatedAt)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := openTest(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSave_RequiresResult(t *testing.T) {
	s := openTest(t)
	if err := s.Save(context.Background(), &Analysis{UserID: "u"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFindByHash(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, user := range []string{"u1", "u1", "u2"} {
		a := &Analysis{UserID: user, DocID: "d", Filename: "f.txt", ContentHash: "h1",
			Result: sampleResult("v"), CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.Save(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.FindByHash(ctx, "u1", "h1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("expected newest u1 analysis, got created_at %v", got.CreatedAt)
	}
	if _, err := s.FindByHash(ctx, "u3", "h1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		a := &Analysis{UserID: "u1", DocID: "d", Filename: "f.txt", ContentHash: "h",
			Result: sampleResult("v"), RawText: "text", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Save(ctx, a); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, a.ID)
	}

	list, err := s.List(ctx, "u1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != ids[2] {
		t.Fatalf("list = %+v", list)
	}
	if list[0].RawText != "" {
		t.Error("list should omit raw text")
	}

	if err := s.Delete(ctx, ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
	list, _ = s.List(ctx, "u1", 0)
	if len(list) != 2 {
		t.Errorf("after delete got %d", len(list))
	}
	if empty, _ := s.List(ctx, "nobody", 0); empty == nil || len(empty) != 0 {
		t.Errorf("empty list = %v", empty)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pdfstruct.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Save(context.Background(), &Analysis{UserID: "u", Result: sampleResult("x")}); err != nil {
		t.Fatal(err)
	}
}
