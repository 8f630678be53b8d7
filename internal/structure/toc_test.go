package structure

import (
	"reflect"
	"testing"
)

func TestDetectTOC_DotLeader(t *testing.T) {
	got := DetectTOC(NewSentences([]string{"....................... 42"}))
	if len(got) != 1 || got[0] != "....................... 42" {
		t.Errorf("expected dot leader line, got %v", got)
	}
}

func TestDetectTOC_KeepsOriginalCaseAndOrder(t *testing.T) {
	in := NewSentences([]string{
		"Table of Contents",
		"Nothing to see.",
		"Chapter 1 Intro ........ 3",
		"2.1 Setup",
	})
	got := DetectTOC(in)
	want := []string{"Table of Contents", "Chapter 1 Intro ........ 3", "2.1 Setup"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDetectTOC_DuplicatesRetained(t *testing.T) {
	in := NewSentences([]string{"See Section 4", "See Section 4"})
	got := DetectTOC(in)
	if len(got) != 2 {
		t.Errorf("expected 2 entries, got %d: %v", len(got), got)
	}
}

func TestDetectTOC_EmptyIsValid(t *testing.T) {
	got := DetectTOC(NewSentences([]string{"Plain prose only."}))
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
	if got := DetectTOC(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice for nil input, got %#v", got)
	}
}

func TestDetectTOC_Idempotent(t *testing.T) {
	in := NewSentences([]string{"Contents", "a.", "iii - Foreword"})
	if !reflect.DeepEqual(DetectTOC(in), DetectTOC(in)) {
		t.Error("expected identical output on repeat")
	}
}
