package structure

import "testing"

func TestTOCPatterns(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Table of Contents", true},
		{"CONTENTS", true},
		{"See the chapters below.", true},
		{"Sections overview", true},
		{"Chapter IV The Return", true},
		{"Appendix 2 Data", true},
		{"2.1 Background", true},
		{"10 Results", true},
		{"iv - Preface", true},
		{"ii a – Notes", true},
		{"Introduction ......... 12", true},
		{"....................... 42", true},
		{"The results were inconclusive.", false},
		{"Introduction ... 12 pages", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := MatchesAny(tt.text, TOCPatterns); got != tt.want {
				t.Errorf("MatchesAny(%q, toc) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHeadingPatterns(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Chapter 1 Intro", true},
		{"CHAPTER IV", true},
		{"section 3 Scope", true},
		{"2.1 Background", true},
		{"EXECUTIVE SUMMARY", true},
		{"PART 2 RESULTS", true},
		{"Random text before heading.", false},
		{"....................... 42", false},
		{"Table of Contents", false},
		{"Summary of chapters", false},
		{"NASA launched it.", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := MatchesAny(tt.text, HeadingPatterns); got != tt.want {
				t.Errorf("MatchesAny(%q, heading) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPatternSets_CaseAsymmetry(t *testing.T) {
	// Uppercase-line rule only sees original case.
	if !HeadingPatterns.MatchesAny("INTRODUCTION") {
		t.Error("expected uppercase line to be a heading")
	}
	folded := NewHeadingPatterns(true)
	if folded.MatchesAny("INTRODUCTION") {
		t.Error("expected folded heading set to miss uppercase-only rule")
	}
	if !folded.MatchesAny("Chapter 3 Methods") {
		t.Error("expected folded heading set to match keyword rule")
	}
	if NewHeadingPatterns(false) != HeadingPatterns {
		t.Error("expected default heading set when not folding")
	}
}
