package structure

// DetectTOC returns the original text of every sentence that matches the
// default TOC patterns, in document order. Duplicates are kept.
func DetectTOC(sentences []Sentence) []string {
	return detectTOC(sentences, TOCPatterns)
}

func detectTOC(sentences []Sentence, set *PatternSet) []string {
	toc := []string{}
	for _, s := range sentences {
		if set.MatchesAny(s.Text) {
			toc = append(toc, s.Text)
		}
	}
	return toc
}
