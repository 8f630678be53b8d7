package structure

// DetectSections segments the sentence stream with the default heading patterns.
func DetectSections(sentences []Sentence) []Section {
	return detectSections(sentences, HeadingPatterns)
}

// detectSections opens a section at every heading match and appends the
// following non-heading sentences to it. Sentences before the first heading
// belong to no section and are dropped.
func detectSections(sentences []Sentence, headings *PatternSet) []Section {
	sections := []Section{}
	var current *Section

	for _, s := range sentences {
		if headings.MatchesAny(s.Text) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{Heading: s.Text, Content: []string{}}
			continue
		}
		if current != nil {
			current.Content = append(current.Content, s.Text)
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}
