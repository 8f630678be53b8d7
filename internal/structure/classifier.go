package structure

// Config controls the classifier.
type Config struct {
	Zones           ZoneRule
	FoldHeadingCase bool // Match heading patterns against lower-cased text.
	MinParagraphLen int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Zones:           DefaultZoneRule(),
		MinParagraphLen: DefaultMinParagraphLen,
	}
}

// Classifier bundles the rule sets chosen by a Config. It holds no
// per-document state and is safe for concurrent use.
type Classifier struct {
	cfg      Config
	toc      *PatternSet
	headings *PatternSet
}

// NewClassifier creates a classifier. Zero thresholds fall back to defaults.
func NewClassifier(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.Zones.HeaderFraction <= 0 {
		cfg.Zones.HeaderFraction = def.Zones.HeaderFraction
	}
	if cfg.Zones.FooterFraction <= 0 {
		cfg.Zones.FooterFraction = def.Zones.FooterFraction
	}
	if cfg.MinParagraphLen <= 0 {
		cfg.MinParagraphLen = def.MinParagraphLen
	}
	return &Classifier{
		cfg:      cfg,
		toc:      TOCPatterns,
		headings: NewHeadingPatterns(cfg.FoldHeadingCase),
	}
}

func (c *Classifier) Config() Config { return c.cfg }

// BreakPatterns returns the TOC and heading sets in use. A line matching
// either is a structural line rather than wrapped body text.
func (c *Classifier) BreakPatterns() []*PatternSet {
	return []*PatternSet{c.toc, c.headings}
}

// Zones returns a fresh collector for one document.
func (c *Classifier) Zones() *ZoneCollector {
	return NewZoneCollector(c.cfg.Zones)
}

func (c *Classifier) TOC(sentences []Sentence) []string {
	return detectTOC(sentences, c.toc)
}

func (c *Classifier) Sections(sentences []Sentence) []Section {
	return detectSections(sentences, c.headings)
}

func (c *Classifier) Paragraphs(sentences []Sentence) []string {
	return Paragraphs(sentences, c.cfg.MinParagraphLen)
}

// Classify runs every rule over already extracted inputs.
func (c *Classifier) Classify(meta Metadata, pages []PageLayout, sentences []Sentence) *AnalysisResult {
	zones := c.Zones()
	zones.CollectAll(pages)
	return Aggregate(meta, zones, c.Paragraphs(sentences), c.TOC(sentences), c.Sections(sentences))
}
