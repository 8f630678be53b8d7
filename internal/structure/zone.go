package structure

// Zone is the vertical band a block falls into.
type Zone int

const (
	ZoneBody Zone = iota
	ZoneHeader
	ZoneFooter
)

func (z Zone) String() string {
	switch z {
	case ZoneHeader:
		return "header"
	case ZoneFooter:
		return "footer"
	}
	return "body"
}

// ZoneRule holds the fractional page heights that bound the header and footer zones.
type ZoneRule struct {
	HeaderFraction float64 // Title blocks starting above this fraction are headers.
	FooterFraction float64 // Blocks ending below this fraction are footers.
}

// DefaultZoneRule returns the 15% / 85% rule.
func DefaultZoneRule() ZoneRule {
	return ZoneRule{HeaderFraction: 0.15, FooterFraction: 0.85}
}

// Classify decides the zone of a single block. The header test runs first,
// so a title block touching both bands is a header.
func (r ZoneRule) Classify(b Block, pageHeight float64) Zone {
	if b.Label == LabelTitle && b.Top < r.HeaderFraction*pageHeight {
		return ZoneHeader
	}
	if b.Bottom > r.FooterFraction*pageHeight {
		return ZoneFooter
	}
	return ZoneBody
}

// ClassifyZone applies DefaultZoneRule.
func ClassifyZone(b Block, pageHeight float64) Zone {
	return DefaultZoneRule().Classify(b, pageHeight)
}

// OrderedSet is a set of strings that remembers insertion order.
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
}

// Add inserts s and reports whether it was new.
func (s *OrderedSet) Add(v string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Items returns the members in insertion order. The result is never nil.
func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

func (s *OrderedSet) Len() int { return len(s.items) }

// ZoneCollector accumulates header and footer texts for one document.
type ZoneCollector struct {
	Rule    ZoneRule
	Headers OrderedSet
	Footers OrderedSet
}

// NewZoneCollector creates a collector for one document.
func NewZoneCollector(rule ZoneRule) *ZoneCollector {
	return &ZoneCollector{Rule: rule}
}

// Collect classifies every block on a page. Body blocks are dropped.
func (c *ZoneCollector) Collect(page PageLayout) {
	for _, b := range page.Blocks {
		switch c.Rule.Classify(b, page.Geometry.Height) {
		case ZoneHeader:
			c.Headers.Add(b.Text)
		case ZoneFooter:
			c.Footers.Add(b.Text)
		}
	}
}

// CollectAll runs Collect over pages in order.
func (c *ZoneCollector) CollectAll(pages []PageLayout) {
	for _, p := range pages {
		c.Collect(p)
	}
}
