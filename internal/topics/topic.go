// Package topics is the catalogue of practice topics the engine knows
// about. Topic IDs are the keys used by answer history, the question bank
// and the generators.
package topics

// Strand groups related topics for display.
type Strand string

const (
	StrandNumberPlace Strand = "number-and-place-value"
	StrandAddSub      Strand = "addition-and-subtraction"
	StrandMultDiv     Strand = "multiplication-and-division"
	StrandFractions   Strand = "fractions"
	StrandMeasurement Strand = "measurement"
)

// AllStrands returns all strands in display order.
func AllStrands() []Strand {
	return []Strand{
		StrandNumberPlace,
		StrandAddSub,
		StrandMultDiv,
		StrandFractions,
		StrandMeasurement,
	}
}

// StrandDisplayName returns a human-readable name for a strand.
func StrandDisplayName(s Strand) string {
	switch s {
	case StrandNumberPlace:
		return "Number & Place Value"
	case StrandAddSub:
		return "Addition & Subtraction"
	case StrandMultDiv:
		return "Multiplication & Division"
	case StrandFractions:
		return "Fractions"
	case StrandMeasurement:
		return "Measurement"
	default:
		return string(s)
	}
}

// Topic is one practice topic.
type Topic struct {
	ID          string
	Name        string
	Description string
	Strand      Strand
	Grade       int
	Subtopics   []string
}

// HasSubtopic reports whether sub belongs to the topic.
func (t Topic) HasSubtopic(sub string) bool {
	for _, s := range t.Subtopics {
		if s == sub {
			return true
		}
	}
	return false
}
