package topics

func seed() []Topic {
	return []Topic{
		{
			ID:          "place-value",
			Name:        "Place Value",
			Description: "Reading, writing and comparing multi-digit numbers",
			Strand:      StrandNumberPlace,
			Grade:       3,
			Subtopics:   []string{"read-write", "compare", "rounding"},
		},
		{
			ID:          "addition",
			Name:        "Addition",
			Description: "Adding whole numbers, with and without regrouping",
			Strand:      StrandAddSub,
			Grade:       3,
			Subtopics:   []string{"no-regroup", "regroup", "three-addends", "word-problems"},
		},
		{
			ID:          "subtraction",
			Name:        "Subtraction",
			Description: "Subtracting whole numbers, including across zeros",
			Strand:      StrandAddSub,
			Grade:       3,
			Subtopics:   []string{"no-regroup", "regroup", "across-zeros", "word-problems"},
		},
		{
			ID:          "multiplication",
			Name:        "Multiplication",
			Description: "Times tables and multi-digit multiplication",
			Strand:      StrandMultDiv,
			Grade:       4,
			Subtopics:   []string{"facts", "by-ten", "two-digit", "word-problems"},
		},
		{
			ID:          "division",
			Name:        "Division",
			Description: "Division facts and long division with remainders",
			Strand:      StrandMultDiv,
			Grade:       4,
			Subtopics:   []string{"facts", "remainders", "long-division"},
		},
		{
			ID:          "fractions",
			Name:        "Fractions",
			Description: "Equivalent fractions, comparison and like-denominator arithmetic",
			Strand:      StrandFractions,
			Grade:       5,
			Subtopics:   []string{"equivalent", "compare", "add-like", "subtract-like"},
		},
		{
			ID:          "measurement",
			Name:        "Measurement",
			Description: "Length, mass, time and unit conversion",
			Strand:      StrandMeasurement,
			Grade:       4,
			Subtopics:   []string{"length", "time", "conversion"},
		},
	}
}
