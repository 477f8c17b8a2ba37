package topics

import (
	"fmt"
	"sort"
)

// catalog holds the topics with precomputed indices.
type catalog struct {
	topics   []Topic
	byID     map[string]*Topic
	byGrade  map[int][]Topic
	byStrand map[Strand][]Topic
}

var c = mustBuild(seed())

func mustBuild(ts []Topic) *catalog {
	if err := validate(ts); err != nil {
		panic(fmt.Sprintf("topics: invalid catalogue: %v", err))
	}
	return build(ts)
}

func build(ts []Topic) *catalog {
	cat := &catalog{
		topics:   ts,
		byID:     make(map[string]*Topic, len(ts)),
		byGrade:  make(map[int][]Topic),
		byStrand: make(map[Strand][]Topic),
	}
	for i := range cat.topics {
		t := cat.topics[i]
		cat.byID[t.ID] = &cat.topics[i]
		cat.byGrade[t.Grade] = append(cat.byGrade[t.Grade], t)
		cat.byStrand[t.Strand] = append(cat.byStrand[t.Strand], t)
	}
	for _, group := range cat.byStrand {
		sort.SliceStable(group, func(i, j int) bool { return group[i].Grade < group[j].Grade })
	}
	return cat
}

// All returns every topic in catalogue order.
func All() []Topic {
	out := make([]Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// Get returns the topic with the given ID.
func Get(id string) (Topic, error) {
	t, ok := c.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("unknown topic %q", id)
	}
	return *t, nil
}

// Exists reports whether id names a known topic.
func Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ByGrade returns the topics for a grade, in catalogue order.
func ByGrade(grade int) []Topic {
	return c.byGrade[grade]
}

// ByStrand returns a strand's topics ordered by grade.
func ByStrand(s Strand) []Topic {
	return c.byStrand[s]
}

// ValidateSubtopics returns an error naming the first entry of subs that
// is not a subtopic of topic id.
func ValidateSubtopics(id string, subs []string) error {
	t, err := Get(id)
	if err != nil {
		return err
	}
	for _, s := range subs {
		if !t.HasSubtopic(s) {
			return fmt.Errorf("topic %q has no subtopic %q", id, s)
		}
	}
	return nil
}
