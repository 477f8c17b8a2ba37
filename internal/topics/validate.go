package topics

import (
	"fmt"
	"strings"
)

// validate performs structural checks on a topic set and reports every
// problem found.
func validate(ts []Topic) error {
	var errs []string

	ids := make(map[string]bool, len(ts))
	for _, t := range ts {
		if t.ID == "" {
			errs = append(errs, "topic with empty ID")
			continue
		}
		if ids[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate topic ID: %q", t.ID))
		}
		ids[t.ID] = true

		if t.Grade < 1 {
			errs = append(errs, fmt.Sprintf("topic %q has invalid grade %d", t.ID, t.Grade))
		}

		subs := make(map[string]bool, len(t.Subtopics))
		for _, s := range t.Subtopics {
			if s == "" {
				errs = append(errs, fmt.Sprintf("topic %q has an empty subtopic", t.ID))
			}
			if subs[s] {
				errs = append(errs, fmt.Sprintf("topic %q lists subtopic %q twice", t.ID, s))
			}
			subs[s] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
