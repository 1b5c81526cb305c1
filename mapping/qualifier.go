package mapping

import (
	"fmt"
	"strings"

	"tsload/ts"
)

// QualifierMap remaps point qualifiers. Rules look like "source:mapped";
// an empty mapped side removes the qualifier. Qualifiers with no matching
// rule are retained unchanged, and points carrying no qualifiers at all
// receive the default list.
type QualifierMap struct {
	rules    map[string]*string
	defaults []string
}

func NewQualifierMap() *QualifierMap {
	return &QualifierMap{rules: make(map[string]*string)}
}

func (q *QualifierMap) Enabled() bool {
	return len(q.rules) > 0 || len(q.defaults) > 0
}

func (q *QualifierMap) AddRule(rule string) error {
	source, mapped, found := strings.Cut(rule, ":")
	if !found {
		return fmt.Errorf("invalid qualifier rule %q: missing ':'", rule)
	}
	if source == "" {
		return fmt.Errorf("invalid qualifier rule %q: empty source", rule)
	}

	var target *string
	if mapped != "" {
		target = &mapped
	}
	q.rules[source] = target
	return nil
}

// Sets the qualifier list applied to points that carry no qualifiers
func (q *QualifierMap) SetDefaults(defaults []string) {
	q.defaults = defaults
}

// Maps each of the point's qualifiers independently. No-op when the map
// is empty.
func (q *QualifierMap) Apply(p *ts.Point) {
	if !q.Enabled() || p.Kind == ts.Gap {
		return
	}

	if len(p.Qualifiers) == 0 {
		p.SetQualifiers(q.defaults)
		return
	}

	mapped := make([]string, 0, len(p.Qualifiers))
	for _, qual := range p.Qualifiers {
		target, ok := q.rules[qual]
		if !ok {
			mapped = append(mapped, qual)
			continue
		}
		if target != nil {
			mapped = append(mapped, *target)
		}
	}
	p.SetQualifiers(mapped)
}
