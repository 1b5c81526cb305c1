package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"tsload/ts"
)

// GradeMap remaps point grade codes. Rules look like "low,high:mapped"
// (a contiguous source interval), "source:mapped" (a single code), or
// ":mapped" (the default applied to codes not otherwise listed). An empty
// mapped side removes the grade. The map is sparse: ranges are expanded
// to individual entries when the rule is registered.
//
// Once any rule is registered the map is enabled and every point's grade is
// passed through it, falling back to the default, which may itself be
// "no grade".
type GradeMap struct {
	rules      map[int32]*int32
	def        *int32
	hasDefault bool
}

func NewGradeMap() *GradeMap {
	return &GradeMap{rules: make(map[int32]*int32)}
}

func (g *GradeMap) Enabled() bool {
	return len(g.rules) > 0 || g.hasDefault
}

func (g *GradeMap) AddRule(rule string) error {
	source, mapped, found := strings.Cut(rule, ":")
	if !found {
		return fmt.Errorf("invalid grade rule %q: missing ':'", rule)
	}

	var target *int32
	if mapped != "" {
		code, err := parseGrade(mapped)
		if err != nil {
			return fmt.Errorf("invalid grade rule %q: %w", rule, err)
		}
		target = &code
	}

	if source == "" {
		g.def = target
		g.hasDefault = true
		return nil
	}

	lowStr, highStr, found := strings.Cut(source, ",")
	if !found {
		// Single bound, the range collapses to one code
		highStr = lowStr
	}

	low, err := parseGrade(lowStr)
	if err != nil {
		return fmt.Errorf("invalid grade rule %q: %w", rule, err)
	}
	high, err := parseGrade(highStr)
	if err != nil {
		return fmt.Errorf("invalid grade rule %q: %w", rule, err)
	}
	if low > high {
		return fmt.Errorf("invalid grade rule %q: range bounds out of order", rule)
	}

	for code := low; ; code++ {
		g.rules[code] = target
		if code == high {
			break
		}
	}
	return nil
}

// Replaces the point's grade with the mapped value for its source grade,
// or the default if unlisted. No-op when the map is empty.
func (g *GradeMap) Apply(p *ts.Point) {
	if !g.Enabled() || p.Kind == ts.Gap {
		return
	}

	if p.Grade != nil {
		if mapped, ok := g.rules[*p.Grade]; ok {
			p.Grade = clone(mapped)
			return
		}
	}
	p.Grade = clone(g.def)
}

func parseGrade(s string) (int32, error) {
	code, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("grade %q is not an integer", s)
	}
	return int32(code), nil
}

func clone(grade *int32) *int32 {
	if grade == nil {
		return nil
	}
	code := *grade
	return &code
}
