package memory

import (
	"sort"
	"strings"
)

// Normalize rewrites a query through the rule set before it is embedded.
// overrides is an ephemeral per-call overlay on the literal replacements;
// it wins on key collision and is never persisted.
//
// Literal rules are applied in a single pass over the original text: a
// replacement result is never re-scanned for further literal matches, so
// rule values may safely contain other rule keys without chaining. Regex
// rules then apply in declared order, each over the previous output, with
// global single-pass replace semantics.
func (rs *RuleSet) Normalize(query string, overrides map[string]string) string {
	if query == "" {
		return ""
	}

	effective := rs.Replacements
	if len(overrides) > 0 {
		effective = make(map[string]string, len(rs.Replacements)+len(overrides))
		for k, v := range rs.Replacements {
			effective[k] = v
		}
		for k, v := range overrides {
			if k == "" {
				continue
			}
			effective[k] = v
		}
	}

	out := replaceLiterals(query, effective)
	for _, rule := range rs.RegexReplacements {
		out = rule.re.ReplaceAllString(out, rule.Replacement)
	}
	return out
}

// replaceLiterals substitutes every occurrence of each key in a single
// left-to-right scan. At a given position the longest matching key wins;
// ties cannot occur since keys are distinct. Scanning resumes after the
// consumed source text, not inside the replacement.
func replaceLiterals(s string, rules map[string]string) string {
	if len(rules) == 0 {
		return s
	}

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	// Longest first so overlapping keys resolve deterministically.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		matched := false
		for _, k := range keys {
			if strings.HasPrefix(s[i:], k) {
				sb.WriteString(rules[k])
				i += len(k)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(s[i])
			i++
		}
	}
	return sb.String()
}
