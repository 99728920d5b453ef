package memory

import (
	"fmt"
	"os"
	"regexp"

	"github.com/knadh/koanf/parsers/json"
)

// RegexRule is a single ordered regex substitution. Rules apply in file
// order; later rules see the output of earlier ones.
type RegexRule struct {
	Pattern     string
	Replacement string

	re *regexp.Regexp
}

// RuleSet holds the normalization rules applied to memory queries before
// they reach the vector backend. Immutable after load; rule files are not
// watched, a changed file takes effect on process restart only.
type RuleSet struct {
	Replacements      map[string]string
	RegexReplacements []RegexRule
}

// EmptyRuleSet returns a rule set with no rules. Normalize on it is the
// identity function.
func EmptyRuleSet() *RuleSet {
	return &RuleSet{Replacements: map[string]string{}}
}

// LoadRules reads a rule file from path. An empty path or an absent file
// yields an empty rule set and no error. A file that exists but does not
// parse, violates the schema, or carries a pattern that does not compile
// fails with a *ConfigError; regexes are compiled here so Normalize can
// never fail on rule content.
//
// The parsed document is walked directly rather than flattened through a
// koanf instance: literal replacement keys may contain arbitrary
// characters, including the key delimiter.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return EmptyRuleSet(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptyRuleSet(), nil
		}
		return nil, &ConfigError{Path: path, Reason: "unreadable rule file", Err: err}
	}

	doc, err := json.Parser().Unmarshal(raw)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "invalid JSON", Err: err}
	}

	rs := &RuleSet{Replacements: map[string]string{}}

	if v, ok := doc["replacements"]; ok {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, &ConfigError{Path: path, Reason: "replacements must be an object of strings"}
		}
		for key, val := range obj {
			s, ok := val.(string)
			if !ok {
				return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("replacement value for %q must be a string", key)}
			}
			if key == "" {
				return nil, &ConfigError{Path: path, Reason: "replacement keys must be non-empty"}
			}
			rs.Replacements[key] = s
		}
	}

	if v, ok := doc["regex_replacements"]; ok {
		list, ok := v.([]interface{})
		if !ok {
			return nil, &ConfigError{Path: path, Reason: "regex_replacements must be a list of objects"}
		}
		for i, entry := range list {
			obj, ok := entry.(map[string]interface{})
			if !ok {
				return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("regex_replacements[%d] must be an object", i)}
			}
			rule, err := parseRegexRule(obj, i, path)
			if err != nil {
				return nil, err
			}
			rs.RegexReplacements = append(rs.RegexReplacements, rule)
		}
	}

	return rs, nil
}

func parseRegexRule(obj map[string]interface{}, idx int, path string) (RegexRule, error) {
	rawPattern, hasPattern := obj["pattern"]
	rawReplacement, hasReplacement := obj["replacement"]
	if !hasPattern || !hasReplacement {
		return RegexRule{}, &ConfigError{Path: path, Reason: fmt.Sprintf("regex_replacements[%d] must have pattern and replacement", idx)}
	}

	pattern, ok := rawPattern.(string)
	if !ok || pattern == "" {
		return RegexRule{}, &ConfigError{Path: path, Reason: fmt.Sprintf("regex_replacements[%d] pattern must be a non-empty string", idx)}
	}
	replacement, ok := rawReplacement.(string)
	if !ok {
		return RegexRule{}, &ConfigError{Path: path, Reason: fmt.Sprintf("regex_replacements[%d] replacement must be a string", idx)}
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return RegexRule{}, &ConfigError{Path: path, Reason: fmt.Sprintf("regex_replacements[%d] pattern does not compile", idx), Err: err}
	}

	return RegexRule{Pattern: pattern, Replacement: replacement, re: re}, nil
}
