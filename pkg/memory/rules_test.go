package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rs, err := LoadRules("")
	require.NoError(t, err)
	assert.Empty(t, rs.Replacements)
	assert.Empty(t, rs.RegexReplacements)
}

func TestLoadRulesAbsentFile(t *testing.T) {
	rs, err := LoadRules(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, rs.Replacements)
	assert.Empty(t, rs.RegexReplacements)
}

func TestLoadRulesValid(t *testing.T) {
	path := writeRuleFile(t, `{
		"replacements": {"AI助手": "陪伴代理A"},
		"regex_replacements": [{"pattern": "\\s+", "replacement": " "}]
	}`)

	rs, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "陪伴代理A", rs.Replacements["AI助手"])
	require.Len(t, rs.RegexReplacements, 1)
	assert.Equal(t, `\s+`, rs.RegexReplacements[0].Pattern)
	assert.NotNil(t, rs.RegexReplacements[0].re)
}

func TestLoadRulesMalformedJSON(t *testing.T) {
	path := writeRuleFile(t, `{"replacements": `)

	_, err := LoadRules(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
}

func TestLoadRulesSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"replacements not an object", `{"replacements": ["a"]}`},
		{"replacement value not a string", `{"replacements": {"a": 1}}`},
		{"empty replacement key", `{"replacements": {"": "x"}}`},
		{"regex list not a list", `{"regex_replacements": {"pattern": "a"}}`},
		{"regex entry not an object", `{"regex_replacements": ["a"]}`},
		{"regex entry missing pattern", `{"regex_replacements": [{"replacement": "x"}]}`},
		{"regex entry missing replacement", `{"regex_replacements": [{"pattern": "a"}]}`},
		{"regex pattern empty", `{"regex_replacements": [{"pattern": "", "replacement": "x"}]}`},
		{"regex pattern does not compile", `{"regex_replacements": [{"pattern": "[", "replacement": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRuleFile(t, tt.content)
			_, err := LoadRules(path)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr, "expected *ConfigError, got %v", err)
		})
	}
}

func TestLoadRulesEmptyRegexReplacementAllowed(t *testing.T) {
	// Deleting matches is a legitimate rule: replacement may be "".
	path := writeRuleFile(t, `{"regex_replacements": [{"pattern": "x+", "replacement": ""}]}`)

	rs, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "ab", rs.Normalize("axxb", nil))
}

func TestLoadRulesDotsInLiteralKeys(t *testing.T) {
	path := writeRuleFile(t, `{"replacements": {"Dr. Wu": "the doctor"}}`)

	rs, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "ask the doctor", rs.Normalize("ask Dr. Wu", nil))
}
