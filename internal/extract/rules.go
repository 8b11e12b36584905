package extract

import (
	_ "embed"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Policy decides how multiple candidate matches for a field resolve.
type Policy string

const (
	// PolicyFirst tries candidate patterns in declared order; the first
	// pattern that matches anywhere in the text wins, and only its first
	// match is used.
	PolicyFirst Policy = "first"
	// PolicyLast collects matches from all candidate patterns across the
	// whole text and keeps the one latest by text position.
	PolicyLast Policy = "last"
)

// Transform names the conversion applied to a captured value.
type Transform string

const (
	TransformString Transform = "string"
	TransformNumber Transform = "number"
	TransformBool   Transform = "bool"
	TransformNotes  Transform = "notes"
)

// Rule is one field's compiled extraction cascade.
type Rule struct {
	Key       string
	Policy    Policy
	Transform Transform
	Patterns  []*regexp.Regexp
}

// RuleSet holds the ordered field rules for all supported layouts.
type RuleSet struct {
	Rules []Rule
}

// ruleSpec is the YAML shape of one field rule.
type ruleSpec struct {
	Key       string    `yaml:"key"`
	Policy    Policy    `yaml:"policy"`
	Transform Transform `yaml:"transform"`
	DotAll    bool      `yaml:"dotall"`
	Patterns  []string  `yaml:"patterns"`
}

type rulesFile struct {
	Fields []ruleSpec `yaml:"fields"`
}

//go:embed rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the built-in rule set covering the two known
// invoice layouts. The embedded rules must compile.
func DefaultRules() *RuleSet {
	rs, err := CompileRules(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return rs
}

// LoadRules reads and compiles a rule set from a YAML file, allowing
// additional document layouts without a code change.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read rules %s", path)
	}
	return CompileRules(data)
}

// CompileRules parses YAML rule definitions and compiles their
// patterns. Patterns match case-insensitively in multiline mode;
// rules with dotall set instead let "." cross newlines with "$"
// anchored to the end of the text.
func CompileRules(data []byte) (*RuleSet, error) {
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrap(err, "extract: parse rules")
	}
	if len(rf.Fields) == 0 {
		return nil, eris.New("extract: rule set defines no fields")
	}

	rs := &RuleSet{Rules: make([]Rule, 0, len(rf.Fields))}
	for _, spec := range rf.Fields {
		if spec.Key == "" {
			return nil, eris.New("extract: rule missing field key")
		}
		if len(spec.Patterns) == 0 {
			return nil, eris.Errorf("extract: rule %q has no patterns", spec.Key)
		}

		policy := spec.Policy
		if policy == "" {
			policy = PolicyFirst
		}
		if policy != PolicyFirst && policy != PolicyLast {
			return nil, eris.Errorf("extract: rule %q has unknown policy %q", spec.Key, spec.Policy)
		}

		transform := spec.Transform
		if transform == "" {
			transform = TransformString
		}
		switch transform {
		case TransformString, TransformNumber, TransformBool, TransformNotes:
		default:
			return nil, eris.Errorf("extract: rule %q has unknown transform %q", spec.Key, spec.Transform)
		}

		// Dotall rules drop multiline so "$" keeps meaning end of
		// text; otherwise a spanning capture stops at the first line
		// break.
		flags := "(?im)"
		if spec.DotAll {
			flags = "(?is)"
		}

		rule := Rule{Key: spec.Key, Policy: policy, Transform: transform}
		for _, pat := range spec.Patterns {
			re, err := regexp.Compile(flags + pat)
			if err != nil {
				return nil, eris.Wrapf(err, "extract: rule %q pattern %q", spec.Key, pat)
			}
			if re.NumSubexp() < 1 {
				return nil, eris.Errorf("extract: rule %q pattern %q has no capture group", spec.Key, pat)
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		rs.Rules = append(rs.Rules, rule)
	}

	return rs, nil
}
