// Package rewrite applies ordered text substitutions to post bodies, turning
// Jekyll/Liquid markup into its Hugo equivalent.
package rewrite

import (
	"context"
	"regexp"

	"github.com/pkg/errors"

	"github.com/jingkaihe/j2hugo/pkg/logger"
)

// Rule is a single global find-and-replace. Replace may reference capture
// groups with ${n}.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// Apply replaces every match of the rule in text.
func (r Rule) Apply(text string) string {
	return r.Pattern.ReplaceAllString(text, r.Replace)
}

// RuleSpec is the configuration form of a Rule.
type RuleSpec struct {
	Name    string `mapstructure:"name"`
	Pattern string `mapstructure:"pattern"`
	Replace string `mapstructure:"replace"`
}

// Compile turns a RuleSpec into a Rule.
func (s RuleSpec) Compile() (Rule, error) {
	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return Rule{}, errors.Wrapf(err, "invalid pattern for rule %q", s.Name)
	}
	name := s.Name
	if name == "" {
		name = s.Pattern
	}
	return Rule{Name: name, Pattern: re, Replace: s.Replace}, nil
}

var (
	// MoreRule turns the Jekyll excerpt separator into Hugo's summary divider.
	MoreRule = Rule{
		Name:    "more",
		Pattern: regexp.MustCompile(`<!--\smore\s-->`),
		Replace: "<!--more-->",
	}

	// RawRule unwraps Liquid raw blocks. The match is single-line and greedy.
	RawRule = Rule{
		Name:    "raw",
		Pattern: regexp.MustCompile(`\{%\sraw\s%\}(.*)\{%\sendraw\s%\}`),
		Replace: "${1}",
	}
)

// DefaultRules returns the built-in rules in the order they run.
func DefaultRules() []Rule {
	return []Rule{MoreRule, RawRule}
}

// Transformer runs a fixed sequence of rules over body text.
type Transformer struct {
	rules []Rule
}

// Option configures a Transformer.
type Option func(*Transformer) error

// WithRules replaces the rule set entirely.
func WithRules(rules ...Rule) Option {
	return func(t *Transformer) error {
		t.rules = append([]Rule(nil), rules...)
		return nil
	}
}

// WithExtraRules compiles specs and appends them after the current rules.
func WithExtraRules(specs ...RuleSpec) Option {
	return func(t *Transformer) error {
		for _, spec := range specs {
			rule, err := spec.Compile()
			if err != nil {
				return err
			}
			t.rules = append(t.rules, rule)
		}
		return nil
	}
}

// New creates a Transformer seeded with DefaultRules.
func New(opts ...Option) (*Transformer, error) {
	t := &Transformer{rules: DefaultRules()}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, errors.Wrap(err, "failed to configure body transformer")
		}
	}
	return t, nil
}

// Rules returns the rules in application order.
func (t *Transformer) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Transform applies every rule in order and returns the rewritten text.
func (t *Transformer) Transform(ctx context.Context, text string) string {
	for _, rule := range t.rules {
		out := rule.Apply(text)
		if out != text {
			logger.G(ctx).WithField("rule", rule.Name).Debug("body rule applied")
		}
		text = out
	}
	return text
}
