package rewrite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformDefaultRules(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"more marker", "intro\n<!-- more -->\nrest", "intro\n<!--more-->\nrest"},
		{"every more marker", "<!-- more --> a <!-- more -->", "<!--more--> a <!--more-->"},
		{"more with tabs", "<!--\tmore\t-->", "<!--more-->"},
		{"more without spaces untouched", "<!--more-->", "<!--more-->"},
		{"more with double spaces untouched", "<!--  more  -->", "<!--  more  -->"},
		{"raw block", "{% raw %}TEXT{% endraw %}", "TEXT"},
		{"raw keeps liquid inside", "{% raw %}{{ site.title }}{% endraw %}", "{{ site.title }}"},
		{"raw inline", "before {% raw %}{{x}}{% endraw %} after", "before {{x}} after"},
		{"raw across lines untouched", "{% raw %}\nmulti\n{% endraw %}", "{% raw %}\nmulti\n{% endraw %}"},
		{"unbalanced raw untouched", "{% raw %}no end", "{% raw %}no end"},
		{"raw on several lines", "{% raw %}a{% endraw %}\n{% raw %}b{% endraw %}", "a\nb"},
		{"plain text", "nothing to see", "nothing to see"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tr.Transform(context.Background(), tt.input))
		})
	}
}

func TestRawRuleIsGreedy(t *testing.T) {
	out := RawRule.Apply("{% raw %}a{% endraw %} b {% raw %}c{% endraw %}")
	assert.Equal(t, "a{% endraw %} b {% raw %}c", out)
}

func TestRuleOrder(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	rules := tr.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "more", rules[0].Name)
	assert.Equal(t, "raw", rules[1].Name)
}

func TestWithExtraRules(t *testing.T) {
	tr, err := New(WithExtraRules(
		RuleSpec{Name: "post_url", Pattern: `\{%\s*post_url\s+(\S+)\s*%\}`, Replace: `{{< ref "${1}" >}}`},
		RuleSpec{Pattern: `\bJekyll\b`, Replace: "Hugo"},
	))
	require.NoError(t, err)

	rules := tr.Rules()
	require.Len(t, rules, 4)
	assert.Equal(t, `\bJekyll\b`, rules[3].Name)

	out := tr.Transform(context.Background(), "See {% post_url 2019-01-01-intro %} built with Jekyll <!-- more -->")
	assert.Equal(t, `See {{< ref "2019-01-01-intro" >}} built with Hugo <!--more-->`, out)
}

func TestWithExtraRulesInvalidPattern(t *testing.T) {
	_, err := New(WithExtraRules(RuleSpec{Name: "broken", Pattern: "("}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestWithRules(t *testing.T) {
	tr, err := New(WithRules(MoreRule))
	require.NoError(t, err)

	out := tr.Transform(context.Background(), "{% raw %}x{% endraw %}<!-- more -->")
	assert.Equal(t, "{% raw %}x{% endraw %}<!--more-->", out)
}
