package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoptill/internal/core/types"
)

func TestSuggestPicksHighestMatchingPercent(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{When: "grossTotal >= 1000.0", Percent: "5"},
		{When: "grossTotal >= 5000.0", Percent: "10"},
		{When: "lineCount >= 20", Percent: "15"},
	})
	require.NoError(t, err)
	ctx := context.Background()

	cases := []struct {
		name  string
		facts Facts
		want  string
	}{
		{"below every threshold", Facts{GrossTotal: types.MustMoney("999"), LineCount: 1}, "0"},
		{"first tier", Facts{GrossTotal: types.MustMoney("1000"), LineCount: 2}, "5"},
		{"second tier wins over first", Facts{GrossTotal: types.MustMoney("5000"), LineCount: 2}, "10"},
		{"line count rule dominates", Facts{GrossTotal: types.MustMoney("100"), LineCount: 20}, "15"},
		{"all rules match, highest wins", Facts{GrossTotal: types.MustMoney("9000"), LineCount: 25}, "15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.Suggest(ctx, tc.facts)
			assert.True(t, got.Equal(types.MustMoney(tc.want)), "got %s, want %s", got, tc.want)
		})
	}
}

func TestEmptyRuleSetSuggestsZero(t *testing.T) {
	engine, err := NewEngine(nil)
	require.NoError(t, err)
	got := engine.Suggest(context.Background(), Facts{GrossTotal: types.MustMoney("100000"), LineCount: 50})
	assert.True(t, got.IsZero())
}

func TestNewEngineRejectsBadRules(t *testing.T) {
	cases := []struct {
		name  string
		rules []Rule
	}{
		{"unparseable condition", []Rule{{When: "grossTotal >=", Percent: "5"}}},
		{"non-boolean condition", []Rule{{When: "grossTotal + 1.0", Percent: "5"}}},
		{"unknown variable", []Rule{{When: "cashier == 'bob'", Percent: "5"}}},
		{"bad percent", []Rule{{When: "true", Percent: "lots"}}},
		{"negative percent", []Rule{{When: "true", Percent: "-5"}}},
		{"percent above hundred", []Rule{{When: "true", Percent: "120"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngine(tc.rules)
			assert.Error(t, err)
		})
	}
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(`[{"when":"grossTotal >= 500.0","percent":"2.5"}]`)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "grossTotal >= 500.0", rules[0].When)

	rules, err = ParseRules("")
	require.NoError(t, err)
	assert.Nil(t, rules)

	_, err = ParseRules("{broken")
	assert.Error(t, err)
}
