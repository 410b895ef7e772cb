// Package pricing evaluates configurable discount rules against a bill
// draft and suggests a discount percentage. Rules are CEL expressions
// over the draft's totals, so the shop can tune its promotions without
// a rebuild.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/types"
	"shoptill/pkg/logger"
)

// Rule pairs a CEL condition with the discount percent it grants.
// Example: {"when": "grossTotal >= 5000.0", "percent": "5"}.
type Rule struct {
	When    string `json:"when"`
	Percent string `json:"percent"`
}

// Facts carries the draft figures a rule condition can reference.
type Facts struct {
	GrossTotal types.Money
	LineCount  int
}

type compiledRule struct {
	source  Rule
	program cel.Program
	percent types.Money
}

// Engine evaluates a fixed rule set. Compile once at startup, evaluate
// per keystroke.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles rules into an evaluation engine. An empty rule set
// is valid and always suggests zero.
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("grossTotal", cel.DoubleType),
		cel.Variable("lineCount", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		ast, iss := env.Compile(rule.When)
		if iss != nil && iss.Err() != nil {
			return nil, apperror.NewValidation("invalid discount rule condition").
				WithDetail("rule", i).
				WithDetail("error", iss.Err().Error())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, apperror.NewValidation("discount rule condition must be boolean").
				WithDetail("rule", i)
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build rule program %d: %w", i, err)
		}
		percent, err := types.NewMoneyFromString(rule.Percent)
		if err != nil {
			return nil, apperror.NewValidation("invalid discount rule percent").
				WithDetail("rule", i).
				WithDetail("percent", rule.Percent)
		}
		if percent.IsNegative() || percent.GreaterThan(types.Hundred) {
			return nil, apperror.NewValidation("discount rule percent must be between 0 and 100").
				WithDetail("rule", i).
				WithDetail("percent", rule.Percent)
		}
		compiled = append(compiled, compiledRule{source: rule, program: program, percent: percent})
	}
	return &Engine{rules: compiled}, nil
}

// ParseRules decodes a JSON rule list, as stored in configuration.
func ParseRules(raw string) ([]Rule, error) {
	if raw == "" {
		return nil, nil
	}
	var rules []Rule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, apperror.NewValidation("malformed discount rules").
			WithDetail("error", err.Error())
	}
	return rules, nil
}

// Suggest returns the highest discount percent among matching rules.
// A rule that fails to evaluate is skipped, not fatal; the till should
// keep ringing even when one promotion expression misbehaves.
func (e *Engine) Suggest(ctx context.Context, facts Facts) types.Money {
	gross, _ := facts.GrossTotal.Float64()
	activation := map[string]any{
		"grossTotal": gross,
		"lineCount":  facts.LineCount,
	}

	best := types.Zero()
	for _, rule := range e.rules {
		out, _, err := rule.program.Eval(activation)
		if err != nil {
			logger.Warn(ctx, "discount rule evaluation failed",
				"condition", rule.source.When,
				"error", err,
			)
			continue
		}
		matched, ok := out.Value().(bool)
		if !ok || !matched {
			continue
		}
		if rule.percent.GreaterThan(best) {
			best = rule.percent
		}
	}
	return best
}
