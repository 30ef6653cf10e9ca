// Package rights maps a passenger's disruption to the statutory entitlements owed.
package rights

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/airpass/airpass/internal/domain"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Resolver evaluates queries against a compiled rights table.
type Resolver struct {
	mu     sync.RWMutex
	env    *cel.Env
	issues map[domain.IssueType][]*compiledBracket
}

type compiledBracket struct {
	Bracket
	program cel.Program // nil when the bracket always matches
}

// NewResolver compiles table. Any invalid condition fails the whole table.
func NewResolver(table Table) (*Resolver, error) {
	env, err := cel.NewEnv(
		cel.Variable("delay_hours", cel.DoubleType),
		cel.Variable("flight_type", cel.StringType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	r := &Resolver{env: env}
	if err := r.Reload(table); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the active table after compiling every bracket.
func (r *Resolver) Reload(table Table) error {
	issues := make(map[domain.IssueType][]*compiledBracket, len(table.Issues))
	for issue, brackets := range table.Issues {
		key := domain.IssueType(domain.NormalizeCode(issue))
		compiled := make([]*compiledBracket, 0, len(brackets))
		for i, b := range brackets {
			cb, err := r.compileBracket(b)
			if err != nil {
				return fmt.Errorf("issue %s bracket %d: %w", key, i, err)
			}
			compiled = append(compiled, cb)
		}
		issues[key] = compiled
	}

	r.mu.Lock()
	r.issues = issues
	r.mu.Unlock()
	return nil
}

// Resolve returns the entitlement for q. Unknown issue types and unmatched
// conditions yield zero compensation and empty lists.
func (r *Resolver) Resolve(q domain.RightsQuery) domain.RightsEntitlement {
	issue := domain.IssueType(domain.NormalizeCode(string(q.IssueType)))
	flightType := domain.NormalizeCode(q.FlightType)

	ent := domain.RightsEntitlement{
		IssueType:       issue,
		FlightType:      flightType,
		Currency:        domain.RightsCurrency,
		Assistance:      []string{},
		CanRefuse:       []string{},
		Provisions:      []string{},
		LegalReferences: domain.LegalReferences(),
		Disclaimer:      domain.RightsDisclaimer,
	}

	r.mu.RLock()
	brackets := r.issues[issue]
	r.mu.RUnlock()

	activation := map[string]any{
		"delay_hours": q.DelayHours,
		"flight_type": flightType,
	}

	for _, b := range brackets {
		if !b.matches(activation) {
			continue
		}
		ent.Compensation = b.Compensation
		ent.Assistance = cloneOrEmpty(b.Assistance)
		ent.CanRefuse = cloneOrEmpty(b.CanRefuse)
		ent.Provisions = cloneOrEmpty(b.Provisions)
		break
	}

	return ent
}

// IssueTypes returns the issue types the active table knows about.
func (r *Resolver) IssueTypes() []domain.IssueType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.IssueType, 0, len(r.issues))
	for issue := range r.issues {
		out = append(out, issue)
	}
	return out
}

func (r *Resolver) compileBracket(b Bracket) (*compiledBracket, error) {
	if b.When == "" {
		return &compiledBracket{Bracket: b}, nil
	}

	ast, issues := r.env.Compile(b.When)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", b.When, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("condition %q must return bool, got %s", b.When, ast.OutputType())
	}

	program, err := r.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for %q: %w", b.When, err)
	}

	return &compiledBracket{Bracket: b, program: program}, nil
}

func (b *compiledBracket) matches(activation map[string]any) bool {
	if b.program == nil {
		return true
	}
	out, _, err := b.program.Eval(activation)
	if err != nil {
		slog.Warn("rights condition evaluation failed",
			"condition", b.When,
			"error", err,
		)
		return false
	}
	v, ok := out.(types.Bool)
	return ok && bool(v)
}

func cloneOrEmpty(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
