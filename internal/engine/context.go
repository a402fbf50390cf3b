package engine

import "github.com/cwbudde/go-cql/internal/value"

// EvaluationContext is the evaluation-time analogue of DWScript's
// Environment (internal/interp/runtime/environment.go): a chain of scopes
// binding names to runtime Values. Where DWScript's Environment holds
// variables and class/Self state, ours holds the handful of binding kinds
// CQL's ELM actually introduces -- query aliases, `let` clauses, `$this`
// comprehension elements, and function operands -- plus the current
// evaluation context value (e.g. the Patient the library is being evaluated
// for).
type EvaluationContext struct {
	outer   *EvaluationContext
	bindings map[string]value.Value

	// contextValue is the instance the library's declared `context` (e.g.
	// "Patient") is currently bound to. It is carried on every scope rather
	// than looked up through the chain so a nested ForEach/Query body still
	// sees the same Patient its enclosing definition does.
	contextValue value.Value
}

// NewRootContext builds the root evaluation scope for one context instance
// (e.g. one Patient), with no outer scope.
func NewRootContext(contextValue value.Value) *EvaluationContext {
	return &EvaluationContext{
		bindings:      make(map[string]value.Value),
		contextValue:  contextValue,
	}
}

// Push creates a new scope enclosed by ec, the evaluation-time equivalent of
// NewEnclosedEnvironment. Used when entering a query's alias/let scope, a
// ForEach/Repeat/Aggregate element binding, or a function call's operand
// binding.
func (ec *EvaluationContext) Push() *EvaluationContext {
	return &EvaluationContext{
		outer:        ec,
		bindings:     make(map[string]value.Value),
		contextValue: ec.contextValue,
	}
}

// Bind defines name in the current (innermost) scope, shadowing any outer
// binding of the same name -- mirrors Environment.Define.
func (ec *EvaluationContext) Bind(name string, v value.Value) {
	ec.bindings[name] = v
}

// Resolve looks up name in the current scope, then recursively in outer
// scopes -- mirrors Environment.Get.
func (ec *EvaluationContext) Resolve(name string) (value.Value, bool) {
	if ec == nil {
		return nil, false
	}
	if v, ok := ec.bindings[name]; ok {
		return v, true
	}
	return ec.outer.Resolve(name)
}

// ContextValue returns the instance the library's declared evaluation
// context is currently bound to (nil if evaluating context-free, e.g.
// Population or an unscoped definition).
func (ec *EvaluationContext) ContextValue() value.Value {
	if ec == nil {
		return nil
	}
	return ec.contextValue
}
