// Package template renders configuration fragments by substituting
// {name} placeholders from a variable context.
//
// Substitution is best effort: a placeholder whose variable is not in the
// context survives verbatim, and downstream validation (Require, summary
// checks) is responsible for catching interpolations that must not be
// missing.
package template

import (
	"regexp"

	"github.com/relcm/relcm/pkg/config"
)

// Vars is a set of named template variables. Passed to Render it acts as
// a call-scoped override that never touches the persistent context, which
// keeps probing renders (e.g. a wildcard in place of an unset version)
// side-effect free.
type Vars map[string]string

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Engine holds the persistent variable context. The workflow driver
// mutates it explicitly (release version, resolved ticket key, rendering
// date) before each rendering pass.
type Engine struct {
	vars Vars
}

// New returns an engine with an empty context
func New() *Engine {
	return &Engine{vars: make(Vars)}
}

// Set stores a variable in the persistent context
func (e *Engine) Set(name, value string) {
	e.vars[name] = value
}

// Lookup returns a persistent context variable
func (e *Engine) Lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Render walks a document value and substitutes placeholders in every
// string leaf. Mapping keys are never substituted. The result is a fresh
// structure; the input is left untouched.
func (e *Engine) Render(v config.Value, overrides ...Vars) config.Value {
	return renderValue(v, e.merged(overrides))
}

// RenderString substitutes placeholders in a single string
func (e *Engine) RenderString(s string, overrides ...Vars) string {
	return substitute(s, e.merged(overrides))
}

func (e *Engine) merged(overrides []Vars) Vars {
	if len(overrides) == 0 {
		return e.vars
	}
	ctx := make(Vars, len(e.vars))
	for k, v := range e.vars {
		ctx[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			ctx[k] = v
		}
	}
	return ctx
}

func renderValue(v config.Value, ctx Vars) config.Value {
	switch t := v.(type) {
	case string:
		return substitute(t, ctx)
	case []config.Value:
		out := make([]config.Value, len(t))
		for i, item := range t {
			out[i] = renderValue(item, ctx)
		}
		return out
	case *config.Mapping:
		out := config.NewMapping()
		for _, k := range t.Keys() {
			item, _ := t.Get(k)
			out.Set(k, renderValue(item, ctx))
		}
		return out
	default:
		return v
	}
}

func substitute(s string, ctx Vars) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := ctx[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
