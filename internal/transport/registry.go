// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"shipctl/internal/deploy"
)

type (
	// Registry is a per-session collection of state to transport. It is
	// append-only between resets and is not safe for concurrent mutation;
	// one deployment invocation owns one registry.
	Registry struct {
		scalars []scalarEntry
		arrays  []arrayEntry
		funcs   []funcEntry
	}

	scalarEntry struct {
		name  string
		value string
		bound bool
	}

	arrayEntry struct {
		name  string
		elems []string
		bound bool
	}

	funcEntry struct {
		name  string
		def   string
		bound bool
	}
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewContextRegistry returns a registry pre-loaded with the deployment
// context baseline, so every remote dispatch carries the active context
// without per-call registration. Empty context fields are declared unbound
// and skipped at build time.
func NewContextRegistry(ctx *deploy.Context) *Registry {
	r := NewRegistry()

	scalars := []struct {
		name  string
		value string
	}{
		{"DEPLOY_NAME", ctx.Name},
		{"DEPLOY_ENV", ctx.Environment},
		{"DEPLOY_SSH", ctx.SSHEndpoint},
		{"DEPLOY_HOST", ctx.Host},
		{"DEPLOY_AUTH_USER", ctx.AuthUser},
		{"DEPLOY_WORK_USER", ctx.WorkUser},
		{"DEPLOY_DIR", ctx.RemoteDir},
		{"DEPLOY_DOMAIN", ctx.Domain},
	}
	for _, s := range scalars {
		if s.value == "" {
			r.DeclareScalar(s.name)
			continue
		}
		r.BindScalar(s.name, s.value)
	}

	r.BindArray("DEPLOY_PRE", ctx.Pre)
	r.BindArray("DEPLOY_MAIN", ctx.Main)
	r.BindArray("DEPLOY_POST", ctx.Post)

	return r
}

// BindScalar registers name with its current value.
func (r *Registry) BindScalar(name, value string) {
	r.scalars = append(r.scalars, scalarEntry{name: name, value: value, bound: true})
}

// DeclareScalar registers name without a value; it is skipped at build time.
func (r *Registry) DeclareScalar(name string) {
	r.scalars = append(r.scalars, scalarEntry{name: name})
}

// BindArray registers an ordered sequence under name.
func (r *Registry) BindArray(name string, elems []string) {
	cp := make([]string, len(elems))
	copy(cp, elems)
	r.arrays = append(r.arrays, arrayEntry{name: name, elems: cp, bound: true})
}

// DeclareArray registers an array name without elements; skipped at build.
func (r *Registry) DeclareArray(name string) {
	r.arrays = append(r.arrays, arrayEntry{name: name})
}

// BindFunction registers a complete shell function definition. The
// definition must parse and must define exactly the given name; functions
// may reference registered scalars and arrays, which the payload
// materializes first.
func (r *Registry) BindFunction(name, definition string) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(definition), name)
	if err != nil {
		return fmt.Errorf("function %s does not parse: %w", name, err)
	}

	found := false
	syntax.Walk(file, func(node syntax.Node) bool {
		if decl, ok := node.(*syntax.FuncDecl); ok && decl.Name.Value == name {
			found = true
		}
		return true
	})
	if !found {
		return fmt.Errorf("definition does not declare function %s", name)
	}

	r.funcs = append(r.funcs, funcEntry{name: name, def: definition, bound: true})
	return nil
}

// DeclareFunction registers a function name without a definition; skipped
// at build time.
func (r *Registry) DeclareFunction(name string) {
	r.funcs = append(r.funcs, funcEntry{name: name})
}

// Reset drops every entry, returning the registry to its empty state.
func (r *Registry) Reset() {
	r.scalars = nil
	r.arrays = nil
	r.funcs = nil
}
