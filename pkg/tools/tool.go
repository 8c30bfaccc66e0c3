// Package tools exposes the trading client as a set of callable tools for an
// external automation host. Each tool takes JSON arguments and returns a
// string: pretty-printed exchange JSON on success, or a sentinel-prefixed
// message for the order workflow's non-success outcomes.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"okxtrader/pkg/order"
)

// Tool is a callable operation the hosting layer can register and dispatch.
type Tool interface {
	Name() string
	Description() string
	InputSchema() []byte
	Execute(tc *Context) *Result
}

// Context carries everything a tool needs for one invocation. Tool
// invocations are independent units of work with no shared mutable state.
type Context struct {
	// Ctx is the request context controlling cancellation.
	Ctx context.Context
	// Args is the raw JSON argument payload.
	Args []byte
	// Negotiator is the host's interactive confirmation channel, or nil
	// when the host has no way to ask the user anything.
	Negotiator order.Negotiator
}

// Result is a tool invocation result. Output is set for any run that
// completed, including workflow cancellations; Err is set when the tool
// could not run at all.
type Result struct {
	Output string `json:"output,omitempty"`
	Err    error  `json:"-"`
}

func textResult(s string) *Result {
	return &Result{Output: s}
}

func errorResult(err error) *Result {
	return &Result{Err: err}
}

var inputValidator = validator.New()

// parseInput decodes and validates a tool's JSON arguments.
func parseInput(args []byte, v any) error {
	if len(args) > 0 {
		if err := sonic.Unmarshal(args, v); err != nil {
			return fmt.Errorf("parse arguments: %w", err)
		}
	}
	if err := inputValidator.Struct(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// prettyJSON re-renders a raw JSON payload with two-space indentation.
func prettyJSON(raw []byte) (string, error) {
	var v any
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	out, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format response: %w", err)
	}
	return string(out), nil
}

// Registry holds the registered tools. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, rejecting duplicate names.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool already registered: %s", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch invokes the named tool with the given context.
func (r *Registry) Dispatch(name string, tc *Context) *Result {
	t, ok := r.Get(name)
	if !ok {
		return errorResult(fmt.Errorf("unknown tool: %s", name))
	}
	return t.Execute(tc)
}
