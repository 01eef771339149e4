// Package visit implements double-dispatch traversal over trees of Visitable nodes.
//
// A Pass walks a tree depth-first in pre-order: a node's own Visit fires before any
// visit in its subtree. Every node moves through Unvisited, Visiting and Visited
// exactly once per pass. A visitor can prune a subtree by returning SkipChildren,
// and a visitor error aborts the failing node's subtree only; the remaining
// siblings are still visited unless the pass runs with FailFast.
//
// The same engine drives hierarchical structures (see package scenegraph) and
// nested records (see record.Accept).
package visit

import (
	"fmt"

	"github.com/ameersohail0/OpenDaVINCI/errors"
)

// Node is anything that can be visited. Children are owned by their parent.
// Nodes are tracked by identity during a pass, so implementations should be
// pointer types.
type Node interface {
	Children() []Node
}

// Action tells the pass what to do after a node has been visited.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// SkipChildren leaves the node's subtree unvisited.
	SkipChildren
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case SkipChildren:
		return "skip_children"
	default:
		return "unknown"
	}
}

// Visitor is called once per reached node.
type Visitor interface {
	Visit(n Node) (Action, error)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(n Node) (Action, error)

// Visit calls f(n).
func (f VisitorFunc) Visit(n Node) (Action, error) {
	return f(n)
}

// State is the traversal state of a node within one pass.
type State int

const (
	Unvisited State = iota
	Visiting
	Visited
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Visiting:
		return "visiting"
	case Visited:
		return "visited"
	default:
		return "unknown"
	}
}

// Failure reports a visitor error for one node. It matches errors.ErrVisitorFailure.
type Failure struct {
	Node Node
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s at %T: %v", errors.ErrVisitorFailure, f.Node, f.Err)
}

// Unwrap returns the visitor's own error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is makes every Failure match errors.ErrVisitorFailure.
func (f *Failure) Is(target error) bool {
	return target == errors.ErrVisitorFailure
}

// Option configures a Pass.
type Option func(*Pass)

// FailFast stops the whole pass at the first failure instead of continuing with
// the failing node's siblings.
func FailFast() Option {
	return func(p *Pass) {
		p.failFast = true
	}
}

// Pass holds the per-node states of one traversal. A Pass may be reused;
// every Run starts from a clean slate.
type Pass struct {
	failFast bool
	states   map[Node]State
	order    []Node
}

// NewPass creates a pass with the given options.
func NewPass(opts ...Option) *Pass {
	p := &Pass{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Walk runs a single pass over root with v.
func Walk(root Node, v Visitor, opts ...Option) error {
	return NewPass(opts...).Run(root, v)
}

// Run traverses the tree rooted at root. Failures are returned as *Failure
// values, joined when several subtrees failed.
func (p *Pass) Run(root Node, v Visitor) error {
	p.states = make(map[Node]State)
	p.order = p.order[:0]
	if root == nil {
		return nil
	}
	return p.walk(root, v)
}

func (p *Pass) walk(n Node, v Visitor) error {
	if s := p.states[n]; s != Unvisited {
		return &Failure{Node: n, Err: errors.ErrReentrantVisit}
	}

	p.states[n] = Visiting
	action, err := v.Visit(n)
	p.states[n] = Visited
	p.order = append(p.order, n)

	if err != nil {
		return &Failure{Node: n, Err: err}
	}
	if action == SkipChildren {
		return nil
	}

	var errs []error
	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		if err := p.walk(child, v); err != nil {
			if p.failFast {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// State returns the state n reached in the most recent Run.
func (p *Pass) State(n Node) State {
	return p.states[n]
}

// Order returns the nodes in the order they were visited during the most recent Run.
func (p *Pass) Order() []Node {
	out := make([]Node, len(p.order))
	copy(out, p.order)
	return out
}
