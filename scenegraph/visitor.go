package scenegraph

import (
	"github.com/ameersohail0/OpenDaVINCI/record"
	"github.com/ameersohail0/OpenDaVINCI/visit"
)

// Visitor is called for every node reached by Accept.
type Visitor interface {
	VisitNode(n *Node) (visit.Action, error)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(n *Node) (visit.Action, error)

// VisitNode calls f(n).
func (f VisitorFunc) VisitNode(n *Node) (visit.Action, error) {
	return f(n)
}

// Accept runs v over the subtree rooted at n, parents first.
func (n *Node) Accept(v Visitor, opts ...visit.Option) error {
	return visit.Walk(n, adapter{v}, opts...)
}

type adapter struct {
	v Visitor
}

func (a adapter) Visit(n visit.Node) (visit.Action, error) {
	return a.v.VisitNode(n.(*Node))
}

// Find returns the first node named name in pre-order, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	_ = n.Accept(VisitorFunc(func(c *Node) (visit.Action, error) {
		if found != nil {
			return visit.SkipChildren, nil
		}
		if c.descriptor.Name == name {
			found = c
			return visit.SkipChildren, nil
		}
		return visit.Continue, nil
	}))
	return found
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	_ = n.Accept(VisitorFunc(func(*Node) (visit.Action, error) {
		count++
		return visit.Continue, nil
	}))
	return count
}

// Collect returns the subtree rooted at n in pre-order.
func (n *Node) Collect() []*Node {
	var nodes []*Node
	_ = n.Accept(VisitorFunc(func(c *Node) (visit.Action, error) {
		nodes = append(nodes, c)
		return visit.Continue, nil
	}))
	return nodes
}

// AcceptRecords runs v over the records attached to the subtree, node by node in
// pre-order. A failure aborts the subtree of the node whose record failed.
func (n *Node) AcceptRecords(v record.Visitor, opts ...visit.Option) error {
	return n.Accept(VisitorFunc(func(c *Node) (visit.Action, error) {
		if record.IsNil(c.data) {
			return visit.Continue, nil
		}
		return visit.Continue, record.Accept(c.data, v)
	}), opts...)
}
