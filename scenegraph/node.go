// Package scenegraph holds hierarchical scene descriptions: trees of named nodes,
// each optionally carrying a record (a pose, a vehicle state, ...).
//
// A node exclusively owns its children. The parent pointer is kept for lookups
// such as Path and never implies ownership. Trees are processed with visitors
// through Accept, which runs a pre-order pass of the visit package.
package scenegraph

import (
	"fmt"

	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/record"
	"github.com/ameersohail0/OpenDaVINCI/visit"
)

// Descriptor identifies a node within a scene.
type Descriptor struct {
	ID   uint32
	Name string
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%d)", d.Name, d.ID)
}

// Node is one element of a scene tree.
type Node struct {
	descriptor Descriptor
	data       record.Record
	parent     *Node
	children   []*Node
}

// NewNode creates a detached node. data may be nil.
func NewNode(d Descriptor, data record.Record) *Node {
	return &Node{descriptor: d, data: data}
}

// Descriptor returns the node's descriptor.
func (n *Node) Descriptor() Descriptor {
	return n.descriptor
}

// Data returns the record attached to the node, or nil.
func (n *Node) Data() record.Record {
	return n.data
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Nodes returns the node's children in insertion order.
func (n *Node) Nodes() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Children implements visit.Node.
func (n *Node) Children() []visit.Node {
	out := make([]visit.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// AddChild transfers ownership of c to n. A node can have only one parent and
// may not become its own descendant.
func (n *Node) AddChild(c *Node) error {
	if c == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "Node", "AddChild", "nil child")
	}
	if c.parent != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s already belongs to %s", errors.ErrInvalidData, c.descriptor, c.parent.descriptor),
			"Node", "AddChild", "ownership check")
	}
	for p := n; p != nil; p = p.parent {
		if p == c {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %s would become its own descendant", errors.ErrInvalidData, c.descriptor),
				"Node", "AddChild", "cycle check")
		}
	}
	c.parent = n
	n.children = append(n.children, c)
	return nil
}

// RemoveChild detaches c from n and returns whether c was a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Path returns the names from the root down to n.
func (n *Node) Path() []string {
	var path []string
	for p := n; p != nil; p = p.parent {
		path = append(path, p.descriptor.Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (n *Node) String() string {
	return n.descriptor.String()
}
