package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children. After the children, Visit is called with a
// nil node.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node,
// followed by a call of w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
	v.Visit(nil)
}

// Children returns the non-nil direct children of a node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		if n != nil {
			out = append(out, n)
		}
	}
	switch n := node.(type) {
	case *Program:
		out = append(out, n.Stmts...)
	case *Block:
		out = append(out, n.Stmts...)
	case *While:
		add(n.Cond)
		add(n.Body)
	case *If:
		add(n.Cond)
		add(n.Consequence)
		if n.Alternative != nil {
			add(n.Alternative)
		}
	case *Func:
		add(n.Name)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Call:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	case *Index:
		add(n.X)
		add(n.Index)
	case *Infix:
		add(n.X)
		add(n.Y)
	case *Prefix:
		if n.X != nil {
			add(n.X)
		}
	case *Paren:
		add(n.X)
	case *Array:
		for _, it := range n.Items {
			add(it)
		}
	case *Record:
		for _, f := range n.Fields {
			add(f)
		}
	}
	return out
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if node == nil {
		return nil
	}
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range Children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}
