// Package vfs provides the read-only virtual filesystem browsed by the
// portfolio terminal. A Tree is built once from a declarative Entry and is
// never mutated afterwards.
package vfs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind distinguishes files from directories.
type Kind int

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

var (
	ErrNotFound     = errors.New("no such file or directory")
	ErrNotDirectory = errors.New("not a directory")
	ErrInvalidPath  = errors.New("invalid path")
)

// Entry is the declarative definition of a node. Type is "file" or
// "directory"; when empty it is inferred from the presence of children.
type Entry struct {
	Name     string  `yaml:"name" json:"name"`
	Type     string  `yaml:"type,omitempty" json:"type,omitempty"`
	Content  string  `yaml:"content,omitempty" json:"content,omitempty"`
	Children []Entry `yaml:"children,omitempty" json:"children,omitempty"`
}

func (e Entry) kind() (Kind, error) {
	switch strings.ToLower(e.Type) {
	case "directory", "dir":
		return Directory, nil
	case "file":
		return File, nil
	case "":
		if len(e.Children) > 0 {
			return Directory, nil
		}
		return File, nil
	default:
		return File, fmt.Errorf("%s: unknown entry type %q", e.Name, e.Type)
	}
}

// Node is one entry of a built tree.
type Node struct {
	name     string
	kind     Kind
	content  string
	children []*Node
	index    map[string]*Node
}

func (n *Node) Name() string    { return n.name }
func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) IsDir() bool     { return n.kind == Directory }
func (n *Node) Content() string { return n.content }

// Children returns the immediate children in declaration order. The slice
// is a copy; nil for files.
func (n *Node) Children() []*Node {
	if n.kind != Directory {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child looks up an immediate child by exact name.
func (n *Node) Child(name string) (*Node, bool) {
	if n.kind != Directory {
		return nil, false
	}
	c, ok := n.index[name]
	return c, ok
}

// Tree is an immutable virtual filesystem.
type Tree struct {
	root  *Node
	count int
}

// Build validates def and freezes it into a Tree. The root must be a
// directory.
func Build(def Entry) (*Tree, error) {
	k, err := def.kind()
	if err != nil {
		return nil, err
	}
	if k != Directory {
		return nil, fmt.Errorf("root %q: %w", def.Name, ErrNotDirectory)
	}
	t := &Tree{}
	root, err := t.build(def)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func (t *Tree) build(e Entry) (*Node, error) {
	if err := validName(e.Name); err != nil {
		return nil, err
	}
	k, err := e.kind()
	if err != nil {
		return nil, err
	}
	n := &Node{name: e.Name, kind: k}
	t.count++
	if k == File {
		if len(e.Children) > 0 {
			return nil, fmt.Errorf("file %q has children: %w", e.Name, ErrNotDirectory)
		}
		n.content = e.Content
		return n, nil
	}
	n.children = make([]*Node, 0, len(e.Children))
	n.index = make(map[string]*Node, len(e.Children))
	for _, ce := range e.Children {
		child, err := t.build(ce)
		if err != nil {
			return nil, fmt.Errorf("%s/%w", e.Name, err)
		}
		if _, dup := n.index[child.name]; dup {
			return nil, fmt.Errorf("%s: duplicate entry %q", e.Name, child.name)
		}
		n.children = append(n.children, child)
		n.index[child.name] = child
	}
	return n, nil
}

func validName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name: %w", ErrInvalidPath)
	case name == "." || name == ".." || name == "~":
		return fmt.Errorf("reserved name %q: %w", name, ErrInvalidPath)
	case strings.ContainsAny(name, "/ \t\n"):
		return fmt.Errorf("name %q contains a separator: %w", name, ErrInvalidPath)
	}
	return nil
}

func (t *Tree) Root() *Node      { return t.root }
func (t *Tree) RootName() string { return t.root.name }

// Count returns the number of nodes, root included.
func (t *Tree) Count() int { return t.count }

// Resolve follows path from the root. path[0] must name the root.
func (t *Tree) Resolve(path []string) (*Node, error) {
	if len(path) == 0 || path[0] != t.root.name {
		return nil, fmt.Errorf("/%s: %w", strings.Join(path, "/"), ErrInvalidPath)
	}
	cur := t.root
	for i, name := range path[1:] {
		if !cur.IsDir() {
			return nil, fmt.Errorf("/%s: %w", strings.Join(path[:i+1], "/"), ErrNotDirectory)
		}
		next, ok := cur.Child(name)
		if !ok {
			return nil, fmt.Errorf("/%s: %w", strings.Join(path[:i+2], "/"), ErrNotFound)
		}
		cur = next
	}
	return cur, nil
}

// ResolveDir is Resolve restricted to directories.
func (t *Tree) ResolveDir(path []string) (*Node, error) {
	n, err := t.Resolve(path)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() {
		return nil, fmt.Errorf("/%s: %w", strings.Join(path, "/"), ErrNotDirectory)
	}
	return n, nil
}

// List returns the children of the directory at path.
func (t *Tree) List(path []string) ([]*Node, error) {
	n, err := t.ResolveDir(path)
	if err != nil {
		return nil, err
	}
	return n.Children(), nil
}

// Walk visits every node depth-first in declaration order. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(path []string, n *Node) bool) {
	walk(nil, t.root, fn)
}

func walk(parent []string, n *Node, fn func([]string, *Node) bool) bool {
	path := make([]string, len(parent)+1)
	copy(path, parent)
	path[len(parent)] = n.name
	if !fn(path, n) {
		return false
	}
	for _, c := range n.children {
		if !walk(path, c, fn) {
			return false
		}
	}
	return true
}
