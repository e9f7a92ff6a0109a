package csg

import (
	"errors"
	"testing"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

func expressionFixture() (*Forest, NodeID, []NodeID) {
	f := NewForest()
	a := sphere(f, "a", core.NewVec3(0, 0, 0), 1)
	b := sphere(f, "b", core.NewVec3(1, 0, 0), 1)
	c := sphere(f, "c", core.NewVec3(0, 1, 0), 1)
	for _, id := range []NodeID{a, b, c} {
		f.AppendRoot(id)
	}
	target := f.NewComposite("shape", None, testMaterial, NoNode, NoNode)
	f.AppendRoot(target)
	return f, target, []NodeID{a, b, c}
}

func TestFromExpression(t *testing.T) {
	tests := []struct {
		expression string
		expected   string
	}{
		{"a | b", "(a | b)"},
		{"a&b", "(a & b)"},
		{"(a | b) - c", "((a | b) - c)"},
		{"a | b - c", "((a | b) - c)"}, // Equal precedence, left to right
		{"a / (b & c)", "(a / (b & c))"},
		{"  ( ( a ) - b )  ", "(a - b)"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, target, components := expressionFixture()

			if err := f.FromExpression(target, tt.expression, components); err != nil {
				t.Fatalf("Expected success, got %v", err)
			}
			if got := f.Expression(target); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}

			n := f.Node(target)
			if n.Name != "shape" || n.Material != testMaterial {
				t.Errorf("Expected target to keep its name and material, got %q/%v", n.Name, n.Material)
			}
		})
	}
}

func TestFromExpression_CopiesComponents(t *testing.T) {
	f, target, components := expressionFixture()

	if err := f.FromExpression(target, "a - b", components); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	// The originals stay top-level shapes and are not moved into the tree
	for _, id := range components {
		if !f.IsRoot(id) {
			t.Errorf("Expected %s to stay a top-level shape", f.Node(id).Name)
		}
	}
	left := f.Node(target).Left
	if left == components[0] {
		t.Error("Expected a copy, got the original node")
	}
	if f.Node(left).Parent != target {
		t.Error("Expected copied child to point at the target")
	}
}

func TestFromExpression_Failures(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{"comma", "a, b"},
		{"self reference", "a | shape"},
		{"unknown name", "a | z"},
		{"reused name", "a | a"},
		{"unbalanced open", "(a | b"},
		{"unbalanced close", "a | b)"},
		{"missing operand", "a |"},
		{"two shapes no operator", "a b"},
		{"single shape", "a"},
		{"empty", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, target, components := expressionFixture()
			if err := f.FromExpression(target, "b & c", components); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}
			before := f.Expression(target)
			nodes := f.Len()

			err := f.FromExpression(target, tt.expression, components)
			if !errors.Is(err, ErrExpression) {
				t.Fatalf("Expected ErrExpression, got %v", err)
			}
			if got := f.Expression(target); got != before {
				t.Errorf("Expected target untouched (%q), got %q", before, got)
			}
			if f.Len() != nodes {
				t.Errorf("Expected no nodes leaked, had %d now %d", nodes, f.Len())
			}
		})
	}
}

func TestFromExpression_CascadesEnabled(t *testing.T) {
	f, target, components := expressionFixture()
	f.Node(target).Enabled = false

	if err := f.FromExpression(target, "a | b", components); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	for _, child := range f.Children(target) {
		if f.Node(child).Enabled {
			t.Errorf("Expected child %s disabled", f.Node(child).Name)
		}
	}
}

func TestExpression_Leaf(t *testing.T) {
	f := NewForest()
	a := sphere(f, "ball", core.NewVec3(0, 0, 0), 1)
	if got := f.Expression(a); got != "ball" {
		t.Errorf("Expected leaf name, got %q", got)
	}
}
