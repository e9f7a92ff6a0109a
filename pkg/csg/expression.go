package csg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExpression reports a malformed composite expression
var ErrExpression = errors.New("invalid expression")

var operatorTokens = map[string]Op{
	"|": Add,
	"&": Intersect,
	"-": Subtract,
	"/": Clip,
}

// Expression renders the subtree at id as an infix expression, e.g.
// "((a | b) - c)". Leaves render as their name.
func (f *Forest) Expression(id NodeID) string {
	n := f.Node(id)
	if n == nil {
		return ""
	}
	if !n.IsComposite() {
		return n.Name
	}
	if n.Op == None {
		return ""
	}
	return fmt.Sprintf("(%s %s %s)", f.Expression(n.Left), n.Op, f.Expression(n.Right))
}

// FromExpression rebuilds the composite target from an infix expression over
// the named components. Components are copied into the tree and each may be
// used once. On failure target is left untouched.
func (f *Forest) FromExpression(target NodeID, expression string, components []NodeID) error {
	t := f.Node(target)
	if t == nil || !t.IsComposite() {
		return fmt.Errorf("%w: target is not a composite", ErrExpression)
	}
	if strings.Contains(expression, ",") {
		return fmt.Errorf("%w: commas are not allowed", ErrExpression)
	}

	tokens, err := tokenize(expression, t.Name)
	if err != nil {
		return err
	}
	postfix, err := toPostfix(tokens)
	if err != nil {
		return err
	}

	// Build into a scratch forest so a failure leaves f untouched
	scratch := NewForest()
	built, err := scratch.build(f, postfix, components)
	if err != nil {
		return err
	}
	root := scratch.Node(built)
	if !root.IsComposite() {
		return fmt.Errorf("%w: expression must combine at least two shapes", ErrExpression)
	}

	copied := f.CopySubtree(scratch, built)
	c := f.Node(copied)
	t = f.Node(target)

	// Move the new children under target and drop the old ones
	oldLeft, oldRight := t.Left, t.Right
	newLeft, newRight := c.Left, c.Right
	f.SetChild(copied, true, NoNode)
	f.SetChild(copied, false, NoNode)
	f.remove(copied)

	if f.Valid(oldLeft) {
		f.detach(oldLeft)
		f.remove(oldLeft)
	}
	if f.Valid(oldRight) {
		f.detach(oldRight)
		f.remove(oldRight)
	}

	t = f.Node(target)
	t.Op = root.Op
	f.SetChild(target, true, newLeft)
	f.SetChild(target, false, newRight)
	f.SetEnabled(target, t.Enabled)
	return nil
}

// tokenize splits an expression on whitespace after padding the operators
// and parentheses. Referencing the composite's own name is an error.
func tokenize(expression, self string) ([]string, error) {
	r := strings.NewReplacer(
		"(", " ( ",
		")", " ) ",
		"&", " & ",
		"|", " | ",
		"-", " - ",
		"/", " / ",
	)
	tokens := strings.Fields(r.Replace(expression))
	for _, tok := range tokens {
		if tok == self {
			return nil, fmt.Errorf("%w: %q refers to itself", ErrExpression, self)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrExpression)
	}
	return tokens, nil
}

// toPostfix runs the shunting-yard algorithm. All operators share the same
// precedence and associate to the left.
func toPostfix(tokens []string) ([]string, error) {
	var stack []string
	postfix := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		switch {
		case tok == "(":
			stack = append(stack, tok)

		case tok == ")":
			for len(stack) > 0 && stack[len(stack)-1] != "(" {
				postfix = append(postfix, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced ')'", ErrExpression)
			}
			stack = stack[:len(stack)-1]

		case isOperator(tok):
			for len(stack) > 0 && stack[len(stack)-1] != "(" {
				postfix = append(postfix, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)

		default:
			postfix = append(postfix, tok)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top == "(" {
			return nil, fmt.Errorf("%w: unbalanced '('", ErrExpression)
		}
		postfix = append(postfix, top)
		stack = stack[:len(stack)-1]
	}
	return postfix, nil
}

func isOperator(tok string) bool {
	_, ok := operatorTokens[tok]
	return ok
}

// build evaluates a postfix expression into f, copying components out of src
func (f *Forest) build(src *Forest, postfix []string, components []NodeID) (NodeID, error) {
	unused := make([]NodeID, 0, len(components))
	for _, id := range components {
		if src.Valid(id) {
			unused = append(unused, id)
		}
	}

	var stack []NodeID
	for _, tok := range postfix {
		if op, ok := operatorTokens[tok]; ok {
			if len(stack) < 2 {
				return NoNode, fmt.Errorf("%w: operator %q is missing an operand", ErrExpression, tok)
			}
			left, right := stack[len(stack)-2], stack[len(stack)-1]
			stack = stack[:len(stack)-2]
			stack = append(stack, f.NewComposite("", op, nil, left, right))
			continue
		}

		idx := -1
		for i, id := range unused {
			if src.Node(id).Name == tok {
				idx = i
				break
			}
		}
		if idx < 0 {
			return NoNode, fmt.Errorf("%w: unknown or reused shape %q", ErrExpression, tok)
		}
		stack = append(stack, f.CopySubtree(src, unused[idx]))
		unused = append(unused[:idx], unused[idx+1:]...)
	}

	if len(stack) != 1 {
		return NoNode, fmt.Errorf("%w: expression does not reduce to one shape", ErrExpression)
	}
	return stack[0], nil
}
