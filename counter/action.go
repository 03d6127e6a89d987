package counter

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the transition an [Action] requests.
type Kind string

const (
	// KindIncrement adds the action's amount to the counter.
	KindIncrement Kind = "increment"

	// KindDecrement subtracts the action's amount from the counter.
	KindDecrement Kind = "decrement"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIncrement, KindDecrement:
		return true
	default:
		return false
	}
}

// Action describes one change to the counter.
type Action struct {
	Kind   Kind `json:"kind" yaml:"kind"`
	Amount int  `json:"amount" yaml:"amount"`
}

// Increment returns an action that adds n to the counter.
func Increment(n int) Action {
	return Action{Kind: KindIncrement, Amount: n}
}

// Decrement returns an action that subtracts n from the counter.
func Decrement(n int) Action {
	return Action{Kind: KindDecrement, Amount: n}
}

// String returns the shorthand form, e.g. "increment:3".
func (a Action) String() string {
	return fmt.Sprintf("%s:%d", a.Kind, a.Amount)
}

// Validate returns an error if the action's kind is unknown.
func (a Action) Validate() error {
	if a.Kind == "" {
		return fmt.Errorf("action kind is required")
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("unknown action kind %q (expected %q or %q)", a.Kind, KindIncrement, KindDecrement)
	}
	return nil
}

// ParseAction parses the shorthand form "kind:amount".
//
// Surrounding whitespace is ignored. The amount may be negative.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Action{}, fmt.Errorf("empty action")
	}

	idx := strings.Index(s, ":")
	if idx == -1 {
		return Action{}, fmt.Errorf("invalid action %q (expected 'kind:amount')", s)
	}

	a := Action{Kind: Kind(strings.TrimSpace(s[:idx]))}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}

	amount, err := strconv.Atoi(strings.TrimSpace(s[idx+1:]))
	if err != nil {
		return Action{}, fmt.Errorf("invalid amount in action %q: %w", s, err)
	}
	a.Amount = amount

	return a, nil
}

// ParseActions parses each argument with [ParseAction].
func ParseActions(args []string) ([]Action, error) {
	actions := make([]Action, 0, len(args))
	for i, arg := range args {
		a, err := ParseAction(arg)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Action.
//
// Accepts either the shorthand string or a {kind, amount} mapping.
func (a *Action) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		parsed, err := ParseAction(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}

	if node.Kind == yaml.MappingNode {
		// temporary struct to avoid infinite recursion
		var raw struct {
			Kind   string `yaml:"kind"`
			Amount int    `yaml:"amount"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		parsed := Action{Kind: Kind(raw.Kind), Amount: raw.Amount}
		if err := parsed.Validate(); err != nil {
			return err
		}
		*a = parsed
		return nil
	}

	return fmt.Errorf("action must be a string or object, got %v", node.Kind)
}
