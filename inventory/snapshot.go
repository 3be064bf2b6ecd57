package inventory

import (
	"fmt"
	"strings"
)

// Policy decides what a Bedrock slot that has no slot in the Java window is set to when a snapshot of the
// window is translated, and how a click on such a slot is handled.
type Policy uint8

const (
	// PolicyDrop leaves such slots out of translated snapshots and rejects clicks on them.
	PolicyDrop Policy = iota
	// PolicyNoop keeps the item last shown in such slots and ignores clicks on them.
	PolicyNoop
	// PolicyEmpty sets such slots to an empty stack and rejects clicks on them.
	PolicyEmpty
)

// ParsePolicy parses a policy by its name: drop, noop or empty.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "drop":
		return PolicyDrop, nil
	case "noop":
		return PolicyNoop, nil
	case "empty":
		return PolicyEmpty, nil
	}
	return 0, fmt.Errorf("unknown unmappable slot policy %q", s)
}

// String ...
func (p Policy) String() string {
	switch p {
	case PolicyNoop:
		return "noop"
	case PolicyEmpty:
		return "empty"
	}
	return "drop"
}

// Assignment sets a Bedrock slot to an item.
type Assignment[T any] struct {
	Slot Slot
	Item T
}

// Snapshot re-indexes the full content of a Java window into the Bedrock slots it is shown in. Java slots
// without a Bedrock slot are left out. Bedrock container slots without a Java slot are handled according
// to policy: cached returns the item last shown in such a slot and empty is an empty stack.
func Snapshot[T any](l *Layout, items []T, policy Policy, empty T, cached func(Slot) T) []Assignment[T] {
	out := make([]Assignment[T], 0, len(items)+l.BedrockSize)
	for i, item := range items {
		if s, ok := l.Bedrock(i); ok {
			out = append(out, Assignment[T]{Slot: s, Item: item})
		}
	}
	for _, s := range l.Unmapped() {
		switch policy {
		case PolicyNoop:
			out = append(out, Assignment[T]{Slot: s, Item: cached(s)})
		case PolicyEmpty:
			out = append(out, Assignment[T]{Slot: s, Item: empty})
		}
	}
	return out
}
