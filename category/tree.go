/*
tree.go - Life-area category tree constraints

PURPOSE:
  Life-area categories form a self-referencing tree bounded at depth 2
  (a category and at most one level of children). The walk is iterative
  and bounded; it never recurses. Three distinct failures are reported:
  cycle detected, depth exceeded, parent not found.
*/
package category

import (
	"context"
	"errors"
)

// MaxDepth is the deepest allowed life-area category (1 = root).
const MaxDepth = 2

var (
	// ErrCycleDetected is returned when a category's ancestor chain loops
	// back onto itself.
	ErrCycleDetected = errors.New("life area category cycle detected")

	// ErrDepthExceeded is returned when nesting would exceed MaxDepth.
	ErrDepthExceeded = errors.New("life area category exceeds maximum depth")

	// ErrParentNotFound is returned when the named parent doesn't exist.
	ErrParentNotFound = errors.New("parent life area category not found")

	// ErrHasChildren guards deletion: a category with children cannot be
	// removed.
	ErrHasChildren = errors.New("life area category has children")

	// ErrNotFound is returned when a referenced category doesn't exist.
	ErrNotFound = errors.New("category not found")
)

// ValidateLifeAreaParent checks that attaching the category under its
// ParentID keeps the tree acyclic and within MaxDepth. The walk is bounded
// by MaxDepth+1 steps; anything longer is already a violation.
func ValidateLifeAreaParent(ctx context.Context, s Store, c LifeAreaCategory) error {
	if c.ParentID == nil {
		return nil
	}
	depth := 1 // the category itself
	current := c.ParentID
	for current != nil {
		if *current == c.ID {
			return ErrCycleDetected
		}
		depth++
		if depth > MaxDepth {
			return ErrDepthExceeded
		}
		parent, err := s.GetLifeAreaCategory(ctx, *current)
		if err != nil {
			return err
		}
		if parent == nil {
			return ErrParentNotFound
		}
		current = parent.ParentID
	}
	return nil
}

// DeleteLifeArea removes a category after checking the no-children guard.
func DeleteLifeArea(ctx context.Context, s Store, id ID) error {
	c, err := s.GetLifeAreaCategory(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	n, err := s.CountLifeAreaChildren(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrHasChildren
	}
	return s.DeleteLifeAreaCategory(ctx, id)
}
