package category_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuliaMathias/moolah-sub000/category"
	"github.com/JuliaMathias/moolah-sub000/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func insertLifeArea(t *testing.T, s *sqlite.Store, name string, parent *category.ID) category.LifeAreaCategory {
	t.Helper()
	c := category.LifeAreaCategory{ID: category.NewID(), Name: name, ParentID: parent}
	require.NoError(t, category.ValidateLifeAreaParent(context.Background(), s, c))
	require.NoError(t, s.InsertLifeAreaCategory(context.Background(), c))
	return c
}

func TestValidateLifeAreaParent_RootAndChild(t *testing.T) {
	// GIVEN: A root category
	// WHEN: Attaching a child to it
	// THEN: Both pass validation (depth 2 is the allowed maximum)

	store := newStore(t)
	root := insertLifeArea(t, store, "Health", nil)
	insertLifeArea(t, store, "Fitness", &root.ID)
}

func TestValidateLifeAreaParent_ParentNotFound(t *testing.T) {
	store := newStore(t)
	missing := category.NewID()
	c := category.LifeAreaCategory{ID: category.NewID(), Name: "Orphan", ParentID: &missing}

	err := category.ValidateLifeAreaParent(context.Background(), store, c)
	assert.ErrorIs(t, err, category.ErrParentNotFound)
}

func TestValidateLifeAreaParent_DepthExceeded(t *testing.T) {
	// GIVEN: A root with a child (the deepest allowed shape)
	// WHEN: Attaching a grandchild under the child
	// THEN: Validation fails with a depth error

	store := newStore(t)
	root := insertLifeArea(t, store, "Health", nil)
	child := insertLifeArea(t, store, "Fitness", &root.ID)

	grandchild := category.LifeAreaCategory{ID: category.NewID(), Name: "Running", ParentID: &child.ID}
	err := category.ValidateLifeAreaParent(context.Background(), store, grandchild)
	assert.ErrorIs(t, err, category.ErrDepthExceeded)
}

func TestValidateLifeAreaParent_SelfCycle(t *testing.T) {
	store := newStore(t)
	root := insertLifeArea(t, store, "Health", nil)

	root.ParentID = &root.ID
	err := category.ValidateLifeAreaParent(context.Background(), store, root)
	assert.ErrorIs(t, err, category.ErrCycleDetected)
}

func TestValidateLifeAreaParent_ReparentUnderOwnChild(t *testing.T) {
	// Re-parenting a root under its own child would loop the chain.

	store := newStore(t)
	root := insertLifeArea(t, store, "Health", nil)
	child := insertLifeArea(t, store, "Fitness", &root.ID)

	root.ParentID = &child.ID
	err := category.ValidateLifeAreaParent(context.Background(), store, root)
	assert.Error(t, err)
	// Either failure mode is a correct rejection; the bounded walk reports
	// the cycle before walking past the depth limit.
	assert.ErrorIs(t, err, category.ErrCycleDetected)
}

func TestDeleteLifeArea(t *testing.T) {
	// GIVEN: A root with one child
	// WHEN: Deleting in various orders
	// THEN: Parents with children are protected; leaves delete cleanly

	store := newStore(t)
	ctx := context.Background()
	root := insertLifeArea(t, store, "Health", nil)
	child := insertLifeArea(t, store, "Fitness", &root.ID)

	err := category.DeleteLifeArea(ctx, store, root.ID)
	assert.ErrorIs(t, err, category.ErrHasChildren)

	require.NoError(t, category.DeleteLifeArea(ctx, store, child.ID))
	require.NoError(t, category.DeleteLifeArea(ctx, store, root.ID))

	err = category.DeleteLifeArea(ctx, store, root.ID)
	assert.ErrorIs(t, err, category.ErrNotFound)
}
