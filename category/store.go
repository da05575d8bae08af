package category

import "context"

// Store persists categories. Get methods return nil for missing rows.
type Store interface {
	InsertBudgetCategory(ctx context.Context, c BudgetCategory) error
	GetBudgetCategory(ctx context.Context, id ID) (*BudgetCategory, error)
	ListBudgetCategories(ctx context.Context) ([]BudgetCategory, error)
	DeleteBudgetCategory(ctx context.Context, id ID) error

	InsertLifeAreaCategory(ctx context.Context, c LifeAreaCategory) error
	UpdateLifeAreaCategory(ctx context.Context, c LifeAreaCategory) error
	GetLifeAreaCategory(ctx context.Context, id ID) (*LifeAreaCategory, error)
	ListLifeAreaCategories(ctx context.Context) ([]LifeAreaCategory, error)
	DeleteLifeAreaCategory(ctx context.Context, id ID) error

	// CountLifeAreaChildren returns how many categories name id as parent.
	CountLifeAreaChildren(ctx context.Context, id ID) (int, error)
}
