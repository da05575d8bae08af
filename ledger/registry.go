/*
registry.go - Idempotent account open-or-get

PURPOSE:
  The Account Registry is the only way accounts come into existence.
  OpenOrGet is an upsert-on-identity: if an account with the identifier
  already exists it is returned unchanged, ignoring the supplied currency
  and type. Otherwise a new account is created.

CONCURRENCY:
  The store's insert-on-conflict-ignore keyed on the identifier unique
  index makes concurrent calls converge on a single row. A plain
  check-then-insert would race; we never do that.
*/
package ledger

import "context"

// OpenOrGet returns the account with the given identifier, creating it if
// absent. Fails if currency or account type are missing or invalid; on
// conflict the existing row wins and the supplied attributes are ignored.
func OpenOrGet(ctx context.Context, s AccountStore, identifier, currency string, accountType AccountType) (*Account, error) {
	if identifier == "" {
		return nil, ErrIdentifierRequired
	}
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	if accountType == "" {
		return nil, ErrAccountTypeRequired
	}
	if !ValidAccountType(accountType) {
		return nil, ErrInvalidAccountType
	}

	candidate := Account{
		ID:         NewAccountID(),
		Identifier: identifier,
		Currency:   code,
		Type:       accountType,
	}
	if err := s.InsertAccountIfAbsent(ctx, candidate); err != nil {
		return nil, err
	}
	// Read back the surviving row: ours, or whoever won the race.
	a, err := s.GetAccountByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}
