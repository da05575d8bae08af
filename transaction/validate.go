/*
validate.go - Pre-flight validation for transactions

PURPOSE:
  Every structural and currency check that must pass before the
  reconciler touches the ledger. Failures come back as a field-scoped
  ValidationErrors list; a non-empty list means no write happened.

DEFERRAL RULE:
  When a referenced account or investment cannot be loaded, the affected
  check passes instead of failing. The schema's foreign-key constraint
  raises the authoritative existence error; reporting a currency
  mismatch against a missing account would mask the real problem.

FIELD RULES BY TYPE:
  debit     requires budget_category_id and life_area_category_id,
            forbids target_account_id, target_investment_id, source_amount
  credit    requires life_area_category_id,
            forbids budget_category_id, target_account_id,
            target_investment_id, source_amount
  transfer  requires target_account_id,
            forbids budget_category_id and life_area_category_id;
            source_amount allowed only in a different currency than
            amount (same-currency source_amount is redundant input and
            rejected);
            target_investment_id required exactly when either side is an
            investment account, and must resolve to the investment backed
            by that account
*/
package transaction

import (
	"context"

	"github.com/JuliaMathias/moolah-sub000/ledger"
)

// Validate runs every pre-flight check. The returned list is nil when the
// transaction is valid; a non-nil error reports an infrastructure failure,
// not a validation outcome.
func Validate(ctx context.Context, b Backend, t Transaction) (ValidationErrors, error) {
	var errs ValidationErrors

	if !ValidType(t.Type) {
		errs.add("transaction_type", CodeInvalidType, "must be debit, credit or transfer")
		return errs, nil
	}
	if !t.Amount.IsPositive() {
		errs.add("amount", CodeMustBePositive, "must be greater than zero")
	}
	if t.AccountID == "" {
		errs.add("account_id", CodeRequired, "is required")
	}

	validateFields(t, &errs)
	if err := validateCategories(ctx, b, t, &errs); err != nil {
		return nil, err
	}
	if err := validateCurrencies(ctx, b, t, &errs); err != nil {
		return nil, err
	}
	if err := validateInvestmentTarget(ctx, b, t, &errs); err != nil {
		return nil, err
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

// validateFields enforces the type-dependent required/forbidden matrix.
func validateFields(t Transaction, errs *ValidationErrors) {
	switch t.Type {
	case TypeDebit:
		if t.BudgetCategoryID == nil {
			errs.add("budget_category_id", CodeRequired, "is required for debits")
		}
		if t.LifeAreaCategoryID == nil {
			errs.add("life_area_category_id", CodeRequired, "is required for debits")
		}
		if t.TargetAccountID != nil {
			errs.add("target_account_id", CodeForbidden, "is not allowed on debits")
		}
		if t.SourceAmount != nil {
			errs.add("source_amount", CodeForbidden, "is only allowed on transfers")
		}
	case TypeCredit:
		if t.LifeAreaCategoryID == nil {
			errs.add("life_area_category_id", CodeRequired, "is required for credits")
		}
		if t.BudgetCategoryID != nil {
			errs.add("budget_category_id", CodeForbidden, "is not allowed on credits")
		}
		if t.TargetAccountID != nil {
			errs.add("target_account_id", CodeForbidden, "is not allowed on credits")
		}
		if t.SourceAmount != nil {
			errs.add("source_amount", CodeForbidden, "is only allowed on transfers")
		}
	case TypeTransfer:
		if t.TargetAccountID == nil {
			errs.add("target_account_id", CodeRequired, "is required for transfers")
		}
		if t.BudgetCategoryID != nil {
			errs.add("budget_category_id", CodeForbidden, "is not allowed on transfers")
		}
		if t.LifeAreaCategoryID != nil {
			errs.add("life_area_category_id", CodeForbidden, "is not allowed on transfers")
		}
		if t.SourceAmount != nil && t.SourceAmount.Currency == t.Amount.Currency {
			// An explicit source amount in the target currency carries no
			// information; reject rather than silently accept.
			errs.add("source_amount", CodeRedundant, "must use a different currency than amount")
		}
	}
	if t.Type != TypeTransfer && t.TargetInvestmentID != nil {
		errs.add("target_investment_id", CodeForbidden, "is only allowed on transfers")
	}
}

// validateCategories checks that referenced categories exist.
func validateCategories(ctx context.Context, b Backend, t Transaction, errs *ValidationErrors) error {
	if t.BudgetCategoryID != nil {
		c, err := b.GetBudgetCategory(ctx, *t.BudgetCategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			errs.add("budget_category_id", CodeCategoryNotFound, "does not exist")
		}
	}
	if t.LifeAreaCategoryID != nil {
		c, err := b.GetLifeAreaCategory(ctx, *t.LifeAreaCategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			errs.add("life_area_category_id", CodeCategoryNotFound, "does not exist")
		}
	}
	return nil
}

// validateCurrencies checks each amount against its account's currency.
// Missing accounts defer to the foreign-key check.
func validateCurrencies(ctx context.Context, b Backend, t Transaction, errs *ValidationErrors) error {
	source, err := b.GetAccount(ctx, t.AccountID)
	if err != nil {
		return err
	}

	switch t.Type {
	case TypeDebit, TypeCredit:
		if source != nil && source.Currency != t.Amount.Currency {
			errs.add("amount", CodeCurrencyMismatch, "currency does not match the account currency")
		}
	case TypeTransfer:
		var target *ledger.Account
		if t.TargetAccountID != nil {
			target, err = b.GetAccount(ctx, *t.TargetAccountID)
			if err != nil {
				return err
			}
		}
		if t.MultiCurrency() {
			if source != nil && source.Currency != t.SourceAmount.Currency {
				errs.add("source_amount", CodeCurrencyMismatch, "currency does not match the source account currency")
			}
			if target != nil && target.Currency != t.Amount.Currency {
				errs.add("amount", CodeCurrencyMismatch, "currency does not match the target account currency")
			}
		} else {
			if source != nil && source.Currency != t.Amount.Currency {
				errs.add("amount", CodeCurrencyMismatch, "currency does not match the source account currency")
			}
			if target != nil && target.Currency != t.Amount.Currency {
				errs.add("amount", CodeCurrencyMismatch, "currency does not match the target account currency")
			}
		}
	}
	return nil
}

// validateInvestmentTarget enforces the investment linkage rules on
// transfers. target_investment_id is required exactly when either side is
// an investment account, and must resolve to the investment backed by the
// involved account.
func validateInvestmentTarget(ctx context.Context, b Backend, t Transaction, errs *ValidationErrors) error {
	if t.Type != TypeTransfer {
		return nil
	}

	involved, err := involvedInvestmentAccount(ctx, b, t)
	if err != nil {
		return err
	}

	if involved == nil {
		if t.TargetInvestmentID != nil {
			errs.add("target_investment_id", CodeForbidden, "is only allowed when a transfer involves an investment account")
		}
		return nil
	}

	if t.TargetInvestmentID == nil {
		errs.add("target_investment_id", CodeRequired, "is required when a transfer involves an investment account")
		return nil
	}

	inv, err := b.GetInvestment(ctx, *t.TargetInvestmentID)
	if err != nil {
		return err
	}
	if inv == nil {
		// Defer: the foreign key surfaces the existence error.
		return nil
	}
	if inv.AccountID != involved.ID {
		errs.add("target_investment_id", CodeInvestmentMismatch, "does not belong to the investment account in this transfer")
	}
	return nil
}

// involvedInvestmentAccount returns the investment account on either side
// of the transfer, preferring the target side, or nil when neither side is
// one. Missing accounts defer.
func involvedInvestmentAccount(ctx context.Context, b Backend, t Transaction) (*ledger.Account, error) {
	if t.TargetAccountID != nil {
		target, err := b.GetAccount(ctx, *t.TargetAccountID)
		if err != nil {
			return nil, err
		}
		if target != nil && target.Type == ledger.AccountInvestment {
			return target, nil
		}
	}
	source, err := b.GetAccount(ctx, t.AccountID)
	if err != nil {
		return nil, err
	}
	if source != nil && source.Type == ledger.AccountInvestment {
		return source, nil
	}
	return nil, nil
}
