/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Monetary values cross the wire as {"value": "519.72", "currency": "BRL"}.
  Values are decimal strings, never floats; parsing errors are 400s.

TYPES:
  Accounts:     AccountDTO, OpenAccountRequest, BalanceDTO, TransferDTO
  Transactions: TransactionDTO, TransactionRequest, TagNamesRequest
  Investments:  InvestmentDTO, CreateInvestmentRequest,
                UpdateInvestmentValueRequest, HistoryDTO, OperationDTO
  Tags:         TagDTO, CreateTagRequest
  Categories:   BudgetCategoryDTO, LifeAreaCategoryDTO, CategoryRequest

VALIDATION:
  Structural parsing (dates, decimals) happens in the conversion helpers
  here; domain validation lives in transaction.Validate and friends.

SEE ALSO:
  - handlers.go: Uses these types
  - transaction/errors.go: field-scoped validation errors surfaced as 422
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JuliaMathias/moolah-sub000/category"
	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
	"github.com/JuliaMathias/moolah-sub000/transaction"
)

// =============================================================================
// MONEY
// =============================================================================

// MoneyDTO carries a monetary amount as a decimal string plus currency.
type MoneyDTO struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

func toMoneyDTO(m ledger.Money) MoneyDTO {
	return MoneyDTO{Value: m.Value.String(), Currency: m.Currency}
}

func (d MoneyDTO) toMoney() (ledger.Money, error) {
	value, err := decimal.NewFromString(d.Value)
	if err != nil {
		return ledger.Money{}, fmt.Errorf("invalid decimal value %q", d.Value)
	}
	return ledger.NewMoney(value, d.Currency)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountDTO struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Currency   string `json:"currency"`
	Type       string `json:"type"`
	CreatedAt  string `json:"created_at"`
}

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:         string(a.ID),
		Identifier: a.Identifier,
		Currency:   a.Currency,
		Type:       string(a.Type),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}

type OpenAccountRequest struct {
	Identifier string `json:"identifier"`
	Currency   string `json:"currency"`
	Type       string `json:"type"`
}

type BalanceDTO struct {
	AccountID string   `json:"account_id"`
	Balance   MoneyDTO `json:"balance"`
	AsOf      string   `json:"as_of"`
}

type TransferDTO struct {
	ID            string   `json:"id"`
	FromAccountID string   `json:"from_account_id"`
	ToAccountID   string   `json:"to_account_id"`
	Amount        MoneyDTO `json:"amount"`
	Timestamp     string   `json:"timestamp"`
}

func toTransferDTO(t ledger.Transfer) TransferDTO {
	return TransferDTO{
		ID:            string(t.ID),
		FromAccountID: string(t.FromAccountID),
		ToAccountID:   string(t.ToAccountID),
		Amount:        toMoneyDTO(t.Amount),
		Timestamp:     t.Timestamp.Format(time.RFC3339),
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type TransactionDTO struct {
	ID                 string    `json:"id"`
	Type               string    `json:"type"`
	Amount             MoneyDTO  `json:"amount"`
	SourceAmount       *MoneyDTO `json:"source_amount,omitempty"`
	AccountID          string    `json:"account_id"`
	TargetAccountID    *string   `json:"target_account_id,omitempty"`
	TargetInvestmentID *string   `json:"target_investment_id,omitempty"`
	BudgetCategoryID   *string   `json:"budget_category_id,omitempty"`
	LifeAreaCategoryID *string   `json:"life_area_category_id,omitempty"`
	Date               string    `json:"date"`
	ExchangeRate       string    `json:"exchange_rate"`
	TransferID         string    `json:"transfer_id"`
	SourceTransferID   *string   `json:"source_transfer_id,omitempty"`
	CreatedAt          string    `json:"created_at"`
	UpdatedAt          string    `json:"updated_at"`
}

func toTransactionDTO(t transaction.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:           string(t.ID),
		Type:         string(t.Type),
		Amount:       toMoneyDTO(t.Amount),
		AccountID:    string(t.AccountID),
		Date:         t.Date.Format(time.RFC3339),
		ExchangeRate: t.ExchangeRate.String(),
		TransferID:   string(t.TransferID),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
	if t.SourceAmount != nil {
		m := toMoneyDTO(*t.SourceAmount)
		dto.SourceAmount = &m
	}
	dto.TargetAccountID = strPtrOf(t.TargetAccountID)
	dto.TargetInvestmentID = strPtrOf(t.TargetInvestmentID)
	dto.BudgetCategoryID = strPtrOf(t.BudgetCategoryID)
	dto.LifeAreaCategoryID = strPtrOf(t.LifeAreaCategoryID)
	dto.SourceTransferID = strPtrOf(t.SourceTransferID)
	return dto
}

// TransactionRequest is the create/update body. Date is YYYY-MM-DD.
type TransactionRequest struct {
	Type               string    `json:"type"`
	Amount             MoneyDTO  `json:"amount"`
	SourceAmount       *MoneyDTO `json:"source_amount,omitempty"`
	AccountID          string    `json:"account_id"`
	TargetAccountID    *string   `json:"target_account_id,omitempty"`
	TargetInvestmentID *string   `json:"target_investment_id,omitempty"`
	BudgetCategoryID   *string   `json:"budget_category_id,omitempty"`
	LifeAreaCategoryID *string   `json:"life_area_category_id,omitempty"`
	Date               string    `json:"date"`
}

func (req TransactionRequest) toTransaction() (transaction.Transaction, error) {
	amount, err := req.Amount.toMoney()
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("amount: %w", err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", req.Date)
	}

	t := transaction.Transaction{
		Type:      transaction.Type(req.Type),
		Amount:    amount,
		AccountID: ledger.AccountID(req.AccountID),
		Date:      date,
	}
	if req.SourceAmount != nil {
		source, err := req.SourceAmount.toMoney()
		if err != nil {
			return transaction.Transaction{}, fmt.Errorf("source_amount: %w", err)
		}
		t.SourceAmount = &source
	}
	if req.TargetAccountID != nil {
		id := ledger.AccountID(*req.TargetAccountID)
		t.TargetAccountID = &id
	}
	if req.TargetInvestmentID != nil {
		id := investment.ID(*req.TargetInvestmentID)
		t.TargetInvestmentID = &id
	}
	if req.BudgetCategoryID != nil {
		id := category.ID(*req.BudgetCategoryID)
		t.BudgetCategoryID = &id
	}
	if req.LifeAreaCategoryID != nil {
		id := category.ID(*req.LifeAreaCategoryID)
		t.LifeAreaCategoryID = &id
	}
	return t, nil
}

// TagNamesRequest attaches tags by name; missing tags are created.
type TagNamesRequest struct {
	Names []string `json:"names"`
}

// =============================================================================
// INVESTMENTS
// =============================================================================

type InvestmentDTO struct {
	ID             string   `json:"id"`
	AccountID      string   `json:"account_id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Subtype        string   `json:"subtype"`
	InitialValue   MoneyDTO `json:"initial_value"`
	CurrentValue   MoneyDTO `json:"current_value"`
	PurchaseDate   *string  `json:"purchase_date,omitempty"`
	RedemptionDate *string  `json:"redemption_date,omitempty"`
	Redeemed       bool     `json:"redeemed"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

func toInvestmentDTO(inv investment.Investment) InvestmentDTO {
	dto := InvestmentDTO{
		ID:           string(inv.ID),
		AccountID:    string(inv.AccountID),
		Name:         inv.Name,
		Type:         string(inv.Type),
		Subtype:      string(inv.Subtype),
		InitialValue: toMoneyDTO(inv.InitialValue),
		CurrentValue: toMoneyDTO(inv.CurrentValue),
		Redeemed:     inv.Redeemed(time.Now().UTC()),
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    inv.UpdatedAt.Format(time.RFC3339),
	}
	dto.PurchaseDate = datePtrString(inv.PurchaseDate)
	dto.RedemptionDate = datePtrString(inv.RedemptionDate)
	return dto
}

type CreateInvestmentRequest struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	InitialValue MoneyDTO `json:"initial_value"`
	CurrentValue MoneyDTO `json:"current_value"`
	PurchaseDate *string  `json:"purchase_date,omitempty"`
}

type UpdateInvestmentValueRequest struct {
	Value MoneyDTO `json:"value"`
	// Market selects market-revaluation classification: the operation is
	// recorded as a signed update instead of a deposit/withdraw.
	Market bool `json:"market"`
}

type HistoryDTO struct {
	ID           string   `json:"id"`
	InvestmentID string   `json:"investment_id"`
	RecordedOn   string   `json:"recorded_on"`
	Value        MoneyDTO `json:"value"`
}

func toHistoryDTO(h investment.History) HistoryDTO {
	return HistoryDTO{
		ID:           string(h.ID),
		InvestmentID: string(h.InvestmentID),
		RecordedOn:   h.RecordedOn.Format("2006-01-02"),
		Value:        toMoneyDTO(h.Value),
	}
}

type OperationDTO struct {
	ID            string   `json:"id"`
	InvestmentID  string   `json:"investment_id"`
	TransactionID string   `json:"transaction_id,omitempty"`
	Type          string   `json:"type"`
	Value         MoneyDTO `json:"value"`
	CreatedAt     string   `json:"created_at"`
}

func toOperationDTO(op investment.Operation) OperationDTO {
	return OperationDTO{
		ID:            string(op.ID),
		InvestmentID:  string(op.InvestmentID),
		TransactionID: op.TransactionID,
		Type:          string(op.Type),
		Value:         toMoneyDTO(op.Value),
		CreatedAt:     op.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// TAGS
// =============================================================================

type TagDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	ArchivedAt *string `json:"archived_at,omitempty"`
}

func toTagDTO(t transaction.Tag) TagDTO {
	dto := TagDTO{
		ID:   string(t.ID),
		Name: t.Name,
		Slug: t.Slug,
	}
	if t.ArchivedAt != nil {
		s := t.ArchivedAt.Format(time.RFC3339)
		dto.ArchivedAt = &s
	}
	return dto
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// CATEGORIES
// =============================================================================

type BudgetCategoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toBudgetCategoryDTO(c category.BudgetCategory) BudgetCategoryDTO {
	return BudgetCategoryDTO{ID: string(c.ID), Name: c.Name}
}

type LifeAreaCategoryDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

func toLifeAreaCategoryDTO(c category.LifeAreaCategory) LifeAreaCategoryDTO {
	return LifeAreaCategoryDTO{
		ID:       string(c.ID),
		Name:     c.Name,
		ParentID: strPtrOf(c.ParentID),
	}
}

type CategoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Details string          `json:"details,omitempty"`
	Fields  []FieldErrorDTO `json:"fields,omitempty"`
}

// FieldErrorDTO surfaces one field-scoped validation failure.
type FieldErrorDTO struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// HELPERS
// =============================================================================

func strPtrOf[T ~string](p *T) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func datePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
