/*
handlers.go - HTTP API handlers for the ledger and reconciliation service

PURPOSE:
  Exposes the double-entry ledger, transaction reconciler, investments,
  tags and categories via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                    List all accounts
    POST   /api/accounts                    Open (or get) an account
    GET    /api/accounts/{id}               Get account details
    GET    /api/accounts/{id}/balance       Balance, optionally ?as_of=
    GET    /api/accounts/{id}/transfers     Transfer history

  Transactions:
    GET    /api/transactions                List transactions
    POST   /api/transactions                Create (validates + reconciles)
    GET    /api/transactions/{id}           Get transaction
    PUT    /api/transactions/{id}           Update (replaces its transfers)
    DELETE /api/transactions/{id}           Delete (reverses its transfers)
    GET    /api/transactions/{id}/tags      List attached tags
    POST   /api/transactions/{id}/tags      Attach tags by name
    DELETE /api/transactions/{id}/tags/{tagID}  Detach one tag

  Investments:
    GET    /api/investments                 List, ?include_redeemed=true
    POST   /api/investments                 Create with history synthesis
    GET    /api/investments/{id}            Get investment
    POST   /api/investments/{id}/value      Revalue (market flag in body)
    GET    /api/investments/{id}/history    Value history
    GET    /api/investments/{id}/operations Classified operations

  Tags:
    GET    /api/tags                        List, ?include_archived=true
    POST   /api/tags                        Find-or-create by name
    DELETE /api/tags/{id}                   Archive (soft delete)

  Categories:
    GET/POST       /api/categories/budget
    DELETE         /api/categories/budget/{id}
    GET/POST       /api/categories/life-areas
    PUT/DELETE     /api/categories/life-areas/{id}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input (bad JSON, bad decimals, bad dates)
  - 404: Resource not found
  - 409: Structural conflicts (category in use, tree violations)
  - 422: Domain validation failures, with field-scoped details
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - transaction/reconciler.go: The logic behind transaction writes
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JuliaMathias/moolah-sub000/category"
	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
	"github.com/JuliaMathias/moolah-sub000/store/sqlite"
	"github.com/JuliaMathias/moolah-sub000/transaction"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts, synthetic ones included.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// OpenAccount opens an account, or returns the existing one with the same
// identifier. Repeated calls are idempotent.
func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	account, err := ledger.OpenOrGet(r.Context(), h.Store, req.Identifier, req.Currency, ledger.AccountType(req.Type))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to open account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(*account))
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))

	account, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*account))
}

// GetAccountBalance returns the account's balance, at ?as_of=YYYY-MM-DD if
// given, otherwise now. Accounts with no transfers report zero.
func (h *Handler) GetAccountBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ledger.AccountID(chi.URLParam(r, "id"))

	account, err := h.Store.GetAccount(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}

	at := time.Now().UTC()
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		parsed, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
			return
		}
		// End of day, so transfers dated that day are included.
		at = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	balance, err := ledger.BalanceAsOf(ctx, h.Store, account, at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve balance", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		AccountID: string(account.ID),
		Balance:   toMoneyDTO(balance),
		AsOf:      at.Format(time.RFC3339),
	})
}

// ListAccountTransfers returns every transfer touching the account, in
// creation order.
func (h *Handler) ListAccountTransfers(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))

	transfers, err := h.Store.ListTransfersByAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transfers", err)
		return
	}

	dtos := make([]TransferDTO, len(transfers))
	for i, t := range transfers {
		dtos[i] = toTransferDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns all transactions, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txns))
	for i, t := range txns {
		dtos[i] = toTransactionDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction validates the request, records its ledger transfers and
// persists the transaction, all atomically.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction", err)
		return
	}
	t.ID = transaction.NewID()

	created, err := transaction.Create(r.Context(), h.Store, t)
	if err != nil {
		writeTransactionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(*created))
}

// GetTransaction returns a single transaction.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := transaction.ID(chi.URLParam(r, "id"))

	t, err := h.Store.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get transaction", err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(*t))
}

// UpdateTransaction replaces the transaction's attributes. When ledger-
// relevant fields changed, its transfers are re-recorded and the old ones
// reversed in the same unit.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction", err)
		return
	}
	t.ID = transaction.ID(chi.URLParam(r, "id"))

	updated, err := transaction.Update(r.Context(), h.Store, t)
	if err != nil {
		writeTransactionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(*updated))
}

// DeleteTransaction removes the transaction and reverses its transfers.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := transaction.ID(chi.URLParam(r, "id"))

	if err := transaction.Delete(r.Context(), h.Store, id); err != nil {
		writeTransactionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeTransactionError maps reconciler errors onto HTTP statuses.
func writeTransactionError(w http.ResponseWriter, err error) {
	var verrs transaction.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldErrorDTO, len(verrs))
		for i, fe := range verrs {
			fields[i] = FieldErrorDTO{Field: fe.Field, Code: fe.Code, Message: fe.Message}
		}
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}
	if errors.Is(err, transaction.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to process transaction", err)
}

// =============================================================================
// TRANSACTION TAG HANDLERS
// =============================================================================

// ListTransactionTags returns the non-archived tags on a transaction.
func (h *Handler) ListTransactionTags(w http.ResponseWriter, r *http.Request) {
	id := transaction.ID(chi.URLParam(r, "id"))

	tags, err := h.Store.ListTransactionTags(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tags", err)
		return
	}

	dtos := make([]TagDTO, len(tags))
	for i, t := range tags {
		dtos[i] = toTagDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AttachTransactionTags attaches tags by name, creating missing ones.
// Attaching an already-attached tag is a no-op.
func (h *Handler) AttachTransactionTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := transaction.ID(chi.URLParam(r, "id"))

	var req TagNamesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t, err := h.Store.GetTransaction(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get transaction", err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}

	var dtos []TagDTO
	for _, name := range req.Names {
		tag, err := transaction.FindOrCreateTag(ctx, h.Store, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to create tag", err)
			return
		}
		if err := h.Store.AttachTag(ctx, id, tag.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to attach tag", err)
			return
		}
		dtos = append(dtos, toTagDTO(*tag))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DetachTransactionTag removes one tag link.
func (h *Handler) DetachTransactionTag(w http.ResponseWriter, r *http.Request) {
	id := transaction.ID(chi.URLParam(r, "id"))
	tagID := transaction.TagID(chi.URLParam(r, "tagID"))

	if err := h.Store.DetachTag(r.Context(), id, tagID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to detach tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INVESTMENT HANDLERS
// =============================================================================

// ListInvestments returns investments; redeemed positions only with
// ?include_redeemed=true.
func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	includeRedeemed := r.URL.Query().Get("include_redeemed") == "true"

	invs, err := h.Store.ListInvestments(r.Context(), includeRedeemed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list investments", err)
		return
	}

	dtos := make([]InvestmentDTO, len(invs))
	for i, inv := range invs {
		dtos[i] = toInvestmentDTO(inv)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateInvestment creates an investment and synthesizes its opening
// history entries.
func (h *Handler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req CreateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	initial, err := req.InitialValue.toMoney()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid initial_value", err)
		return
	}
	current, err := req.CurrentValue.toMoney()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid current_value", err)
		return
	}

	inv := investment.Investment{
		ID:           investment.NewID(),
		AccountID:    ledger.AccountID(req.AccountID),
		Name:         req.Name,
		Type:         investment.Type(req.Type),
		Subtype:      investment.Subtype(req.Subtype),
		InitialValue: initial,
		CurrentValue: current,
	}
	if req.PurchaseDate != nil {
		purchase, err := time.Parse("2006-01-02", *req.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid purchase_date (use YYYY-MM-DD)", err)
			return
		}
		inv.PurchaseDate = &purchase
	}

	// One unit: the investment row and its opening history land together
	// or not at all.
	var created *investment.Investment
	err = h.Store.InTx(r.Context(), func(tx transaction.Backend) error {
		var err error
		created, err = investment.Create(r.Context(), tx, tx, inv, time.Now().UTC())
		return err
	})
	if err != nil {
		writeInvestmentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentDTO(*created))
}

// GetInvestment returns a single investment.
func (h *Handler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	id := investment.ID(chi.URLParam(r, "id"))

	inv, err := h.Store.GetInvestment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get investment", err)
		return
	}
	if inv == nil {
		writeError(w, http.StatusNotFound, "Investment not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentDTO(*inv))
}

// UpdateInvestmentValue revalues the investment, appending history and a
// classified operation.
func (h *Handler) UpdateInvestmentValue(w http.ResponseWriter, r *http.Request) {
	id := investment.ID(chi.URLParam(r, "id"))

	var req UpdateInvestmentValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	value, err := req.Value.toMoney()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid value", err)
		return
	}

	// Value, history snapshot and classified operation are one unit.
	var updated *investment.Investment
	err = h.Store.InTx(r.Context(), func(tx transaction.Backend) error {
		var err error
		updated, err = investment.UpdateValue(r.Context(), tx, id, value, req.Market, time.Now().UTC())
		return err
	})
	if err != nil {
		writeInvestmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentDTO(*updated))
}

// ListInvestmentHistory returns the investment's value history in
// chronological order.
func (h *Handler) ListInvestmentHistory(w http.ResponseWriter, r *http.Request) {
	id := investment.ID(chi.URLParam(r, "id"))

	histories, err := h.Store.ListHistory(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history", err)
		return
	}

	dtos := make([]HistoryDTO, len(histories))
	for i, hist := range histories {
		dtos[i] = toHistoryDTO(hist)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListInvestmentOperations returns the investment's classified operations.
func (h *Handler) ListInvestmentOperations(w http.ResponseWriter, r *http.Request) {
	id := investment.ID(chi.URLParam(r, "id"))

	ops, err := h.Store.ListOperations(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list operations", err)
		return
	}

	dtos := make([]OperationDTO, len(ops))
	for i, op := range ops {
		dtos[i] = toOperationDTO(op)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func writeInvestmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, investment.ErrNotFound):
		writeError(w, http.StatusNotFound, "Investment not found", nil)
	case errors.Is(err, investment.ErrInvalidPairing),
		errors.Is(err, investment.ErrCurrencyMismatch),
		errors.Is(err, investment.ErrAccountNotInvestment),
		errors.Is(err, ledger.ErrAccountNotFound):
		writeError(w, http.StatusUnprocessableEntity, "Invalid investment", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process investment", err)
	}
}

// =============================================================================
// TAG HANDLERS
// =============================================================================

// ListTags returns tags; archived ones only with ?include_archived=true.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	tags, err := h.Store.ListTags(r.Context(), includeArchived)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tags", err)
		return
	}

	dtos := make([]TagDTO, len(tags))
	for i, t := range tags {
		dtos[i] = toTagDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTag finds or creates a tag by name. Names differing only in case
// resolve to the same tag.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tag, err := transaction.FindOrCreateTag(r.Context(), h.Store, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTagDTO(*tag))
}

// ArchiveTag soft-deletes a tag; it disappears from default listings but
// existing links stay in place.
func (h *Handler) ArchiveTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := transaction.TagID(chi.URLParam(r, "id"))

	tag, err := h.Store.GetTag(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tag", err)
		return
	}
	if tag == nil {
		writeError(w, http.StatusNotFound, "Tag not found", nil)
		return
	}

	if err := h.Store.ArchiveTag(ctx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to archive tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListBudgetCategories returns all budget categories.
func (h *Handler) ListBudgetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Store.ListBudgetCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}

	dtos := make([]BudgetCategoryDTO, len(cats))
	for i, c := range cats {
		dtos[i] = toBudgetCategoryDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBudgetCategory creates a budget category.
func (h *Handler) CreateBudgetCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	cat := category.BudgetCategory{ID: category.NewID(), Name: req.Name}
	if err := h.Store.InsertBudgetCategory(r.Context(), cat); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetCategoryDTO(cat))
}

// DeleteBudgetCategory deletes a budget category. Categories referenced by
// transactions are protected by the foreign key.
func (h *Handler) DeleteBudgetCategory(w http.ResponseWriter, r *http.Request) {
	id := category.ID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteBudgetCategory(r.Context(), id); err != nil {
		writeError(w, http.StatusConflict, "Failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLifeAreaCategories returns all life-area categories.
func (h *Handler) ListLifeAreaCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Store.ListLifeAreaCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}

	dtos := make([]LifeAreaCategoryDTO, len(cats))
	for i, c := range cats {
		dtos[i] = toLifeAreaCategoryDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLifeAreaCategory creates a life-area category, enforcing the tree
// rules (existing parent, max depth, no cycles).
func (h *Handler) CreateLifeAreaCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	cat := category.LifeAreaCategory{ID: category.NewID(), Name: req.Name}
	if req.ParentID != nil {
		p := category.ID(*req.ParentID)
		cat.ParentID = &p
	}

	if err := category.ValidateLifeAreaParent(ctx, h.Store, cat); err != nil {
		writeCategoryError(w, err)
		return
	}
	if err := h.Store.InsertLifeAreaCategory(ctx, cat); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLifeAreaCategoryDTO(cat))
}

// UpdateLifeAreaCategory renames or re-parents a life-area category under
// the same tree rules.
func (h *Handler) UpdateLifeAreaCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := category.ID(chi.URLParam(r, "id"))

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Store.GetLifeAreaCategory(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get category", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Category not found", nil)
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	existing.ParentID = nil
	if req.ParentID != nil {
		p := category.ID(*req.ParentID)
		existing.ParentID = &p
	}

	if err := category.ValidateLifeAreaParent(ctx, h.Store, *existing); err != nil {
		writeCategoryError(w, err)
		return
	}
	if err := h.Store.UpdateLifeAreaCategory(ctx, *existing); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update category", err)
		return
	}
	writeJSON(w, http.StatusOK, toLifeAreaCategoryDTO(*existing))
}

// DeleteLifeAreaCategory deletes a leaf life-area category.
func (h *Handler) DeleteLifeAreaCategory(w http.ResponseWriter, r *http.Request) {
	if err := category.DeleteLifeArea(r.Context(), h.Store, category.ID(chi.URLParam(r, "id"))); err != nil {
		writeCategoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrNotFound):
		writeError(w, http.StatusNotFound, "Category not found", nil)
	case errors.Is(err, category.ErrParentNotFound),
		errors.Is(err, category.ErrDepthExceeded),
		errors.Is(err, category.ErrCycleDetected),
		errors.Is(err, category.ErrHasChildren):
		writeError(w, http.StatusConflict, "Category tree violation", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process category", err)
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
