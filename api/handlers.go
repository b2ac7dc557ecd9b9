/*
handlers.go - HTTP handler implementations

Each submission endpoint decodes its payload, builds the matching
orchestrator, and maps the outcome:
  201 + entity     committed
  422 + errors     validation failed (field -> messages)
  500 + errors     infrastructure failure (single "base" error)

The owner id is taken from the X-Owner-ID header; authentication itself
is an upstream collaborator.
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillfin/pocketbook/ledger"
	"github.com/quillfin/pocketbook/submission"
	"github.com/quillfin/pocketbook/suggest"
)

type Handler struct {
	store   ledger.TxStore
	suggest *suggest.Service
	deps    submission.Deps
	log     *slog.Logger
}

func NewHandler(store ledger.TxStore, marker ledger.OnboardingMarker, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store:   store,
		suggest: suggest.New(store),
		deps: submission.Deps{
			Store:    store,
			Describe: ledger.NewFormatDescriber(),
			Marker:   marker,
			Log:      log,
		},
		log: log,
	}
}

// =============================================================================
// SUBMISSION ENDPOINTS
// =============================================================================

func (h *Handler) SetupAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var payload submission.AccountPayload
	if !h.decode(w, r, &payload) {
		return
	}

	s := submission.NewAccountSetup(h.deps, owner, payload)
	account, err := s.Submit(r.Context())
	if err != nil {
		h.submissionError(w, s.Errors(), err)
		return
	}
	h.respond(w, http.StatusCreated, toAccountDTO(account))
}

func (h *Handler) SetupGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var payload submission.AccountPayload
	if !h.decode(w, r, &payload) {
		return
	}

	s := submission.NewGoalSetup(h.deps, owner, payload)
	account, err := s.Submit(r.Context())
	if err != nil {
		h.submissionError(w, s.Errors(), err)
		return
	}
	h.respond(w, http.StatusOK, toAccountDTO(account))
}

func (h *Handler) SetupDebt(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var payload submission.DebtPayload
	if !h.decode(w, r, &payload) {
		return
	}

	s := submission.NewDebtSetup(h.deps, owner, payload)
	debt, err := s.Submit(r.Context())
	if err != nil {
		h.submissionError(w, s.Errors(), err)
		return
	}
	h.respond(w, http.StatusCreated, toDebtDTO(debt))
}

func (h *Handler) SetupAccountBatch(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var payload submission.BatchPayload
	if !h.decode(w, r, &payload) {
		return
	}

	s := submission.NewBatchSetup(h.deps, owner, payload)
	entries, err := s.Submit(r.Context())
	if err != nil {
		h.submissionError(w, s.Errors(), err)
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	h.respond(w, http.StatusCreated, dtos)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var payload submission.EntryPayload
	if !h.decode(w, r, &payload) {
		return
	}

	s := submission.NewEntrySubmission(h.deps, owner, payload)
	result, err := s.Submit(r.Context())
	if err != nil {
		h.submissionError(w, s.Errors(), err)
		return
	}

	body := map[string]any{}
	if result.Entry != nil {
		body["entry"] = toEntryDTO(result.Entry)
	}
	if result.Partner != nil {
		body["partner"] = toEntryDTO(result.Partner)
	}
	h.respond(w, http.StatusCreated, body)
}

// =============================================================================
// READ ENDPOINTS
// =============================================================================

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	accounts, err := h.store.ListAccounts(r.Context(), owner)
	if err != nil {
		h.serverError(w, err)
		return
	}
	dtos := make([]AccountDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, toAccountDTO(&accounts[i]))
	}
	h.respond(w, http.StatusOK, dtos)
}

func (h *Handler) ListAccountEntries(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id := ledger.AccountID(chi.URLParam(r, "id"))
	if _, err := h.store.FindAccountByID(r.Context(), owner, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		h.serverError(w, err)
		return
	}

	entries, err := h.store.EntriesByAccount(r.Context(), owner, id)
	if err != nil {
		h.serverError(w, err)
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, toEntryDTO(&entries[i]))
	}
	h.respond(w, http.StatusOK, dtos)
}

func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	debts, err := h.store.ListDebts(r.Context(), owner)
	if err != nil {
		h.serverError(w, err)
		return
	}
	dtos := make([]DebtDTO, 0, len(debts))
	for i := range debts {
		dtos = append(dtos, toDebtDTO(&debts[i]))
	}
	h.respond(w, http.StatusOK, dtos)
}

func (h *Handler) SuggestAccounts(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	names, err := h.suggest.AccountNames(r.Context(), owner)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.respond(w, http.StatusOK, names)
}

func (h *Handler) SuggestEntryTypes(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	names, err := h.suggest.EntryTypeNames(r.Context(), owner)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.respond(w, http.StatusOK, names)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (ledger.OwnerID, bool) {
	owner := r.Header.Get("X-Owner-ID")
	if owner == "" {
		http.Error(w, "missing X-Owner-ID header", http.StatusBadRequest)
		return "", false
	}
	return ledger.OwnerID(owner), true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

// submissionError maps a failed Submit to 422 (validation) or 500
// (infrastructure); either way the body carries the error collection.
func (h *Handler) submissionError(w http.ResponseWriter, errs ledger.FieldErrors, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ledger.ErrInvalid) {
		status = http.StatusUnprocessableEntity
	}
	h.respond(w, status, errorBody{Errors: errs})
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.log.Error("request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
