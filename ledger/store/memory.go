// Package store provides the in-memory TxStore used by tests and dev mode.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/quillfin/pocketbook/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.Mutex
	accounts   []ledger.Account
	entryTypes []ledger.EntryType
	entries    []ledger.Entry
	debts      []ledger.Debt
}

func NewMemory() *Memory {
	return &Memory{}
}

// WithTx executes fn within a simulated transaction: state is
// snapshotted up front and restored if fn fails. The mutex is held for
// the whole closure, which serializes concurrent submissions.
func (m *Memory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&view{m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	accounts   []ledger.Account
	entryTypes []ledger.EntryType
	entries    []ledger.Entry
	debts      []ledger.Debt
}

func (m *Memory) snapshot() memorySnapshot {
	return memorySnapshot{
		accounts:   append([]ledger.Account(nil), m.accounts...),
		entryTypes: append([]ledger.EntryType(nil), m.entryTypes...),
		entries:    append([]ledger.Entry(nil), m.entries...),
		debts:      append([]ledger.Debt(nil), m.debts...),
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.accounts = s.accounts
	m.entryTypes = s.entryTypes
	m.entries = s.entries
	m.debts = s.debts
}

// =============================================================================
// STORE METHODS - Locked wrappers over the unexported view
// =============================================================================
// The view methods assume the mutex is held; the Memory methods below take
// it, so the same code serves both direct access and WithTx closures.

func (m *Memory) FindAccountByName(ctx context.Context, owner ledger.OwnerID, name string) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).FindAccountByName(ctx, owner, name)
}

func (m *Memory) FindAccountByID(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).FindAccountByID(ctx, owner, id)
}

func (m *Memory) InsertAccount(ctx context.Context, a *ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).InsertAccount(ctx, a)
}

func (m *Memory) UpdateAccount(ctx context.Context, a *ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).UpdateAccount(ctx, a)
}

func (m *Memory) ListAccounts(ctx context.Context, owner ledger.OwnerID) ([]ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).ListAccounts(ctx, owner)
}

func (m *Memory) FindEntryType(ctx context.Context, owner ledger.OwnerID, kind ledger.Kind, name string) (*ledger.EntryType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).FindEntryType(ctx, owner, kind, name)
}

func (m *Memory) InsertEntryType(ctx context.Context, t *ledger.EntryType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).InsertEntryType(ctx, t)
}

func (m *Memory) ListEntryTypes(ctx context.Context, owner ledger.OwnerID) ([]ledger.EntryType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).ListEntryTypes(ctx, owner)
}

func (m *Memory) InsertEntry(ctx context.Context, e *ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).InsertEntry(ctx, e)
}

func (m *Memory) EntriesByAccount(ctx context.Context, owner ledger.OwnerID, account ledger.AccountID) ([]ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).EntriesByAccount(ctx, owner, account)
}

func (m *Memory) EntriesByOwner(ctx context.Context, owner ledger.OwnerID) ([]ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).EntriesByOwner(ctx, owner)
}

func (m *Memory) SumSignedAmounts(ctx context.Context, owner ledger.OwnerID, account ledger.AccountID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).SumSignedAmounts(ctx, owner, account)
}

func (m *Memory) FindDebtByID(ctx context.Context, owner ledger.OwnerID, id ledger.DebtID) (*ledger.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).FindDebtByID(ctx, owner, id)
}

func (m *Memory) InsertDebt(ctx context.Context, d *ledger.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).InsertDebt(ctx, d)
}

func (m *Memory) UpdateDebt(ctx context.Context, d *ledger.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).UpdateDebt(ctx, d)
}

func (m *Memory) ListDebts(ctx context.Context, owner ledger.OwnerID) ([]ledger.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m}).ListDebts(ctx, owner)
}

// =============================================================================
// VIEW - Unlocked store used inside WithTx closures
// =============================================================================

type view struct {
	m *Memory
}

func (v *view) FindAccountByName(_ context.Context, owner ledger.OwnerID, name string) (*ledger.Account, error) {
	norm := ledger.NormalizeName(name)
	for i := range v.m.accounts {
		a := v.m.accounts[i]
		if a.OwnerID == owner && ledger.NormalizeName(a.Name) == norm {
			cp := a
			return &cp, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (v *view) FindAccountByID(_ context.Context, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	for i := range v.m.accounts {
		a := v.m.accounts[i]
		if a.OwnerID == owner && a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (v *view) InsertAccount(ctx context.Context, a *ledger.Account) error {
	if _, err := v.FindAccountByName(ctx, a.OwnerID, a.Name); err == nil {
		return ledger.ErrDuplicateName
	}
	v.m.accounts = append(v.m.accounts, *a)
	return nil
}

func (v *view) UpdateAccount(_ context.Context, a *ledger.Account) error {
	for i := range v.m.accounts {
		if v.m.accounts[i].OwnerID == a.OwnerID && v.m.accounts[i].ID == a.ID {
			v.m.accounts[i] = *a
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (v *view) ListAccounts(_ context.Context, owner ledger.OwnerID) ([]ledger.Account, error) {
	var result []ledger.Account
	for _, a := range v.m.accounts {
		if a.OwnerID == owner {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (v *view) FindEntryType(_ context.Context, owner ledger.OwnerID, kind ledger.Kind, name string) (*ledger.EntryType, error) {
	norm := ledger.NormalizeName(name)
	for i := range v.m.entryTypes {
		t := v.m.entryTypes[i]
		if t.OwnerID != owner || t.Kind != kind {
			continue
		}
		if norm == "" || ledger.NormalizeName(t.Name) == norm {
			cp := t
			return &cp, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (v *view) InsertEntryType(_ context.Context, t *ledger.EntryType) error {
	for _, existing := range v.m.entryTypes {
		if existing.OwnerID == t.OwnerID && existing.Kind == t.Kind &&
			ledger.NormalizeName(existing.Name) == ledger.NormalizeName(t.Name) {
			return ledger.ErrDuplicateName
		}
	}
	v.m.entryTypes = append(v.m.entryTypes, *t)
	return nil
}

func (v *view) ListEntryTypes(_ context.Context, owner ledger.OwnerID) ([]ledger.EntryType, error) {
	var result []ledger.EntryType
	for _, t := range v.m.entryTypes {
		if t.OwnerID == owner {
			result = append(result, t)
		}
	}
	return result, nil
}

func (v *view) InsertEntry(_ context.Context, e *ledger.Entry) error {
	v.m.entries = append(v.m.entries, *e)
	return nil
}

func (v *view) EntriesByAccount(_ context.Context, owner ledger.OwnerID, account ledger.AccountID) ([]ledger.Entry, error) {
	var result []ledger.Entry
	for _, e := range v.m.entries {
		if e.OwnerID == owner && e.AccountID == account {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (v *view) EntriesByOwner(_ context.Context, owner ledger.OwnerID) ([]ledger.Entry, error) {
	var result []ledger.Entry
	for _, e := range v.m.entries {
		if e.OwnerID == owner {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (v *view) SumSignedAmounts(_ context.Context, owner ledger.OwnerID, account ledger.AccountID) (decimal.Decimal, error) {
	kinds := map[ledger.EntryTypeID]ledger.Kind{}
	for _, t := range v.m.entryTypes {
		kinds[t.ID] = t.Kind
	}

	sum := decimal.Zero
	for _, e := range v.m.entries {
		if e.OwnerID == owner && e.AccountID == account {
			sum = sum.Add(e.SignedAmount(kinds[e.EntryTypeID]))
		}
	}
	return sum, nil
}

func (v *view) FindDebtByID(_ context.Context, owner ledger.OwnerID, id ledger.DebtID) (*ledger.Debt, error) {
	for i := range v.m.debts {
		d := v.m.debts[i]
		if d.OwnerID == owner && d.ID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (v *view) InsertDebt(_ context.Context, d *ledger.Debt) error {
	v.m.debts = append(v.m.debts, *d)
	return nil
}

func (v *view) UpdateDebt(_ context.Context, d *ledger.Debt) error {
	for i := range v.m.debts {
		if v.m.debts[i].OwnerID == d.OwnerID && v.m.debts[i].ID == d.ID {
			v.m.debts[i] = *d
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (v *view) ListDebts(_ context.Context, owner ledger.OwnerID) ([]ledger.Debt, error) {
	var result []ledger.Debt
	for _, d := range v.m.debts {
		if d.OwnerID == owner {
			result = append(result, d)
		}
	}
	return result, nil
}
