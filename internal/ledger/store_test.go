package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/store"
)

type gateFunc func(ctx context.Context, p Prompt) (bool, error)

func (f gateFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

var (
	approve = gateFunc(func(context.Context, Prompt) (bool, error) { return true, nil })
	refuse  = gateFunc(func(context.Context, Prompt) (bool, error) { return false, nil })
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("e%d", n)
	}
}

// newTestStore opens a store over backend with deterministic ids and a
// clock that ticks one second per call.
func newTestStore(t *testing.T, backend Backend, opts ...Option) *Store {
	t.Helper()
	var mu sync.Mutex
	tick := 0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return testEpoch.Add(time.Duration(tick) * time.Second)
	}
	base := []Option{
		WithIDFunc(sequentialIDs()),
		WithClock(clock),
		WithTimeout(200 * time.Millisecond),
	}
	s := Open(context.Background(), backend, append(base, opts...)...)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func mustAdd(t *testing.T, s *Store, name, category string, amount float64) model.Entry {
	t.Helper()
	e, err := s.UpsertExpense(model.Entry{Name: name, Category: category, Amount: amount})
	if err != nil {
		t.Fatalf("UpsertExpense(%s): %v", name, err)
	}
	return e
}

func wantReason(t *testing.T, err error, reason string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError(%q)", err, reason)
	}
	if ve.Reason != reason {
		t.Fatalf("reason = %q, want %q", ve.Reason, reason)
	}
}

func assertNoKeys(t *testing.T, mem *store.Memory) {
	t.Helper()
	for _, key := range []string{KeyBudget, KeyEntries} {
		if v, ok := mem.Value(key); ok {
			t.Fatalf("%s = %q after reset, want absent", key, v)
		}
	}
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, store.NewMemory(nil))

	if err := s.SetBudget(300); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if b := s.Budget(); !b.IsSet || b.Amount != 300 {
		t.Fatalf("budget = %+v, want set 300", b)
	}

	coffee := mustAdd(t, s, "Coffee", "Food", 5)
	entries := s.Entries()
	if len(entries) != 1 || entries[0].ID != coffee.ID || entries[0].Amount != 5 {
		t.Fatalf("entries = %+v", entries)
	}
	if coffee.CreatedAt.IsZero() {
		t.Fatal("createdAt not assigned")
	}

	s.SetFilter("Food")
	if got := len(s.Filtered()); got != 1 {
		t.Fatalf("Filtered() with Food = %d entries, want 1", got)
	}
	s.SetFilter("Transport")
	if got := len(s.Filtered()); got != 0 {
		t.Fatalf("Filtered() with Transport = %d entries, want 0", got)
	}

	if err := s.DeleteExpense(ctx, approve, coffee.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if got := len(s.Entries()); got != 0 {
		t.Fatalf("entries after delete = %d, want 0", got)
	}
}

func TestSetBudget(t *testing.T) {
	tests := []struct {
		amount float64
		ok     bool
	}{
		{300, true},
		{0.01, true},
		{1e9, true},
		{0, false},
		{-1, false},
		{-0.01, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.amount), func(t *testing.T) {
			s := newTestStore(t, store.NewMemory(nil))
			if err := s.SetBudget(50); err != nil {
				t.Fatalf("initial SetBudget: %v", err)
			}

			err := s.SetBudget(tt.amount)
			b := s.Budget()
			if tt.ok {
				if err != nil {
					t.Fatalf("SetBudget(%v) = %v", tt.amount, err)
				}
				if !b.IsSet || b.Amount != tt.amount {
					t.Fatalf("budget = %+v, want %v", b, tt.amount)
				}
				return
			}
			wantReason(t, err, ReasonBudgetNotPositive)
			if !b.IsSet || b.Amount != 50 {
				t.Fatalf("budget changed on rejected input: %+v", b)
			}
		})
	}
}

func TestSetBudgetPersists(t *testing.T) {
	mem := store.NewMemory(nil)
	s := newTestStore(t, mem)
	if err := s.SetBudget(1250.5); err != nil {
		t.Fatal(err)
	}
	flush(t, s)

	if v, _ := mem.Value(KeyBudget); v != "1250.5" {
		t.Fatalf("stored budget = %q, want \"1250.5\"", v)
	}
	if _, ok := mem.Value(KeyEntries); ok {
		t.Fatal("SetBudget wrote the entries key")
	}
}

func TestUpsertValidation(t *testing.T) {
	tests := []struct {
		name   string
		entry  model.Entry
		reason string
	}{
		{"no name", model.Entry{Category: "Food", Amount: 5}, ReasonRequiredMissing},
		{"blank name", model.Entry{Name: "   ", Category: "Food", Amount: 5}, ReasonRequiredMissing},
		{"no category", model.Entry{Name: "Coffee", Amount: 5}, ReasonRequiredMissing},
		{"no amount", model.Entry{Name: "Coffee", Category: "Food"}, ReasonRequiredMissing},
		{"negative amount", model.Entry{Name: "Coffee", Category: "Food", Amount: -2}, ReasonAmountNotPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, store.NewMemory(nil))
			_, err := s.UpsertExpense(tt.entry)
			wantReason(t, err, tt.reason)
			if n := len(s.Entries()); n != 0 {
				t.Fatalf("entries = %d after rejected upsert, want 0", n)
			}
		})
	}
}

func TestUpsertAssignsUniqueIDs(t *testing.T) {
	s := Open(context.Background(), store.NewMemory(nil))
	defer func() { _ = s.Close(context.Background()) }()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		e := mustAdd(t, s, fmt.Sprintf("item %d", i), "Misc", float64(i+1))
		if e.ID == "" || seen[e.ID] {
			t.Fatalf("entry %d got id %q (seen before: %v)", i, e.ID, seen[e.ID])
		}
		if e.CreatedAt.IsZero() {
			t.Fatalf("entry %d has no createdAt", i)
		}
		seen[e.ID] = true
	}

	entries := s.Entries()
	for i, e := range entries {
		if e.Name != fmt.Sprintf("item %d", i) {
			t.Fatalf("entries[%d] = %q, insertion order not kept", i, e.Name)
		}
	}
}

func TestUpsertTrimsFields(t *testing.T) {
	s := newTestStore(t, store.NewMemory(nil))
	e := mustAdd(t, s, "  Rent ", " Home", 800)
	if e.Name != "Rent" || e.Category != "Home" {
		t.Fatalf("entry = %+v, want trimmed name and category", e)
	}
}

func TestEditPreservesIdentityAndPosition(t *testing.T) {
	s := newTestStore(t, store.NewMemory(nil))
	a := mustAdd(t, s, "Coffee", "Food", 5)
	b := mustAdd(t, s, "Bus", "Transport", 2)
	c := mustAdd(t, s, "Movie", "Leisure", 12)

	edited, err := s.UpsertExpense(model.Entry{
		ID:        b.ID,
		Name:      "Train",
		Category:  "Transport",
		Amount:    9,
		CreatedAt: testEpoch.Add(-time.Hour), // ignored
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.ID != b.ID || !edited.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("edited = %+v, want id %s and createdAt %v", edited, b.ID, b.CreatedAt)
	}

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0] != a || entries[2] != c {
		t.Fatalf("untouched entries moved or changed: %+v", entries)
	}
	if entries[1].Name != "Train" || entries[1].Amount != 9 {
		t.Fatalf("entries[1] = %+v, want edited Train", entries[1])
	}
}

func TestEditUnknownID(t *testing.T) {
	s := newTestStore(t, store.NewMemory(nil))
	mustAdd(t, s, "Coffee", "Food", 5)

	_, err := s.UpsertExpense(model.Entry{ID: "nope", Name: "X", Category: "Y", Amount: 1})
	if !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("err = %v, want ErrUnknownEntry", err)
	}
	if n := len(s.Entries()); n != 1 {
		t.Fatalf("entries = %d, want 1", n)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	mem := store.NewMemory(nil)
	s := newTestStore(t, mem)
	mustAdd(t, s, "Coffee", "Food", 5)
	flush(t, s)
	before := mem.Writes()

	asked := false
	gate := gateFunc(func(context.Context, Prompt) (bool, error) {
		asked = true
		return true, nil
	})
	if err := s.DeleteExpense(context.Background(), gate, "missing"); err != nil {
		t.Fatalf("DeleteExpense(missing) = %v, want nil", err)
	}
	flush(t, s)

	if n := len(s.Entries()); n != 1 {
		t.Fatalf("entries = %d, want 1", n)
	}
	if asked {
		t.Error("gate was asked for an absent id")
	}
	if mem.Writes() != before {
		t.Errorf("writes = %d, want %d", mem.Writes(), before)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("tty gone")

	tests := []struct {
		name string
		gate Gate
	}{
		{"refused", refuse},
		{"nil gate", nil},
		{"gate error", gateFunc(func(context.Context, Prompt) (bool, error) { return false, boom })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, store.NewMemory(nil))
			e := mustAdd(t, s, "Coffee", "Food", 5)

			err := s.DeleteExpense(ctx, tt.gate, e.ID)
			if !errors.Is(err, ErrDeclined) {
				t.Fatalf("err = %v, want ErrDeclined", err)
			}
			if _, ok := s.Entry(e.ID); !ok {
				t.Fatal("entry deleted without confirmation")
			}
		})
	}
}

func TestDeletePromptNamesEntry(t *testing.T) {
	s := newTestStore(t, store.NewMemory(nil))
	e := mustAdd(t, s, "Gym", "Health", 30)

	var got Prompt
	gate := gateFunc(func(_ context.Context, p Prompt) (bool, error) {
		got = p
		return true, nil
	})
	if err := s.DeleteExpense(context.Background(), gate, e.ID); err != nil {
		t.Fatal(err)
	}
	if got.Title == "" || got.Description != "Gym (Health, 30.00) will be removed." {
		t.Fatalf("prompt = %+v", got)
	}
}

func TestFilter(t *testing.T) {
	s := newTestStore(t, store.NewMemory(nil))
	mustAdd(t, s, "Coffee", "Food", 5)
	mustAdd(t, s, "Bus", "Transport", 2)
	mustAdd(t, s, "Lunch", "Food", 11)
	mustAdd(t, s, "Snack", "food", 1)

	s.SetFilter("")
	if got, want := s.Filtered(), s.Entries(); len(got) != len(want) {
		t.Fatalf("empty filter: %d entries, want %d", len(got), len(want))
	}

	s.SetFilter("Food")
	got := s.Filtered()
	if len(got) != 2 || got[0].Name != "Coffee" || got[1].Name != "Lunch" {
		t.Fatalf("Food filter = %+v, want [Coffee Lunch]", got)
	}

	// The view follows later mutations.
	mustAdd(t, s, "Dinner", "Food", 20)
	if n := len(s.Filtered()); n != 3 {
		t.Fatalf("Food filter after add = %d, want 3", n)
	}

	snap := s.Snapshot()
	if snap.Filter != "Food" || len(snap.Entries) != 5 || len(snap.Filtered) != 3 {
		t.Fatalf("snapshot = filter %q, %d entries, %d filtered", snap.Filter, len(snap.Entries), len(snap.Filtered))
	}
}

func TestFilterDoesNotPersist(t *testing.T) {
	mem := store.NewMemory(nil)
	s := newTestStore(t, mem)
	s.SetFilter("Food")
	flush(t, s)
	if mem.Writes() != 0 {
		t.Fatalf("writes = %d, want 0", mem.Writes())
	}
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(nil)
	s := newTestStore(t, mem)

	if err := s.SetBudget(300); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, s, "Coffee", "Food", 5)
	s.SetFilter("Food")

	if err := s.ResetAll(ctx, refuse); !errors.Is(err, ErrDeclined) {
		t.Fatalf("ResetAll(refuse) = %v, want ErrDeclined", err)
	}
	if !s.Budget().IsSet {
		t.Fatal("refused reset changed state")
	}

	if err := s.ResetAll(ctx, approve); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	snap := s.Snapshot()
	if snap.Budget.IsSet || snap.Budget.Amount != 0 || len(snap.Entries) != 0 || snap.Filter != "" {
		t.Fatalf("snapshot after reset = %+v", snap)
	}
	flush(t, s)

	// A later bootstrap finds nothing.
	assertNoKeys(t, mem)
	again := newTestStore(t, mem)
	if b := again.Budget(); b.IsSet {
		t.Fatalf("reloaded budget = %+v, want unset", b)
	}
	if n := len(again.Entries()); n != 0 {
		t.Fatalf("reloaded entries = %d, want 0", n)
	}
}

func TestResetAllDropsPendingWrites(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(nil)
	s := newTestStore(t, mem)

	// Writes stall, so these are still queued or in flight when reset runs.
	mem.SetDelay(20 * time.Millisecond)
	if err := s.SetBudget(300); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, s, "Coffee", "Food", 5)

	if err := s.ResetAll(ctx, approve); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	flush(t, s)

	assertNoKeys(t, mem)
}

func TestResetAllClearFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(nil)

	var hooked []*PersistenceError
	var mu sync.Mutex
	s := newTestStore(t, mem, WithErrorHook(func(pe *PersistenceError) {
		mu.Lock()
		hooked = append(hooked, pe)
		mu.Unlock()
	}))

	if err := s.SetBudget(300); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, s, "Coffee", "Food", 5)
	flush(t, s)

	boom := errors.New("disk full")
	mem.FailOn(store.OpClear, boom)

	err := s.ResetAll(ctx, approve)
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "clear" || !errors.Is(err, boom) {
		t.Fatalf("ResetAll = %v, want clear PersistenceError wrapping boom", err)
	}

	snap := s.Snapshot()
	if !snap.Budget.IsSet || len(snap.Entries) != 1 {
		t.Fatalf("memory changed after failed clear: %+v", snap)
	}
	if v, _ := mem.Value(KeyBudget); v != "300" {
		t.Fatalf("stored budget = %q, want \"300\"", v)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(hooked) != 1 || hooked[0].Op != "clear" {
		t.Fatalf("hook calls = %+v, want one clear failure", hooked)
	}
	if got := s.Stats().ClearFailed; got != 1 {
		t.Fatalf("ClearFailed = %d, want 1", got)
	}
}

func TestBootstrap(t *testing.T) {
	tests := []struct {
		name        string
		seed        map[string]string
		wantBudget  model.Budget
		wantEntries int
		wantFailed  int64
	}{
		{
			name: "empty backend",
		},
		{
			name:        "stored state",
			seed:        map[string]string{KeyBudget: "300", KeyEntries: `[{"id":"a","name":"Coffee","category":"Food","amount":5,"createdAt":1700000000000}]`},
			wantBudget:  model.Budget{Amount: 300, IsSet: true},
			wantEntries: 1,
		},
		{
			name:       "zero budget",
			seed:       map[string]string{KeyBudget: "0"},
			wantFailed: 1,
		},
		{
			name:       "negative budget",
			seed:       map[string]string{KeyBudget: "-20"},
			wantFailed: 1,
		},
		{
			name:       "malformed budget",
			seed:       map[string]string{KeyBudget: "lots"},
			wantFailed: 1,
		},
		{
			name:       "malformed entries keep budget",
			seed:       map[string]string{KeyBudget: "80", KeyEntries: `{not json`},
			wantBudget: model.Budget{Amount: 80, IsSet: true},
			wantFailed: 1,
		},
		{
			name:        "string amounts",
			seed:        map[string]string{KeyEntries: `[{"id":"a","name":"Rent","category":"Home","amount":"800","createdAt":1}]`},
			wantEntries: 1,
		},
		{
			name:        "duplicate and missing ids",
			seed:        map[string]string{KeyEntries: `[{"id":"a","name":"A","category":"X","amount":1},{"id":"a","name":"B","category":"X","amount":2},{"name":"C","category":"X","amount":3}]`},
			wantEntries: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, store.NewMemory(tt.seed))
			if b := s.Budget(); b != tt.wantBudget {
				t.Errorf("budget = %+v, want %+v", b, tt.wantBudget)
			}
			if n := len(s.Entries()); n != tt.wantEntries {
				t.Errorf("entries = %d, want %d", n, tt.wantEntries)
			}
			if got := s.Stats().LoadFailed; got != tt.wantFailed {
				t.Errorf("LoadFailed = %d, want %d", got, tt.wantFailed)
			}
		})
	}
}

func TestBootstrapPersistsRepairedIDs(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(map[string]string{
		KeyEntries: `[{"name":"Coffee","category":"Food","amount":5},{"id":"b","name":"Bus","category":"Transport","amount":2},{"id":"b","name":"Dup","category":"Transport","amount":9}]`,
	})
	ids := sequentialIDs()

	first := Open(ctx, mem, WithIDFunc(ids))
	if err := first.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := first.Entries()
	if len(want) != 2 {
		t.Fatalf("first open loaded %d entries, want 2", len(want))
	}

	second := Open(ctx, mem, WithIDFunc(ids))
	defer second.Close(ctx)
	got := second.Entries()
	if len(got) != 2 {
		t.Fatalf("second open loaded %d entries, want 2", len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Fatalf("entry %d id = %q after reopen, want %q", i, got[i].ID, want[i].ID)
		}
	}

	if err := second.DeleteExpense(ctx, approve, want[0].ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, ok := second.Entry(want[0].ID); ok {
		t.Fatalf("entry %q still present after delete", want[0].ID)
	}
}

func TestBootstrapCleanDataIsNotRewritten(t *testing.T) {
	mem := store.NewMemory(map[string]string{
		KeyEntries: `[{"id":"a","name":"Coffee","category":"Food","amount":5}]`,
	})
	s := newTestStore(t, mem)
	flush(t, s)
	if n := mem.Writes(); n != 0 {
		t.Fatalf("backend writes = %d, want 0", n)
	}
}

func TestBootstrapDecodesEntries(t *testing.T) {
	seed := map[string]string{
		KeyEntries: `[{"id":"a","name":"Coffee","category":"Food","amount":4.5,"createdAt":1700000000123}]`,
	}
	s := newTestStore(t, store.NewMemory(seed))

	e, ok := s.Entry("a")
	if !ok {
		t.Fatal("entry a not loaded")
	}
	if e.Name != "Coffee" || e.Category != "Food" || e.Amount != 4.5 {
		t.Fatalf("entry = %+v", e)
	}
	if e.CreatedAt.UnixMilli() != 1700000000123 {
		t.Fatalf("createdAt = %d ms, want 1700000000123", e.CreatedAt.UnixMilli())
	}
}

func TestBootstrapReadFailure(t *testing.T) {
	mem := store.NewMemory(map[string]string{KeyBudget: "300"})
	mem.FailOn(store.OpGet, errors.New("io error"))

	var mu sync.Mutex
	var ops []string
	s := newTestStore(t, mem, WithErrorHook(func(pe *PersistenceError) {
		mu.Lock()
		ops = append(ops, pe.Op+" "+pe.Key)
		mu.Unlock()
	}))

	if s.Budget().IsSet || len(s.Entries()) != 0 {
		t.Fatalf("state = %+v, want defaults", s.Snapshot())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(ops) != 2 {
		t.Fatalf("hook calls = %v, want both keys", ops)
	}
}

func TestBootstrapTimeout(t *testing.T) {
	mem := store.NewMemory(map[string]string{KeyBudget: "300"})
	mem.SetDelay(time.Second)

	start := time.Now()
	s := newTestStore(t, mem, WithTimeout(20*time.Millisecond))
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("bootstrap did not honour the timeout")
	}
	if s.Budget().IsSet {
		t.Fatal("budget loaded despite timeout")
	}
	if got := s.Stats().LoadFailed; got != 2 {
		t.Fatalf("LoadFailed = %d, want 2", got)
	}
	mem.SetDelay(0)
}

func TestEntriesPersistFullList(t *testing.T) {
	mem := store.NewMemory(nil)
	s := newTestStore(t, mem)
	mustAdd(t, s, "Coffee", "Food", 5)
	mustAdd(t, s, "Bus", "Transport", 2.25)
	flush(t, s)

	raw, ok := mem.Value(KeyEntries)
	if !ok {
		t.Fatal("entries not persisted")
	}
	entries, err := decodeEntries(raw)
	if err != nil {
		t.Fatalf("decode stored entries: %v", err)
	}
	if len(entries) != 2 || entries[1].Name != "Bus" || entries[1].Amount != 2.25 {
		t.Fatalf("stored entries = %+v", entries)
	}

	// A fresh store over the same backend sees the same ledger.
	again := newTestStore(t, mem)
	got := again.Entries()
	want := s.Entries()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || !got[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Fatalf("reloaded[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWriteFailureIsReportedNotReturned(t *testing.T) {
	mem := store.NewMemory(nil)
	boom := errors.New("read-only")
	mem.FailOn(store.OpSet, boom)

	var mu sync.Mutex
	var hooked []*PersistenceError
	s := newTestStore(t, mem, WithErrorHook(func(pe *PersistenceError) {
		mu.Lock()
		hooked = append(hooked, pe)
		mu.Unlock()
	}))

	if err := s.SetBudget(100); err != nil {
		t.Fatalf("SetBudget = %v, want nil despite backend failure", err)
	}
	flush(t, s)

	if !s.Budget().IsSet {
		t.Fatal("in-memory budget not applied")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(hooked) != 1 || hooked[0].Op != "write" || hooked[0].Key != KeyBudget || !errors.Is(hooked[0], boom) {
		t.Fatalf("hook calls = %+v", hooked)
	}
	if st := s.Stats(); st.WriteFailed != 1 {
		t.Fatalf("WriteFailed = %d, want 1", st.WriteFailed)
	}
}

func TestWritesLastValueWins(t *testing.T) {
	mem := store.NewMemory(nil)
	s := newTestStore(t, mem)
	mem.SetDelay(10 * time.Millisecond)

	for i := 1; i <= 20; i++ {
		if err := s.SetBudget(float64(i)); err != nil {
			t.Fatal(err)
		}
	}
	flush(t, s)

	if v, _ := mem.Value(KeyBudget); v != "20" {
		t.Fatalf("stored budget = %q, want \"20\"", v)
	}
	if w := mem.Writes(); w >= 20 {
		t.Fatalf("writes = %d, want coalescing below 20", w)
	}
}

func TestConcurrentCommands(t *testing.T) {
	s := newTestStore(t, store.NewMemory(nil))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := s.UpsertExpense(model.Entry{Name: "x", Category: fmt.Sprint(i), Amount: 1}); err != nil {
					t.Error(err)
					return
				}
				s.SetFilter(fmt.Sprint(j % 3))
			}
		}(i)
	}
	wg.Wait()

	entries := s.Entries()
	if len(entries) != 200 {
		t.Fatalf("entries = %d, want 200", len(entries))
	}
	ids := make(map[string]bool)
	for _, e := range entries {
		if ids[e.ID] {
			t.Fatalf("duplicate id %s", e.ID)
		}
		ids[e.ID] = true
	}
}

func TestResolve(t *testing.T) {
	seed := map[string]string{
		KeyEntries: `[{"id":"abc123","name":"A","category":"X","amount":1},{"id":"abd456","name":"B","category":"X","amount":1}]`,
	}
	s := newTestStore(t, store.NewMemory(seed))

	if id, err := s.Resolve("abc"); err != nil || id != "abc123" {
		t.Fatalf("Resolve(abc) = %q, %v", id, err)
	}
	if _, err := s.Resolve("ab"); !errors.Is(err, ErrAmbiguousID) {
		t.Fatalf("Resolve(ab) err = %v, want ErrAmbiguousID", err)
	}
	if _, err := s.Resolve("zz"); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("Resolve(zz) err = %v, want ErrUnknownEntry", err)
	}
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	s := newTestStore(t, store.NewMemory(nil))
	mustAdd(t, s, "a", "Food", 1)
	mustAdd(t, s, "b", "Home", 1)
	mustAdd(t, s, "c", "Food", 1)

	cats := s.Categories()
	if len(cats) != 2 || cats[0] != "Food" || cats[1] != "Home" {
		t.Fatalf("Categories() = %v, want [Food Home]", cats)
	}
}

func TestCloseFlushesAndRejects(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(nil)
	s := Open(ctx, mem)

	if err := s.SetBudget(42); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if v, _ := mem.Value(KeyBudget); v != "42" {
		t.Fatalf("stored budget after Close = %q, want \"42\"", v)
	}

	if err := s.SetBudget(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("SetBudget after Close = %v, want ErrClosed", err)
	}
	if _, err := s.UpsertExpense(model.Entry{Name: "a", Category: "b", Amount: 1}); !errors.Is(err, ErrClosed) {
		t.Fatalf("UpsertExpense after Close = %v, want ErrClosed", err)
	}
	if err := s.ResetAll(ctx, approve); !errors.Is(err, ErrClosed) {
		t.Fatalf("ResetAll after Close = %v, want ErrClosed", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
