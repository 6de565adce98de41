package ledger

import "context"

// MockLedger is a test double for Ledger.
type MockLedger struct {
	BackendName string
	UpsertFunc  func(ctx context.Context, entry DailyLog) error

	// Entries records every upserted log when UpsertFunc is nil.
	Entries []DailyLog
}

func (m *MockLedger) Name() string {
	if m.BackendName != "" {
		return m.BackendName
	}
	return "mock"
}

func (m *MockLedger) Upsert(ctx context.Context, entry DailyLog) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, entry)
	}
	m.Entries = append(m.Entries, entry)
	return nil
}
