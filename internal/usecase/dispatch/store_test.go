package dispatch

import (
	"context"
	"sort"
	"sync"

	"github.com/bnema/ferry/internal/domain"
)

// memStore is an in-memory EntityStore with optimistic versioning.
type memStore struct {
	mu          sync.Mutex
	submissions map[string]domain.Submission
	deposits    map[string]domain.Deposit
	writes      []domain.DepositUpdate
}

func newMemStore() *memStore {
	return &memStore{
		submissions: make(map[string]domain.Submission),
		deposits:    make(map[string]domain.Deposit),
	}
}

func (m *memStore) putSubmission(s domain.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[s.ID] = s
}

func (m *memStore) putDeposit(d domain.Deposit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deposits[d.ID] = d
}

func (m *memStore) deleteDeposit(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deposits, id)
}

func (m *memStore) deposit(id string) domain.Deposit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deposits[id]
}

func (m *memStore) submission(id string) domain.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions[id]
}

func (m *memStore) statuses() []domain.DepositStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.DepositStatus, len(m.writes))
	for i, w := range m.writes {
		out[i] = w.Status
	}
	return out
}

func (m *memStore) GetSubmission(_ context.Context, id string) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return &s, nil
}

func (m *memStore) GetDeposit(_ context.Context, id string) (*domain.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deposits[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return &d, nil
}

func (m *memStore) ListDeposits(_ context.Context, submissionID string) ([]domain.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Deposit
	for _, d := range m.deposits {
		if d.SubmissionID == submissionID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateDeposit(_ context.Context, u domain.DepositUpdate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deposits[u.ID]
	if !ok {
		return 0, domain.ErrEntityNotFound
	}
	if d.Version != u.Version {
		return 0, domain.ErrConflict
	}
	d.Status = u.Status
	if u.Receipt != "" {
		d.Receipt = u.Receipt
	}
	d.Version++
	m.deposits[u.ID] = d
	m.writes = append(m.writes, u)
	return d.Version, nil
}

func (m *memStore) UpdateSubmission(_ context.Context, u domain.SubmissionUpdate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[u.ID]
	if !ok {
		return 0, domain.ErrEntityNotFound
	}
	if s.Version != u.Version {
		return 0, domain.ErrConflict
	}
	s.AggregatedStatus = u.Status
	s.Version++
	m.submissions[u.ID] = s
	return s.Version, nil
}
