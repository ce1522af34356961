package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// MockDeliveryRepository is a hand-written, in-memory implementation of
// DeliveryRepository used in unit tests. No mock-generation library needed.
type MockDeliveryRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.DeliveryRecord

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr  error
	GetByIDErr error
}

func NewMockDeliveryRepository() *MockDeliveryRepository {
	return &MockDeliveryRepository{records: make(map[string]*domain.DeliveryRecord)}
}

func (m *MockDeliveryRepository) Create(_ context.Context, d *domain.DeliveryRecord) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *d
	m.records[d.ID] = &clone
	return nil
}

func (m *MockDeliveryRepository) GetByID(_ context.Context, id string) (*domain.DeliveryRecord, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (m *MockDeliveryRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.DeliveryRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DeliveryRecord
	for _, d := range m.records {
		if f.UserID != nil && d.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.Channel != nil && d.Channel != *f.Channel {
			continue
		}
		clone := *d
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	total := len(result)
	if f.Limit > 0 {
		start := (f.Page - 1) * f.Limit
		if start < 0 {
			start = 0
		}
		if start >= total {
			return nil, total, nil
		}
		end := start + f.Limit
		if end > total {
			end = total
		}
		result = result[start:end]
	}
	return result, total, nil
}

func (m *MockDeliveryRepository) MarkSent(_ context.Context, id, providerMsgID string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.records[id]; ok {
		d.Status = domain.StatusSent
		d.ProviderMsgID = &providerMsgID
		d.SentAt = &sentAt
		d.NextRetryAt = nil
		d.ErrorMessage = nil
	}
	return nil
}

func (m *MockDeliveryRepository) MarkFailed(_ context.Context, id string, retryCount int, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.records[id]; ok {
		d.Status = domain.StatusFailed
		d.RetryCount = retryCount
		d.ErrorMessage = &errMsg
		d.NextRetryAt = nil
	}
	return nil
}

func (m *MockDeliveryRepository) MarkSuppressed(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.records[id]; ok {
		d.Status = domain.StatusSuppressed
		d.ErrorMessage = &reason
	}
	return nil
}

func (m *MockDeliveryRepository) ScheduleRetry(_ context.Context, id string, retryCount int, nextRetry time.Time, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.records[id]; ok {
		d.Status = domain.StatusFailed
		d.RetryCount = retryCount
		d.NextRetryAt = &nextRetry
		d.ErrorMessage = &errMsg
	}
	return nil
}

func (m *MockDeliveryRepository) MarkRetrying(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.records[id]; ok && d.Status == domain.StatusFailed {
		d.Status = domain.StatusPending
		d.NextRetryAt = nil
	}
	return nil
}

func (m *MockDeliveryRepository) FindRetryable(_ context.Context, now time.Time, limit int) ([]*domain.DeliveryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.DeliveryRecord
	for _, d := range m.records {
		if d.Status != domain.StatusFailed || d.RetryCount >= d.MaxRetries {
			continue
		}
		if d.NextRetryAt == nil || d.NextRetryAt.After(now) {
			continue
		}
		clone := *d
		due = append(due, &clone)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRetryAt.Before(*due[j].NextRetryAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}
