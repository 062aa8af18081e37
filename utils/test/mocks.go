package test

import (
	"context"
	"sync"

	"github.com/gringotts/onboarding/types"
)

// MockBankService is a configurable in-memory stand-in for the core banking
// API client. Each call is counted so tests can assert call ordering rules.
type MockBankService struct {
	mu sync.Mutex

	UpdateProfileFunc func(ctx context.Context, token string, userID int64, payload types.ProfilePayload) (*types.Profile, error)
	CreateAccountFunc func(ctx context.Context, token string, userID int64, accountType string) (*types.Account, error)
	CreateCardFunc    func(ctx context.Context, token string, accountID int64) (*types.Card, error)
	DeleteAccountFunc func(ctx context.Context, token string, accountID int64) error

	UpdateProfileCalls int
	CreateAccountCalls int
	CreateCardCalls    int
	DeleteAccountCalls int

	DeletedAccountIDs []int64
}

// UpdateProfile mocks the UpdateProfile method
func (m *MockBankService) UpdateProfile(ctx context.Context, token string, userID int64, payload types.ProfilePayload) (*types.Profile, error) {
	m.mu.Lock()
	m.UpdateProfileCalls++
	m.mu.Unlock()
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, token, userID, payload)
	}
	return &types.Profile{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		PhoneNumber: payload.PhoneNumber,
		Address:     payload.Address,
	}, nil
}

// CreateAccount mocks the CreateAccount method
func (m *MockBankService) CreateAccount(ctx context.Context, token string, userID int64, accountType string) (*types.Account, error) {
	m.mu.Lock()
	m.CreateAccountCalls++
	calls := m.CreateAccountCalls
	m.mu.Unlock()
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, token, userID, accountType)
	}
	return &types.Account{
		ID:            int64(100 + calls),
		AccountNumber: "9040335663",
		AccountType:   "SAVINGS",
	}, nil
}

// CreateCard mocks the CreateCard method
func (m *MockBankService) CreateCard(ctx context.Context, token string, accountID int64) (*types.Card, error) {
	m.mu.Lock()
	m.CreateCardCalls++
	m.mu.Unlock()
	if m.CreateCardFunc != nil {
		return m.CreateCardFunc(ctx, token, accountID)
	}
	return &types.Card{
		ID:         77,
		AccountID:  accountID,
		CardNumber: "5399831619690403",
		CVV:        "129",
		Expiry:     "08/31",
		TempPin:    "4921",
	}, nil
}

// DeleteAccount mocks the DeleteAccount method
func (m *MockBankService) DeleteAccount(ctx context.Context, token string, accountID int64) error {
	m.mu.Lock()
	m.DeleteAccountCalls++
	m.DeletedAccountIDs = append(m.DeletedAccountIDs, accountID)
	m.mu.Unlock()
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, token, accountID)
	}
	return nil
}

// MockRecordStore keeps state snapshots and records in memory, with error
// hooks for simulating storage outages.
type MockRecordStore struct {
	mu sync.Mutex

	States  map[int64]*types.ProvisioningState
	Records map[int64]*types.OnboardingRecords

	SaveStateErr   error
	SaveRecordsErr error
	GetRecordsErr  error
}

// NewMockRecordStore creates an empty MockRecordStore
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		States:  make(map[int64]*types.ProvisioningState),
		Records: make(map[int64]*types.OnboardingRecords),
	}
}

// SaveState mocks the SaveState method
func (m *MockRecordStore) SaveState(ctx context.Context, userID int64, state *types.ProvisioningState) error {
	if m.SaveStateErr != nil {
		return m.SaveStateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := *state
	m.States[userID] = &snapshot
	return nil
}

// GetState mocks the GetState method
func (m *MockRecordStore) GetState(ctx context.Context, userID int64) (*types.ProvisioningState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.States[userID]
	if !ok {
		return nil, nil
	}
	snapshot := *state
	return &snapshot, nil
}

// DeleteState mocks the DeleteState method
func (m *MockRecordStore) DeleteState(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.States, userID)
	return nil
}

// SaveRecords mocks the SaveRecords method
func (m *MockRecordStore) SaveRecords(ctx context.Context, userID int64, account *types.Account, card *types.RedactedCard) error {
	if m.SaveRecordsErr != nil {
		return m.SaveRecordsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[userID] = &types.OnboardingRecords{Account: account, Card: card}
	return nil
}

// GetRecords mocks the GetRecords method
func (m *MockRecordStore) GetRecords(ctx context.Context, userID int64) (*types.OnboardingRecords, error) {
	if m.GetRecordsErr != nil {
		return nil, m.GetRecordsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	records, ok := m.Records[userID]
	if !ok {
		return nil, nil
	}
	return records, nil
}
