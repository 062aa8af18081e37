package types

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session carries the authenticated identity reference and bearer credential
// supplied to every provisioning call. It is owned by the auth middleware;
// this package never mutates it.
type Session struct {
	UserID int64
	Email  string
	Token  string
}

// ProfilePayload is the personal-detail form submitted to start onboarding.
type ProfilePayload struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	PhoneNumber     string `json:"phoneNumber" binding:"required"`
	Address         string `json:"address" binding:"required"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// Profile is the persisted personal-detail record, possibly enriched by the
// core banking API with a server-assigned image reference.
type Profile struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber"`
	Address         string `json:"address"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Account is a financial account created by the core banking API. The
// account number is assigned remotely, never by this service.
type Account struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	AccountType   string          `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
}

// Card is a freshly issued payment card. TempPin is sensitive and
// short-lived: it exists only in volatile memory until the holder
// acknowledges it, and must never be written to durable storage.
type Card struct {
	ID         int64  `json:"id"`
	AccountID  int64  `json:"accountId"`
	CardNumber string `json:"cardNumber"`
	CVV        string `json:"cvv"`
	Expiry     string `json:"expiry"`
	TempPin    string `json:"tempPin"`
}

// RedactedCard is the only card form that may be persisted or returned
// after the temporary PIN has been acknowledged.
type RedactedCard struct {
	ID         int64  `json:"id"`
	AccountID  int64  `json:"accountId"`
	CardNumber string `json:"cardNumber"`
	CVV        string `json:"cvv"`
	Expiry     string `json:"expiry"`
}

// Redact produces the persistable copy of the card. It is a pure
// transformation: the original card value is left untouched.
func (c Card) Redact() *RedactedCard {
	return &RedactedCard{
		ID:         c.ID,
		AccountID:  c.AccountID,
		CardNumber: c.CardNumber,
		CVV:        c.CVV,
		Expiry:     c.Expiry,
	}
}

// Phase is the single enum driving the onboarding workflow.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseSubmittingProfile Phase = "submitting_profile"
	PhaseCreatingAccount   Phase = "creating_account"
	PhaseCreatingCard      Phase = "creating_card"
	PhaseRollingBack       Phase = "rolling_back"
	PhaseAwaitingRetry     Phase = "awaiting_retry"
	PhaseDisclosingSecret  Phase = "disclosing_secret"
	PhaseDone              Phase = "done"
	PhaseAuthFailed        Phase = "auth_failed"
)

// Terminal reports whether the phase ends the attempt.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAuthFailed
}

// ProvisioningState is the mutable record driving one onboarding attempt.
// It is owned exclusively by the orchestrator; the snapshot persisted to
// redis never contains the temporary PIN.
type ProvisioningState struct {
	AttemptID     uuid.UUID `json:"attemptId"`
	Phase         Phase     `json:"phase"`
	AccountID     int64     `json:"accountId,omitempty"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	RolledBack    bool      `json:"rolledBack,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OnboardingResult is returned on a successful submit or retry. Card is the
// full record including the temporary PIN; this response is its one and
// only exposure.
type OnboardingResult struct {
	Profile *Profile `json:"profile,omitempty"`
	Account *Account `json:"account,omitempty"`
	Card    *Card    `json:"card,omitempty"`
}

// OnboardingRecords are the redacted account and card persisted for the
// dashboard, pay and transactions views to read without re-fetching.
type OnboardingRecords struct {
	Account *Account      `json:"account"`
	Card    *RedactedCard `json:"card"`
}

// BankService is the client surface of the remote core banking API.
type BankService interface {
	UpdateProfile(ctx context.Context, token string, userID int64, payload ProfilePayload) (*Profile, error)
	CreateAccount(ctx context.Context, token string, userID int64, accountType string) (*Account, error)
	CreateCard(ctx context.Context, token string, accountID int64) (*Card, error)
	DeleteAccount(ctx context.Context, token string, accountID int64) error
}

// OnboardingService sequences profile, account and card provisioning into
// one workflow per identity.
type OnboardingService interface {
	Submit(ctx context.Context, session Session, payload ProfilePayload) (*OnboardingResult, error)
	Retry(ctx context.Context, session Session) (*OnboardingResult, error)
	Acknowledge(ctx context.Context, session Session) (*RedactedCard, error)
	Status(ctx context.Context, userID int64) (*ProvisioningState, error)
	Records(ctx context.Context, userID int64) (*OnboardingRecords, error)
}

// RecordStore persists phase snapshots and the redacted post-completion
// records. Implementations are never handed the temporary PIN.
type RecordStore interface {
	SaveState(ctx context.Context, userID int64, state *ProvisioningState) error
	GetState(ctx context.Context, userID int64) (*ProvisioningState, error)
	DeleteState(ctx context.Context, userID int64) error
	SaveRecords(ctx context.Context, userID int64, account *Account, card *RedactedCard) error
	GetRecords(ctx context.Context, userID int64) (*OnboardingRecords, error)
}

// Response is the struct for an API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorData is the struct for error data i.e when Status is "error"
type ErrorData struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SendEmailPayload is the payload for sending an email
type SendEmailPayload struct {
	FromAddress string
	ToAddress   string
	Subject     string
	Body        string
	HTMLBody    string
	DynamicData map[string]interface{}
}

// SendEmailResponse is the response for a sent email
type SendEmailResponse struct {
	Id       string `json:"id"`
	Response string `json:"response"`
}
