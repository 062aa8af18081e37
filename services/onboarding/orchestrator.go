package onboarding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/services/bank"
	"github.com/gringotts/onboarding/services/email"
	"github.com/gringotts/onboarding/storage"
	"github.com/gringotts/onboarding/types"
	"github.com/gringotts/onboarding/utils/logger"
)

var (
	// ErrAttemptInFlight rejects a submission while provisioning calls for
	// the same identity are still executing.
	ErrAttemptInFlight = errors.New("an onboarding attempt is already in progress")

	// ErrAwaitingRetry rejects a fresh submission while a failed card
	// creation is waiting for an explicit retry.
	ErrAwaitingRetry = errors.New("card creation failed and is awaiting retry")

	// ErrAwaitingAcknowledgment rejects a fresh submission while an issued
	// PIN has not been acknowledged yet.
	ErrAwaitingAcknowledgment = errors.New("the temporary PIN is awaiting acknowledgment")

	// ErrNothingToRetry is returned when retry is requested without a
	// retryable attempt.
	ErrNothingToRetry = errors.New("no failed card creation to retry")
)

// CompletionNotifier sends the post-onboarding notification.
type CompletionNotifier interface {
	SendOnboardingCompleteEmail(ctx context.Context, toAddress, firstName string) (types.SendEmailResponse, error)
}

// attempt is one onboarding workflow run for one identity. The embedded
// ProvisioningState is the only part that leaves this package, and only as
// a copy; the full account snapshot and the in-flight flag stay private.
type attempt struct {
	types.ProvisioningState
	inFlight  bool
	account   *types.Account
	firstName string
}

// Orchestrator sequences profile submission, account creation and card
// issuance into a single workflow per identity, against a remote API with
// no multi-resource transaction. It owns every ProvisioningState mutation.
type Orchestrator struct {
	mu       sync.Mutex
	attempts map[int64]*attempt
	vault    *Vault
	bank     types.BankService
	store    types.RecordStore
	notifier CompletionNotifier
}

var (
	orchestratorOnce sync.Once
	orchestrator     *Orchestrator
)

// NewOrchestrator returns the shared workflow orchestrator. Attempt state
// is process-local, so every caller must share one instance.
func NewOrchestrator() *Orchestrator {
	orchestratorOnce.Do(func() {
		var notifier CompletionNotifier
		if config.NotificationConfig().EmailAPIKey != "" {
			if svc := email.NewEmailService(); svc != nil {
				notifier = svc
			}
		}
		orchestrator = newOrchestrator(bank.NewClient(), storage.NewOnboardingStore(), notifier)
	})
	return orchestrator
}

func newOrchestrator(bankSvc types.BankService, store types.RecordStore, notifier CompletionNotifier) *Orchestrator {
	return &Orchestrator{
		attempts: make(map[int64]*attempt),
		vault:    NewVault(),
		bank:     bankSvc,
		store:    store,
		notifier: notifier,
	}
}

// Submit runs the full provisioning pipeline for the identity: profile →
// account → card. On success the returned result carries the full card,
// temporary PIN included — its one and only exposure.
//
// An identity that already completed onboarding only gets its profile
// updated; account and card creation are gated to once per identity.
func (o *Orchestrator) Submit(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
	records, err := o.store.GetRecords(ctx, session.UserID)
	if err != nil {
		return nil, &types.TransientError{Message: "failed to read onboarding records", Err: err}
	}
	if records != nil && records.Card != nil {
		profile, err := o.bank.UpdateProfile(ctx, session.Token, session.UserID, payload)
		if err != nil {
			return nil, err
		}
		return &types.OnboardingResult{Profile: profile, Account: records.Account}, nil
	}

	st, err := o.begin(session.UserID)
	if err != nil {
		return nil, err
	}
	defer o.finish(st)

	o.setPhase(ctx, session.UserID, st, types.PhaseSubmittingProfile)
	profile, err := o.bank.UpdateProfile(ctx, session.Token, session.UserID, payload)
	if err != nil {
		return nil, o.stepFailed(ctx, session, st, err)
	}

	o.mu.Lock()
	st.firstName = profile.FirstName
	o.mu.Unlock()

	o.setPhase(ctx, session.UserID, st, types.PhaseCreatingAccount)
	account, err := o.bank.CreateAccount(ctx, session.Token, session.UserID, "")
	if err != nil {
		return nil, o.stepFailed(ctx, session, st, err)
	}

	o.mu.Lock()
	st.AccountID = account.ID
	st.AccountNumber = account.AccountNumber
	st.account = account
	o.mu.Unlock()

	result, err := o.provisionCard(ctx, session, st)
	if err != nil {
		return nil, err
	}
	result.Profile = profile

	return result, nil
}

// Retry re-enters card provisioning after a failed attempt. When the
// compensating delete removed the prior account, a new account is created
// first — a card has nothing to bind to otherwise. When the delete itself
// failed, the recorded account is still live remotely and is reused.
// Profile submission is never re-run here.
func (o *Orchestrator) Retry(ctx context.Context, session types.Session) (*types.OnboardingResult, error) {
	st, err := o.beginRetry(session.UserID)
	if err != nil {
		return nil, err
	}
	defer o.finish(st)

	o.mu.Lock()
	rolledBack := st.RolledBack
	o.mu.Unlock()

	if rolledBack {
		o.setPhase(ctx, session.UserID, st, types.PhaseCreatingAccount)
		account, err := o.bank.CreateAccount(ctx, session.Token, session.UserID, "")
		if err != nil {
			return nil, o.stepFailed(ctx, session, st, err)
		}

		o.mu.Lock()
		st.AccountID = account.ID
		st.AccountNumber = account.AccountNumber
		st.account = account
		st.RolledBack = false
		o.mu.Unlock()
	}

	return o.provisionCard(ctx, session, st)
}

// Acknowledge consumes the one-time PIN disclosure: the redacted account
// and card records are persisted for the dashboard views, the PIN is wiped
// from memory, and the attempt completes.
func (o *Orchestrator) Acknowledge(ctx context.Context, session types.Session) (*types.RedactedCard, error) {
	o.mu.Lock()
	st := o.attempts[session.UserID]
	if st == nil || st.Phase != types.PhaseDisclosingSecret {
		o.mu.Unlock()
		return nil, ErrNoPendingSecret
	}
	account := st.account
	firstName := st.firstName
	o.mu.Unlock()

	redacted, err := o.vault.Redacted(session.UserID)
	if err != nil {
		return nil, err
	}

	// Commit the durable records before wiping the PIN, so a failed write
	// leaves the acknowledgment retryable.
	if err := o.store.SaveRecords(ctx, session.UserID, account, redacted); err != nil {
		return nil, &types.TransientError{Message: "failed to persist onboarding records", Err: err}
	}

	if _, err := o.vault.Acknowledge(session.UserID); err != nil {
		return nil, err
	}

	o.setPhase(ctx, session.UserID, st, types.PhaseDone)

	if o.notifier != nil && session.Email != "" {
		if _, err := o.notifier.SendOnboardingCompleteEmail(ctx, session.Email, firstName); err != nil {
			logger.Errorf("user %d: onboarding completion email failed: %v", session.UserID, err)
		}
	}

	return redacted, nil
}

// Status reports the current workflow phase for the identity, falling back
// to the persisted snapshot when no attempt is live in this process.
func (o *Orchestrator) Status(ctx context.Context, userID int64) (*types.ProvisioningState, error) {
	o.mu.Lock()
	if st, ok := o.attempts[userID]; ok {
		snapshot := st.ProvisioningState
		o.mu.Unlock()
		return &snapshot, nil
	}
	o.mu.Unlock()

	state, err := o.store.GetState(ctx, userID)
	if err != nil {
		return nil, &types.TransientError{Message: "failed to read onboarding state", Err: err}
	}
	if state == nil {
		return &types.ProvisioningState{Phase: types.PhaseIdle}, nil
	}
	return state, nil
}

// Records returns the redacted post-completion records, or nil when the
// identity has not completed onboarding.
func (o *Orchestrator) Records(ctx context.Context, userID int64) (*types.OnboardingRecords, error) {
	records, err := o.store.GetRecords(ctx, userID)
	if err != nil {
		return nil, &types.TransientError{Message: "failed to read onboarding records", Err: err}
	}
	return records, nil
}

// ExpireStale abandons attempts that have not progressed within maxAge,
// wiping any unacknowledged PIN. Returns the number of attempts dropped.
func (o *Orchestrator) ExpireStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	var expired []int64

	o.mu.Lock()
	for userID, st := range o.attempts {
		if st.inFlight || st.UpdatedAt.After(cutoff) {
			continue
		}
		delete(o.attempts, userID)
		expired = append(expired, userID)
	}
	o.mu.Unlock()

	ctx := context.Background()
	for _, userID := range expired {
		o.vault.Clear(userID)
		if err := o.store.DeleteState(ctx, userID); err != nil {
			logger.Errorf("user %d: failed to drop stale state snapshot: %v", userID, err)
		}
	}

	return len(expired)
}

// provisionCard runs the card step and its failure branches: auth failure
// ends the attempt, a validation rejection halts in place, and anything
// else triggers the compensating rollback and the retry-wait state.
func (o *Orchestrator) provisionCard(ctx context.Context, session types.Session, st *attempt) (*types.OnboardingResult, error) {
	o.setPhase(ctx, session.UserID, st, types.PhaseCreatingCard)

	o.mu.Lock()
	accountID := st.AccountID
	account := st.account
	o.mu.Unlock()

	card, err := o.bank.CreateCard(ctx, session.Token, accountID)
	if err != nil {
		var authErr *types.AuthError
		var valErr *types.ValidationError
		switch {
		case errors.As(err, &authErr):
			return nil, o.stepFailed(ctx, session, st, err)
		case errors.As(err, &valErr):
			o.recordError(st, err)
			o.persist(ctx, session.UserID, st)
			return nil, err
		default:
			o.compensate(ctx, session, st, err)
			return nil, err
		}
	}

	o.vault.Put(session.UserID, card)

	o.mu.Lock()
	st.LastError = ""
	o.mu.Unlock()
	o.setPhase(ctx, session.UserID, st, types.PhaseDisclosingSecret)

	return &types.OnboardingResult{Account: account, Card: card}, nil
}

// compensate issues the best-effort delete of the committed account after a
// card failure. A failed delete is logged and swallowed; either way the
// workflow parks in the retry-wait state for an explicit user action.
func (o *Orchestrator) compensate(ctx context.Context, session types.Session, st *attempt, cause error) {
	o.setPhase(ctx, session.UserID, st, types.PhaseRollingBack)

	o.mu.Lock()
	accountID := st.AccountID
	o.mu.Unlock()

	if err := o.bank.DeleteAccount(ctx, session.Token, accountID); err != nil {
		logger.Errorf("user %d: compensating delete of account %d failed: %v", session.UserID, accountID, err)
	} else {
		o.mu.Lock()
		st.RolledBack = true
		o.mu.Unlock()
	}

	o.recordError(st, cause)
	o.setPhase(ctx, session.UserID, st, types.PhaseAwaitingRetry)
}

// stepFailed handles a non-card step failure. Credential rejection is
// terminal from any phase; already-created resources are left for
// reconciliation since the same credential would fail the delete too.
func (o *Orchestrator) stepFailed(ctx context.Context, session types.Session, st *attempt, err error) error {
	var authErr *types.AuthError
	if errors.As(err, &authErr) {
		o.mu.Lock()
		orphaned := st.AccountID
		o.mu.Unlock()
		if orphaned != 0 {
			logger.Warnf("user %d: account %d left for reconciliation after credential rejection", session.UserID, orphaned)
		}
		o.recordError(st, err)
		o.setPhase(ctx, session.UserID, st, types.PhaseAuthFailed)
		return err
	}

	o.recordError(st, err)
	o.persist(ctx, session.UserID, st)
	return err
}

// begin starts a fresh attempt, enforcing the in-flight guard and the
// single-account invariant for partially completed attempts.
func (o *Orchestrator) begin(userID int64) (*attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if st := o.attempts[userID]; st != nil {
		switch {
		case st.inFlight:
			return nil, ErrAttemptInFlight
		case st.Phase == types.PhaseDisclosingSecret:
			return nil, ErrAwaitingAcknowledgment
		case st.Phase == types.PhaseAwaitingRetry,
			st.Phase == types.PhaseCreatingCard && st.AccountID != 0,
			st.Phase == types.PhaseCreatingAccount && st.RolledBack:
			return nil, ErrAwaitingRetry
		}
	}

	st := &attempt{
		ProvisioningState: types.ProvisioningState{
			AttemptID: uuid.New(),
			Phase:     types.PhaseIdle,
			UpdatedAt: time.Now(),
		},
		inFlight: true,
	}
	o.attempts[userID] = st
	return st, nil
}

// beginRetry admits the explicit retry action for attempts parked by a
// card failure.
func (o *Orchestrator) beginRetry(userID int64) (*attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.attempts[userID]
	if st == nil {
		return nil, ErrNothingToRetry
	}
	if st.inFlight {
		return nil, ErrAttemptInFlight
	}

	switch {
	case st.Phase == types.PhaseAwaitingRetry:
	case st.Phase == types.PhaseCreatingCard && st.AccountID != 0:
	case st.Phase == types.PhaseCreatingAccount && st.RolledBack:
	default:
		return nil, ErrNothingToRetry
	}

	st.inFlight = true
	return st, nil
}

func (o *Orchestrator) finish(st *attempt) {
	o.mu.Lock()
	st.inFlight = false
	o.mu.Unlock()
}

func (o *Orchestrator) setPhase(ctx context.Context, userID int64, st *attempt, phase types.Phase) {
	o.mu.Lock()
	st.Phase = phase
	st.UpdatedAt = time.Now()
	o.mu.Unlock()

	o.persist(ctx, userID, st)
}

func (o *Orchestrator) recordError(st *attempt, err error) {
	o.mu.Lock()
	st.LastError = err.Error()
	st.UpdatedAt = time.Now()
	o.mu.Unlock()
}

func (o *Orchestrator) persist(ctx context.Context, userID int64, st *attempt) {
	o.mu.Lock()
	snapshot := st.ProvisioningState
	o.mu.Unlock()

	if err := o.store.SaveState(ctx, userID, &snapshot); err != nil {
		logger.Errorf("user %d: failed to persist state snapshot: %v", userID, err)
	}
}
