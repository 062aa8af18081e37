package onboarding

import (
	"errors"
	"sync"

	"github.com/gringotts/onboarding/types"
)

// ErrNoPendingSecret is returned when there is no unacknowledged card for
// the identity.
var ErrNoPendingSecret = errors.New("no card is pending acknowledgment")

// Vault holds freshly issued cards, temporary PIN included, in volatile
// memory only. The full record leaves the vault exactly once, in the
// provisioning response; after acknowledgment only the redacted copy
// remains reachable anywhere in the system.
type Vault struct {
	mu    sync.Mutex
	cards map[int64]*types.Card
}

// NewVault creates a new instance of Vault
func NewVault() *Vault {
	return &Vault{
		cards: make(map[int64]*types.Card),
	}
}

// Put stores a just-issued card until its PIN is acknowledged. It replaces
// any previous unacknowledged card for the identity.
func (v *Vault) Put(userID int64, card *types.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards[userID] = card
}

// Redacted returns the persistable copy of the pending card without
// consuming it. Used to commit the durable record before the PIN is wiped,
// so a failed write can be retried.
func (v *Vault) Redacted(userID int64) (*types.RedactedCard, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	card, ok := v.cards[userID]
	if !ok {
		return nil, ErrNoPendingSecret
	}
	return card.Redact(), nil
}

// Acknowledge consumes the pending card: the PIN is wiped and the entry
// removed, so no later read can recover it. Returns the redacted copy.
func (v *Vault) Acknowledge(userID int64) (*types.RedactedCard, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	card, ok := v.cards[userID]
	if !ok {
		return nil, ErrNoPendingSecret
	}

	redacted := card.Redact()
	card.TempPin = ""
	delete(v.cards, userID)

	return redacted, nil
}

// Clear drops any pending card for the identity, PIN included. Used when an
// attempt is abandoned.
func (v *Vault) Clear(userID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if card, ok := v.cards[userID]; ok {
		card.TempPin = ""
		delete(v.cards, userID)
	}
}
