package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/types"
	"github.com/redis/go-redis/v9"
)

// OnboardingStore persists workflow snapshots and the redacted account and
// card records in redis. The temporary PIN never reaches this layer: the
// card is accepted only in its redacted form.
type OnboardingStore struct {
	conf *config.OnboardingConfiguration
}

// NewOnboardingStore creates a new instance of OnboardingStore
func NewOnboardingStore() *OnboardingStore {
	return &OnboardingStore{
		conf: config.OnboardingConfig(),
	}
}

func stateKey(userID int64) string {
	return fmt.Sprintf("onboarding_state_%d", userID)
}

func accountKey(userID int64) string {
	return fmt.Sprintf("onboarding_account_%d", userID)
}

func cardKey(userID int64) string {
	return fmt.Sprintf("onboarding_card_%d", userID)
}

// SaveState writes a phase snapshot for the status endpoint and the sweeper
func (s *OnboardingStore) SaveState(ctx context.Context, userID int64, state *types.ProvisioningState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, stateKey(userID), data, s.conf.SnapshotTTL).Err()
}

// GetState reads the last persisted phase snapshot
func (s *OnboardingStore) GetState(ctx context.Context, userID int64) (*types.ProvisioningState, error) {
	data, err := RedisClient.Get(ctx, stateKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var state types.ProvisioningState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// DeleteState removes the phase snapshot
func (s *OnboardingStore) DeleteState(ctx context.Context, userID int64) error {
	return RedisClient.Del(ctx, stateKey(userID)).Err()
}

// SaveRecords persists the redacted account and card for the dashboard,
// pay and transactions views to read without re-fetching
func (s *OnboardingStore) SaveRecords(ctx context.Context, userID int64, account *types.Account, card *types.RedactedCard) error {
	accountData, err := json.Marshal(account)
	if err != nil {
		return err
	}
	cardData, err := json.Marshal(card)
	if err != nil {
		return err
	}

	if err := RedisClient.Set(ctx, accountKey(userID), accountData, 0).Err(); err != nil {
		return err
	}
	return RedisClient.Set(ctx, cardKey(userID), cardData, 0).Err()
}

// GetRecords reads the redacted post-completion records. Both values are nil
// when the identity has not completed onboarding.
func (s *OnboardingStore) GetRecords(ctx context.Context, userID int64) (*types.OnboardingRecords, error) {
	accountData, err := RedisClient.Get(ctx, accountKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var account types.Account
	if err := json.Unmarshal(accountData, &account); err != nil {
		return nil, err
	}

	records := &types.OnboardingRecords{Account: &account}

	cardData, err := RedisClient.Get(ctx, cardKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return records, nil
		}
		return nil, err
	}

	var card types.RedactedCard
	if err := json.Unmarshal(cardData, &card); err != nil {
		return nil, err
	}
	records.Card = &card

	return records, nil
}
