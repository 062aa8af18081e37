package bank

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/types"
)

func testClient() *Client {
	return &Client{
		conf: &config.BankConfiguration{
			BaseURL:            "http://bank.test",
			RequestTimeout:     5 * time.Second,
			DefaultAccountType: "SAVINGS",
		},
	}
}

func testPayload() types.ProfilePayload {
	return types.ProfilePayload{
		FirstName:   "Harry",
		LastName:    "Potter",
		PhoneNumber: "+2348012345678",
		Address:     "4 Privet Drive",
	}
}

func TestUpdateProfile(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := testClient()

	t.Run("successful update", func(t *testing.T) {
		var gotAuth string
		httpmock.RegisterResponder("PUT", "http://bank.test/api/users/42",
			func(req *http.Request) (*http.Response, error) {
				gotAuth = req.Header.Get("Authorization")
				return httpmock.NewJsonResponse(200, map[string]interface{}{
					"firstName":   "Harry",
					"lastName":    "Potter",
					"phoneNumber": "+2348012345678",
					"address":     "4 Privet Drive",
				})
			})

		profile, err := client.UpdateProfile(context.Background(), "test-token", 42, testPayload())
		require.NoError(t, err)
		assert.Equal(t, "Harry", profile.FirstName)
		assert.Equal(t, "Bearer test-token", gotAuth)
	})

	t.Run("rejected credential", func(t *testing.T) {
		httpmock.RegisterResponder("PUT", "http://bank.test/api/users/42",
			httpmock.NewJsonResponderOrPanic(401, map[string]interface{}{
				"error": "token expired",
			}))

		_, err := client.UpdateProfile(context.Background(), "stale-token", 42, testPayload())
		var authErr *types.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, 401, authErr.Code)
		assert.Contains(t, authErr.Message, "token expired")
	})

	t.Run("validation rejection surfaces remote message", func(t *testing.T) {
		httpmock.RegisterResponder("PUT", "http://bank.test/api/users/42",
			httpmock.NewJsonResponderOrPanic(422, map[string]interface{}{
				"message": "phone number is not valid",
			}))

		_, err := client.UpdateProfile(context.Background(), "test-token", 42, testPayload())
		var validationErr *types.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "phone number is not valid", validationErr.Message)
	})
}

func TestCreateAccount(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := testClient()

	t.Run("successful creation", func(t *testing.T) {
		httpmock.RegisterResponder("POST", "http://bank.test/api/accounts/42",
			httpmock.NewJsonResponderOrPanic(201, map[string]interface{}{
				"id":            101,
				"accountNumber": "9040335663",
				"accountType":   "SAVINGS",
				"balance":       0,
			}))

		account, err := client.CreateAccount(context.Background(), "test-token", 42, "")
		require.NoError(t, err)
		assert.Equal(t, int64(101), account.ID)
		assert.Equal(t, "9040335663", account.AccountNumber)
		assert.Equal(t, "SAVINGS", account.AccountType)
	})

	t.Run("2xx missing account number", func(t *testing.T) {
		httpmock.RegisterResponder("POST", "http://bank.test/api/accounts/42",
			httpmock.NewJsonResponderOrPanic(201, map[string]interface{}{
				"id": 101,
			}))

		_, err := client.CreateAccount(context.Background(), "test-token", 42, "")
		var provisioningErr *types.ProvisioningError
		require.ErrorAs(t, err, &provisioningErr)
		assert.Equal(t, "account", provisioningErr.Step)
	})

	t.Run("server error is transient", func(t *testing.T) {
		httpmock.RegisterResponder("POST", "http://bank.test/api/accounts/42",
			httpmock.NewStringResponder(503, "upstream down"))

		_, err := client.CreateAccount(context.Background(), "test-token", 42, "")
		var transientErr *types.TransientError
		require.ErrorAs(t, err, &transientErr)
	})
}

func TestCreateCard(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := testClient()

	t.Run("successful issuance", func(t *testing.T) {
		httpmock.RegisterResponder("POST", "http://bank.test/api/cards",
			httpmock.NewJsonResponderOrPanic(201, map[string]interface{}{
				"id":         77,
				"accountId":  101,
				"cardNumber": "5399831619690403",
				"cvv":        "129",
				"expiry":     "08/31",
				"tempPin":    "4921",
			}))

		card, err := client.CreateCard(context.Background(), "test-token", 101)
		require.NoError(t, err)
		assert.Equal(t, int64(77), card.ID)
		assert.Equal(t, int64(101), card.AccountID)
		assert.Equal(t, "4921", card.TempPin)
	})

	t.Run("2xx missing card number", func(t *testing.T) {
		httpmock.RegisterResponder("POST", "http://bank.test/api/cards",
			httpmock.NewJsonResponderOrPanic(201, map[string]interface{}{
				"id":        77,
				"accountId": 101,
			}))

		_, err := client.CreateCard(context.Background(), "test-token", 101)
		var provisioningErr *types.ProvisioningError
		require.ErrorAs(t, err, &provisioningErr)
		assert.Equal(t, "card", provisioningErr.Step)
	})

	t.Run("transport failure is transient", func(t *testing.T) {
		httpmock.RegisterResponder("POST", "http://bank.test/api/cards",
			httpmock.NewErrorResponder(assert.AnError))

		_, err := client.CreateCard(context.Background(), "test-token", 101)
		var transientErr *types.TransientError
		require.ErrorAs(t, err, &transientErr)
	})
}

func TestDeleteAccount(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := testClient()

	t.Run("successful delete", func(t *testing.T) {
		httpmock.RegisterResponder("DELETE", "http://bank.test/api/accounts/101",
			httpmock.NewStringResponder(204, ""))

		err := client.DeleteAccount(context.Background(), "test-token", 101)
		assert.NoError(t, err)
	})

	t.Run("rejected credential", func(t *testing.T) {
		httpmock.RegisterResponder("DELETE", "http://bank.test/api/accounts/101",
			httpmock.NewStringResponder(403, ""))

		err := client.DeleteAccount(context.Background(), "test-token", 101)
		var authErr *types.AuthError
		require.ErrorAs(t, err, &authErr)
	})
}
