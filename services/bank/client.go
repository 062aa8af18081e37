package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	fastshot "github.com/opus-domini/fast-shot"
	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/types"
)

// Client talks to the remote Gringotts core banking API. Every call carries
// the session's bearer credential and a bounded timeout; failures are
// classified into the workflow error taxonomy at this boundary.
type Client struct {
	conf *config.BankConfiguration
}

// NewClient creates a new instance of Client
func NewClient() *Client {
	return &Client{
		conf: config.BankConfig(),
	}
}

func (c *Client) httpClient(token string) fastshot.ClientHttpMethods {
	return fastshot.NewClient(c.conf.BaseURL).
		Config().SetTimeout(c.conf.RequestTimeout).
		Header().Add("Content-Type", "application/json").
		Header().Add("Authorization", "Bearer "+token).
		Build()
}

// UpdateProfile persists the personal-detail fields for the identity and
// returns the (possibly enriched) profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, userID int64, payload types.ProfilePayload) (*types.Profile, error) {
	res, err := c.httpClient(token).
		PUT(fmt.Sprintf("/api/users/%d", userID)).
		Body().AsJSON(payload).
		Send()
	if err != nil {
		return nil, &types.TransientError{Message: "couldn't reach core banking API", Err: err}
	}

	body, err := readBody(res.RawResponse)
	if err != nil {
		return nil, &types.TransientError{Message: "failed to read core banking API response", Err: err}
	}
	if err := classifyStatus(res.RawResponse.StatusCode, body); err != nil {
		return nil, err
	}

	var profile types.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &types.ProvisioningError{Step: "profile", Message: "malformed profile response"}
	}

	return &profile, nil
}

// CreateAccount creates one account for the identity. Not idempotent:
// calling it twice creates two accounts, so the orchestrator gates it to at
// most once per attempt. A 2xx response missing the internal id or the
// public account number is a ProvisioningError, because card creation
// requires both.
func (c *Client) CreateAccount(ctx context.Context, token string, userID int64, accountType string) (*types.Account, error) {
	if accountType == "" {
		accountType = c.conf.DefaultAccountType
	}

	res, err := c.httpClient(token).
		POST(fmt.Sprintf("/api/accounts/%d", userID)).
		Body().AsJSON(map[string]interface{}{
		"accountType": accountType,
	}).
		Send()
	if err != nil {
		return nil, &types.TransientError{Message: "couldn't reach core banking API", Err: err}
	}

	body, err := readBody(res.RawResponse)
	if err != nil {
		return nil, &types.TransientError{Message: "failed to read core banking API response", Err: err}
	}
	if err := classifyStatus(res.RawResponse.StatusCode, body); err != nil {
		return nil, err
	}
	if err := validateResponse(accountSchema, body, "account"); err != nil {
		return nil, err
	}

	var account types.Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, &types.ProvisioningError{Step: "account", Message: "malformed account response"}
	}

	return &account, nil
}

// CreateCard creates one card bound to the given account. A 2xx response
// missing the card number is a ProvisioningError.
func (c *Client) CreateCard(ctx context.Context, token string, accountID int64) (*types.Card, error) {
	res, err := c.httpClient(token).
		POST("/api/cards").
		Body().AsJSON(map[string]interface{}{
		"accountId": accountID,
	}).
		Send()
	if err != nil {
		return nil, &types.TransientError{Message: "couldn't reach core banking API", Err: err}
	}

	body, err := readBody(res.RawResponse)
	if err != nil {
		return nil, &types.TransientError{Message: "failed to read core banking API response", Err: err}
	}
	if err := classifyStatus(res.RawResponse.StatusCode, body); err != nil {
		return nil, err
	}
	if err := validateResponse(cardSchema, body, "card"); err != nil {
		return nil, err
	}

	var card types.Card
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, &types.ProvisioningError{Step: "card", Message: "malformed card response"}
	}

	return &card, nil
}

// DeleteAccount issues the compensating delete for an account whose
// dependent card creation failed.
func (c *Client) DeleteAccount(ctx context.Context, token string, accountID int64) error {
	res, err := c.httpClient(token).
		DELETE(fmt.Sprintf("/api/accounts/%d", accountID)).
		Send()
	if err != nil {
		return &types.TransientError{Message: "couldn't reach core banking API", Err: err}
	}

	body, err := readBody(res.RawResponse)
	if err != nil {
		return &types.TransientError{Message: "failed to read core banking API response", Err: err}
	}

	return classifyStatus(res.RawResponse.StatusCode, body)
}

func readBody(res *http.Response) ([]byte, error) {
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

// classifyStatus maps a response status to the workflow error taxonomy.
// Timeouts and transport failures never reach here; they are wrapped as
// TransientError at the call site.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &types.AuthError{Code: status, Message: extractMessage(body)}
	case status >= 500:
		return &types.TransientError{Message: fmt.Sprintf("core banking API error: %d", status)}
	case status >= 400:
		message := extractMessage(body)
		if message == "" {
			message = fmt.Sprintf("request rejected: %d", status)
		}
		return &types.ValidationError{Message: message}
	default:
		return nil
	}
}

// extractMessage pulls the human-readable error out of a response body
func extractMessage(body []byte) string {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}

	for _, key := range []string{"error", "message"} {
		if msg, ok := data[key].(string); ok {
			return msg
		}
	}
	return ""
}
