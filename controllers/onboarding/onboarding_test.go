package onboarding

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svc "github.com/gringotts/onboarding/services/onboarding"
	"github.com/gringotts/onboarding/routers/middleware"
	"github.com/gringotts/onboarding/types"
	"github.com/gringotts/onboarding/utils/test"
	"github.com/gringotts/onboarding/utils/token"
)

type mockOnboardingService struct {
	submitFunc      func(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error)
	retryFunc       func(ctx context.Context, session types.Session) (*types.OnboardingResult, error)
	acknowledgeFunc func(ctx context.Context, session types.Session) (*types.RedactedCard, error)
	statusFunc      func(ctx context.Context, userID int64) (*types.ProvisioningState, error)
	recordsFunc     func(ctx context.Context, userID int64) (*types.OnboardingRecords, error)
}

func (m *mockOnboardingService) Submit(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
	return m.submitFunc(ctx, session, payload)
}

func (m *mockOnboardingService) Retry(ctx context.Context, session types.Session) (*types.OnboardingResult, error) {
	return m.retryFunc(ctx, session)
}

func (m *mockOnboardingService) Acknowledge(ctx context.Context, session types.Session) (*types.RedactedCard, error) {
	return m.acknowledgeFunc(ctx, session)
}

func (m *mockOnboardingService) Status(ctx context.Context, userID int64) (*types.ProvisioningState, error) {
	return m.statusFunc(ctx, userID)
}

func (m *mockOnboardingService) Records(ctx context.Context, userID int64) (*types.OnboardingRecords, error) {
	return m.recordsFunc(ctx, userID)
}

func setupRouter(service types.OnboardingService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	ctrl := NewOnboardingControllerWithService(service)
	router := gin.New()
	v1 := router.Group("/v1", middleware.JWTMiddleware)
	{
		v1.POST("/onboarding", ctrl.SubmitOnboarding)
		v1.POST("/onboarding/retry", ctrl.RetryOnboarding)
		v1.POST("/onboarding/acknowledge", ctrl.AcknowledgeDisclosure)
		v1.GET("/onboarding/status", ctrl.GetStatus)
		v1.GET("/onboarding/records", ctrl.GetRecords)
	}
	return router
}

func authHeaders(t *testing.T) map[string]string {
	t.Helper()
	accessToken, err := token.GenerateAccessJWT(42, "harry@gringotts.bank")
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + accessToken}
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"firstName":   "Harry",
		"lastName":    "Potter",
		"phoneNumber": "+2348012345678",
		"address":     "4 Privet Drive",
	}
}

func TestSubmitOnboarding(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		router := setupRouter(&mockOnboardingService{})

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", validPayload(), nil, router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("rejects incomplete payload", func(t *testing.T) {
		router := setupRouter(&mockOnboardingService{})

		payload := validPayload()
		delete(payload, "lastName")

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", payload, authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.Code)

		var response types.Response
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, "Failed to validate payload", response.Message)
	})

	t.Run("returns card with PIN on success", func(t *testing.T) {
		var gotSession types.Session
		service := &mockOnboardingService{
			submitFunc: func(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
				gotSession = session
				return &types.OnboardingResult{
					Profile: &types.Profile{FirstName: payload.FirstName},
					Account: &types.Account{ID: 101, AccountNumber: "9040335663"},
					Card:    &types.Card{ID: 77, AccountID: 101, CardNumber: "5399831619690403", TempPin: "4921"},
				}, nil
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", validPayload(), authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Code)

		assert.Equal(t, int64(42), gotSession.UserID)
		assert.Equal(t, "harry@gringotts.bank", gotSession.Email)
		assert.NotEmpty(t, gotSession.Token)

		var response struct {
			Status string `json:"status"`
			Data   struct {
				Card struct {
					TempPin string `json:"tempPin"`
				} `json:"card"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, "success", response.Status)
		assert.Equal(t, "4921", response.Data.Card.TempPin)
	})

	t.Run("maps credential rejection to 401", func(t *testing.T) {
		service := &mockOnboardingService{
			submitFunc: func(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
				return nil, &types.AuthError{Code: 401}
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", validPayload(), authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.Code)

		var response types.Response
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, "Authorization error. Please login again.", response.Message)
	})

	t.Run("maps transient failure to 503", func(t *testing.T) {
		service := &mockOnboardingService{
			submitFunc: func(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
				return nil, &types.TransientError{Message: "timeout"}
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", validPayload(), authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	})

	t.Run("maps provisioning failure to 502", func(t *testing.T) {
		service := &mockOnboardingService{
			submitFunc: func(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
				return nil, &types.ProvisioningError{Step: "account", Message: "no account number"}
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", validPayload(), authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, res.Code)
	})

	t.Run("maps in-flight guard to 409", func(t *testing.T) {
		service := &mockOnboardingService{
			submitFunc: func(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
				return nil, svc.ErrAttemptInFlight
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", validPayload(), authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("surfaces remote validation message", func(t *testing.T) {
		service := &mockOnboardingService{
			submitFunc: func(ctx context.Context, session types.Session, payload types.ProfilePayload) (*types.OnboardingResult, error) {
				return nil, &types.ValidationError{Message: "phone number is not valid"}
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding", validPayload(), authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.Code)

		var response types.Response
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, "phone number is not valid", response.Message)
	})
}

func TestRetryOnboarding(t *testing.T) {
	t.Run("nothing to retry", func(t *testing.T) {
		service := &mockOnboardingService{
			retryFunc: func(ctx context.Context, session types.Session) (*types.OnboardingResult, error) {
				return nil, svc.ErrNothingToRetry
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding/retry", nil, authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("successful retry", func(t *testing.T) {
		service := &mockOnboardingService{
			retryFunc: func(ctx context.Context, session types.Session) (*types.OnboardingResult, error) {
				return &types.OnboardingResult{
					Account: &types.Account{ID: 102, AccountNumber: "9040335664"},
					Card:    &types.Card{ID: 78, AccountID: 102, CardNumber: "5399831619690404", TempPin: "7714"},
				}, nil
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding/retry", nil, authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Code)
	})
}

func TestAcknowledgeDisclosure(t *testing.T) {
	t.Run("returns redacted card without PIN", func(t *testing.T) {
		service := &mockOnboardingService{
			acknowledgeFunc: func(ctx context.Context, session types.Session) (*types.RedactedCard, error) {
				return &types.RedactedCard{ID: 77, AccountID: 101, CardNumber: "5399831619690403"}, nil
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding/acknowledge", nil, authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Code)

		var response struct {
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, "5399831619690403", response.Data["cardNumber"])
		assert.NotContains(t, response.Data, "tempPin")
	})

	t.Run("no pending disclosure", func(t *testing.T) {
		service := &mockOnboardingService{
			acknowledgeFunc: func(ctx context.Context, session types.Session) (*types.RedactedCard, error) {
				return nil, svc.ErrNoPendingSecret
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "POST", "/v1/onboarding/acknowledge", nil, authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestGetStatus(t *testing.T) {
	service := &mockOnboardingService{
		statusFunc: func(ctx context.Context, userID int64) (*types.ProvisioningState, error) {
			return &types.ProvisioningState{Phase: types.PhaseAwaitingRetry, RolledBack: true}, nil
		},
	}
	router := setupRouter(service)

	res, err := test.PerformRequest(t, "GET", "/v1/onboarding/status", nil, authHeaders(t), router)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Code)

	var response struct {
		Data struct {
			Phase string `json:"phase"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
	assert.Equal(t, "awaiting_retry", response.Data.Phase)
}

func TestGetRecords(t *testing.T) {
	t.Run("not onboarded", func(t *testing.T) {
		service := &mockOnboardingService{
			recordsFunc: func(ctx context.Context, userID int64) (*types.OnboardingRecords, error) {
				return nil, nil
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "GET", "/v1/onboarding/records", nil, authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("completed onboarding", func(t *testing.T) {
		service := &mockOnboardingService{
			recordsFunc: func(ctx context.Context, userID int64) (*types.OnboardingRecords, error) {
				return &types.OnboardingRecords{
					Account: &types.Account{ID: 101, AccountNumber: "9040335663"},
					Card:    &types.RedactedCard{ID: 77, AccountID: 101, CardNumber: "5399831619690403"},
				}, nil
			},
		}
		router := setupRouter(service)

		res, err := test.PerformRequest(t, "GET", "/v1/onboarding/records", nil, authHeaders(t), router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Code)
	})
}
