package onboarding

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	svc "github.com/gringotts/onboarding/services/onboarding"
	"github.com/gringotts/onboarding/types"
	u "github.com/gringotts/onboarding/utils"
	"github.com/gringotts/onboarding/utils/logger"
)

// OnboardingController exposes the provisioning workflow over HTTP
type OnboardingController struct {
	onboardingService types.OnboardingService
}

// NewOnboardingController creates a new instance of OnboardingController
func NewOnboardingController() *OnboardingController {
	return &OnboardingController{
		onboardingService: svc.NewOrchestrator(),
	}
}

// NewOnboardingControllerWithService creates an OnboardingController around
// the given service
func NewOnboardingControllerWithService(service types.OnboardingService) *OnboardingController {
	return &OnboardingController{onboardingService: service}
}

// SubmitOnboarding controller validates the profile payload and runs the
// provisioning workflow. On success the response carries the temporary card
// PIN exactly once.
func (ctrl *OnboardingController) SubmitOnboarding(ctx *gin.Context) {
	var payload types.ProfilePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		u.APIResponse(ctx, http.StatusBadRequest, "error",
			"Failed to validate payload", u.GetErrorData(err))
		return
	}

	session := sessionFromContext(ctx)
	result, err := ctrl.onboardingService.Submit(ctx, session, payload)
	if err != nil {
		ctrl.handleWorkflowError(ctx, session.UserID, err)
		return
	}

	u.APIResponse(ctx, http.StatusOK, "success", "Onboarding completed successfully", result)
}

// RetryOnboarding controller re-runs card provisioning after a failed attempt
func (ctrl *OnboardingController) RetryOnboarding(ctx *gin.Context) {
	session := sessionFromContext(ctx)
	result, err := ctrl.onboardingService.Retry(ctx, session)
	if err != nil {
		ctrl.handleWorkflowError(ctx, session.UserID, err)
		return
	}

	u.APIResponse(ctx, http.StatusOK, "success", "Card issued successfully", result)
}

// AcknowledgeDisclosure controller confirms the customer has seen the
// temporary PIN, wiping it from the service
func (ctrl *OnboardingController) AcknowledgeDisclosure(ctx *gin.Context) {
	session := sessionFromContext(ctx)
	card, err := ctrl.onboardingService.Acknowledge(ctx, session)
	if err != nil {
		ctrl.handleWorkflowError(ctx, session.UserID, err)
		return
	}

	u.APIResponse(ctx, http.StatusOK, "success", "Disclosure acknowledged", card)
}

// GetStatus controller reports the current workflow phase for the caller
func (ctrl *OnboardingController) GetStatus(ctx *gin.Context) {
	session := sessionFromContext(ctx)
	state, err := ctrl.onboardingService.Status(ctx, session.UserID)
	if err != nil {
		ctrl.handleWorkflowError(ctx, session.UserID, err)
		return
	}

	u.APIResponse(ctx, http.StatusOK, "success", "OK", state)
}

// GetRecords controller returns the redacted onboarding records for a
// completed workflow
func (ctrl *OnboardingController) GetRecords(ctx *gin.Context) {
	session := sessionFromContext(ctx)
	records, err := ctrl.onboardingService.Records(ctx, session.UserID)
	if err != nil {
		ctrl.handleWorkflowError(ctx, session.UserID, err)
		return
	}
	if records == nil {
		u.APIResponse(ctx, http.StatusNotFound, "error", "No onboarding records found", nil)
		return
	}

	u.APIResponse(ctx, http.StatusOK, "success", "OK", records)
}

// handleWorkflowError maps workflow errors onto the response envelope
func (ctrl *OnboardingController) handleWorkflowError(ctx *gin.Context, userID int64, err error) {
	var authErr *types.AuthError
	var validationErr *types.ValidationError
	var transientErr *types.TransientError
	var provisioningErr *types.ProvisioningError

	switch {
	case errors.As(err, &authErr):
		u.APIResponse(ctx, http.StatusUnauthorized, "error",
			"Authorization error. Please login again.", nil)
	case errors.As(err, &validationErr):
		u.APIResponse(ctx, http.StatusBadRequest, "error", validationErr.Message, nil)
	case errors.As(err, &transientErr):
		logger.Errorf("user %d: transient workflow failure: %v", userID, err)
		u.APIResponse(ctx, http.StatusServiceUnavailable, "error",
			"The banking service is temporarily unavailable. Please try again.", nil)
	case errors.As(err, &provisioningErr):
		logger.Errorf("user %d: provisioning failure at %s: %v", userID, provisioningErr.Step, err)
		u.APIResponse(ctx, http.StatusBadGateway, "error",
			"The banking service returned an unusable response. Please try again.", nil)
	case errors.Is(err, svc.ErrAttemptInFlight),
		errors.Is(err, svc.ErrAwaitingRetry),
		errors.Is(err, svc.ErrAwaitingAcknowledgment):
		u.APIResponse(ctx, http.StatusConflict, "error", err.Error(), nil)
	case errors.Is(err, svc.ErrNothingToRetry),
		errors.Is(err, svc.ErrNoPendingSecret):
		u.APIResponse(ctx, http.StatusNotFound, "error", err.Error(), nil)
	default:
		logger.Errorf("user %d: unexpected workflow failure: %v", userID, err)
		u.APIResponse(ctx, http.StatusInternalServerError, "error",
			"Something went wrong. Please try again.", nil)
	}
}

func sessionFromContext(ctx *gin.Context) types.Session {
	return types.Session{
		UserID: ctx.GetInt64("user_id"),
		Email:  ctx.GetString("email"),
		Token:  ctx.GetString("token"),
	}
}
