package email

import (
	"context"

	"github.com/gringotts/onboarding/types"
)

// EmailServiceInterface provides the interface for the email service
type EmailServiceInterface interface {
	SendEmail(ctx context.Context, payload types.SendEmailPayload) (types.SendEmailResponse, error)
	SendTemplateEmail(ctx context.Context, payload types.SendEmailPayload, templateID string) (types.SendEmailResponse, error)
	SendOnboardingCompleteEmail(ctx context.Context, toAddress, firstName string) (types.SendEmailResponse, error)
}
