package email

import (
	"context"
	"fmt"

	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/types"
	"github.com/gringotts/onboarding/utils/logger"
)

// EmailService provides functionality for sending emails with provider
// abstraction and fallback support
type EmailService struct {
	primaryProvider  EmailProvider
	fallbackProvider EmailProvider
	providerFactory  *ProviderFactory
	notificationConf *config.NotificationConfiguration
}

// NewEmailService creates a new EmailService with dynamic provider selection
func NewEmailService() *EmailService {
	notificationConf := config.NotificationConfig()
	factory := NewProviderFactory(notificationConf)

	primaryProvider, err := factory.GetDefaultProvider()
	if err != nil {
		logger.Errorf("Failed to create primary email provider: %v", err)
		primaryProvider, _ = factory.CreateProvider("sendgrid")
	}

	// Fallback provider must be distinct from the primary
	var fallbackProvider EmailProvider
	if primaryProvider.GetName() == "sendgrid" {
		fallbackProvider, err = factory.CreateProvider("mailgun")
	} else {
		fallbackProvider, err = factory.CreateProvider("sendgrid")
	}
	if err != nil {
		logger.Errorf("Failed to create fallback email provider: %v", err)
		return nil
	}

	return &EmailService{
		primaryProvider:  primaryProvider,
		fallbackProvider: fallbackProvider,
		providerFactory:  factory,
		notificationConf: notificationConf,
	}
}

// SendEmail sends an email with fallback support
func (e *EmailService) SendEmail(ctx context.Context, payload types.SendEmailPayload) (types.SendEmailResponse, error) {
	response, err := e.primaryProvider.SendEmail(ctx, payload)
	if err != nil {
		logger.WithFields(logger.Fields{
			"primary_provider": e.primaryProvider.GetName(),
			"error":            err.Error(),
		}).Warnf("Primary email provider failed, trying fallback")

		if e.fallbackProvider == nil {
			return types.SendEmailResponse{}, fmt.Errorf("no fallback provider available: %w", err)
		}
		response, err = e.fallbackProvider.SendEmail(ctx, payload)
		if err != nil {
			logger.WithFields(logger.Fields{
				"fallback_provider": e.fallbackProvider.GetName(),
				"error":             err.Error(),
			}).Errorf("Fallback email provider also failed")
			return types.SendEmailResponse{}, fmt.Errorf("all email providers failed: %w", err)
		}

		logger.WithFields(logger.Fields{
			"fallback_provider": e.fallbackProvider.GetName(),
		}).Infof("Email sent successfully via fallback provider")
	}

	return response, nil
}

// SendTemplateEmail sends a template email with fallback support
func (e *EmailService) SendTemplateEmail(ctx context.Context, payload types.SendEmailPayload, templateID string) (types.SendEmailResponse, error) {
	response, err := e.primaryProvider.SendTemplateEmail(ctx, payload, templateID)
	if err != nil {
		logger.WithFields(logger.Fields{
			"primary_provider": e.primaryProvider.GetName(),
			"template_id":      templateID,
			"error":            err.Error(),
		}).Warnf("Primary email provider failed for template, trying fallback")

		if e.fallbackProvider == nil {
			return types.SendEmailResponse{}, fmt.Errorf("no fallback provider available for template: %w", err)
		}

		response, err = e.fallbackProvider.SendTemplateEmail(ctx, payload, templateID)
		if err != nil {
			logger.WithFields(logger.Fields{
				"fallback_provider": e.fallbackProvider.GetName(),
				"template_id":       templateID,
				"error":             err.Error(),
			}).Errorf("Fallback email provider also failed for template")
			return types.SendEmailResponse{}, fmt.Errorf("all email providers failed for template: %w", err)
		}

		logger.WithFields(logger.Fields{
			"fallback_provider": e.fallbackProvider.GetName(),
			"template_id":       templateID,
		}).Infof("Template email sent successfully via fallback provider")
	}

	return response, nil
}

// SendOnboardingCompleteEmail notifies the customer that their account and
// card are ready.
func (e *EmailService) SendOnboardingCompleteEmail(ctx context.Context, toAddress, firstName string) (types.SendEmailResponse, error) {
	payload := types.SendEmailPayload{
		FromAddress: e.notificationConf.EmailFromAddress,
		ToAddress:   toAddress,
		DynamicData: map[string]interface{}{
			"first_name": firstName,
		},
	}

	templateID := getTemplateID("onboarding_complete", e.primaryProvider.GetName())
	return e.SendTemplateEmail(ctx, payload, templateID)
}

// getTemplateID returns the appropriate template ID based on email type and provider
func getTemplateID(emailType, provider string) string {
	templates := map[string]map[string]string{
		"sendgrid": {
			"onboarding_complete": "d-41c98a5f60e647e2a1d2c3be09f1d774",
		},
		"brevo": {
			"onboarding_complete": "3",
		},
	}

	if providerTemplates, exists := templates[provider]; exists {
		if templateID, exists := providerTemplates[emailType]; exists {
			return templateID
		}
	}

	// Fallback to SendGrid templates if provider-specific template not found
	if provider != "sendgrid" {
		return getTemplateID(emailType, "sendgrid")
	}

	return ""
}
