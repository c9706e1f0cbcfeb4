package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// AlertService sends operational alert mail via Amazon SES. The scheduled
// sync job reports failures through it.
type AlertService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	toEmail   string
	enabled   bool
}

// NewAlertService creates a new alert service. With no sender or recipient
// configured the service is disabled and every send becomes a no-op.
func NewAlertService(awsRegion, fromEmail, fromName, toEmail string) (*AlertService, error) {
	if fromEmail == "" || toEmail == "" {
		log.Println("Alert service disabled: SES_FROM_EMAIL or ALERT_EMAIL not configured")
		return &AlertService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Alert service enabled: from=%s, to=%s, region=%s", fromEmail, toEmail, awsRegion)

	return &AlertService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the alert service is enabled
func (s *AlertService) IsEnabled() bool {
	return s.enabled
}

// SyncFailed reports a failed sync pass.
func (s *AlertService) SyncFailed(syncErr error) {
	subject := "Sprachtrainer: task sync failed"
	body := fmt.Sprintf("The scheduled task-spec sync pass failed:\n\n%v\n\nThe previous task set remains in place; the next pass will retry.", syncErr)
	s.send(subject, body)
}

func (s *AlertService) send(subject, body string) {
	if !s.enabled {
		return
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{s.toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data: aws.String(body),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(context.TODO(), input); err != nil {
		log.Printf("Failed to send alert email: %v", err)
	}
}
