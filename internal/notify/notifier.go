// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
)

// Config controls which channels are active for report-ready notifications.
type Config struct {
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	TopicArn     string
	AWSRegion    string
}

// Interfaces over the AWS clients so tests can substitute fakes.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier delivers report-ready notifications over SES email and an SNS
// topic. Delivery is best effort: failures are logged, never returned, so a
// dead mail pipe cannot fail a completed payment.
type Notifier struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func New(ctx context.Context, config *Config, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Notifier{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

// NewWithClients wires pre-built clients; used by tests.
func NewWithClients(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

// ReportReady tells the buyer their premium report is available.
func (n *Notifier) ReportReady(ctx context.Context, email, reportID string) {
	subject := "Your property feasibility report is ready"
	body := fmt.Sprintf(
		"Thanks for your purchase. Your property feasibility report is ready to view.\n\nReport reference: %s\n",
		reportID,
	)

	if n.config.EmailEnabled && email != "" {
		if err := n.sendEmail(ctx, email, subject, body); err != nil {
			n.logger.Error("report-ready email failed", map[string]interface{}{
				"error":    err,
				"email":    email,
				"reportId": reportID,
			})
		}
	}

	if n.config.SMSEnabled && n.config.TopicArn != "" {
		if err := n.publish(ctx, fmt.Sprintf("Premium report %s generated", reportID)); err != nil {
			n.logger.Error("report-ready publish failed", map[string]interface{}{
				"error":    err,
				"reportId": reportID,
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("email", err)
	}
	return nil
}

func (n *Notifier) publish(ctx context.Context, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicArn),
		Message:  aws.String(message),
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("sms", err)
	}
	return nil
}
