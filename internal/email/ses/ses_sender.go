package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"socialid/internal/config"
	"socialid/internal/port"
)

// API is the part of the SES v2 client used by the sender.
type API interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client      API
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(ctx context.Context, cfg *config.EmailConfig) (port.EmailSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSender(sesv2.NewFromConfig(awsCfg), cfg), nil
}

// NewSender creates an EmailSender on top of an existing client.
func NewSender(client API, cfg *config.EmailConfig) port.EmailSender {
	return &sesSender{
		client:      client,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		frontendURL: cfg.FrontendURL,
	}
}

func (s *sesSender) SendAccountConnected(ctx context.Context, toEmail, toName, providerName string) error {
	subject := fmt.Sprintf("%s account connected", providerName)
	text := fmt.Sprintf("Hi %s,\n\nA %s account was just connected to your account.\n\nIf this wasn't you, review your connected accounts at:\n%s\n",
		toName, providerName, s.accountsURL())
	return s.send(ctx, toEmail, subject, text, buildNoticeHTML(toName,
		fmt.Sprintf("A %s account was just connected to your account.", providerName), s.accountsURL()))
}

func (s *sesSender) SendAccountDisconnected(ctx context.Context, toEmail, toName, providerName string) error {
	subject := fmt.Sprintf("%s account disconnected", providerName)
	text := fmt.Sprintf("Hi %s,\n\nA %s account was just disconnected from your account.\n\nIf this wasn't you, review your connected accounts at:\n%s\n",
		toName, providerName, s.accountsURL())
	return s.send(ctx, toEmail, subject, text, buildNoticeHTML(toName,
		fmt.Sprintf("A %s account was just disconnected from your account.", providerName), s.accountsURL()))
}

func (s *sesSender) accountsURL() string {
	return s.frontendURL + "/account/providers"
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, textBody, htmlBody string) error {
	if toEmail == "" {
		return nil
	}
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildNoticeHTML(name, notice, accountsURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <p>Hi %s,</p>
  <p>%s</p>
  <p>If this wasn't you, review your connected accounts:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Connected accounts</a>
  </p>
</body>
</html>`, html.EscapeString(name), html.EscapeString(notice), html.EscapeString(accountsURL))
}
