package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pocketplan/budget-api/utils"

	"github.com/kr/text"
	"go.uber.org/zap"
)

const (
	resendEndpoint = "https://api.resend.com/emails"
	emailWidth     = 72
)

// CodeMailer delivers the one-time codes of the local auth provider.
type CodeMailer interface {
	SendConfirmationCode(ctx context.Context, to, code string) error
	SendResetCode(ctx context.Context, to, code string) error
}

// EmailService sends plain-text mail through the Resend API. Without an API
// key it only logs that a message would have been sent.
type EmailService struct {
	apiKey    string
	fromEmail string
	endpoint  string
	client    *http.Client
}

func NewEmailService(apiKey, fromEmail string) *EmailService {
	return &EmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		endpoint:  resendEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *EmailService) SendConfirmationCode(ctx context.Context, to, code string) error {
	body := confirmationBody(code)
	return s.send(ctx, to, "Your PocketPlan confirmation code", body)
}

func (s *EmailService) SendResetCode(ctx context.Context, to, code string) error {
	body := resetBody(code)
	return s.send(ctx, to, "Reset your PocketPlan password", body)
}

func confirmationBody(code string) string {
	return text.Wrap("Welcome to PocketPlan! Enter the code below in the app to confirm "+
		"your email address and finish creating your account. The code expires in about ten minutes.", emailWidth) +
		"\n\n    " + code + "\n\n" +
		text.Wrap("If you did not sign up, you can ignore this message.", emailWidth) + "\n"
}

func resetBody(code string) string {
	return text.Wrap("We received a request to reset the password of your PocketPlan account. "+
		"Enter the code below in the app together with your new password.", emailWidth) +
		"\n\n    " + code + "\n\n" +
		text.Wrap("If you did not ask for a reset, your password stays unchanged.", emailWidth) + "\n"
}

func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	if s.apiKey == "" {
		utils.Logger().Warn("RESEND_API_KEY not configured, email not sent",
			zap.String("to", utils.MaskEmail(to)), zap.String("subject", subject))
		return nil
	}

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("PocketPlan <%s>", s.fromEmail),
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}
