package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client sends outbound SMS. Delivery is fire-and-forget from the caller's
// point of view; a send failure must not block OTP issuance.
type Client interface {
	Send(ctx context.Context, toMobile, message string) error
	IsConfigured() bool
}

type twilioClient struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

func NewTwilioClient(accountSID, authToken, fromNumber string) Client {
	return &twilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (tc *twilioClient) IsConfigured() bool {
	return tc.accountSID != "" && tc.authToken != "" && tc.fromNumber != ""
}

func (tc *twilioClient) Send(ctx context.Context, toMobile, message string) error {
	twilioURL := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", tc.accountSID)

	data := url.Values{}
	data.Set("To", toMobile)
	data.Set("From", tc.fromNumber)
	data.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, "POST", twilioURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}

	req.SetBasicAuth(tc.accountSID, tc.authToken)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, resp.Body)
		return fmt.Errorf("SMS provider returned non-success status: %d - %s", resp.StatusCode, buf.String())
	}

	return nil
}
