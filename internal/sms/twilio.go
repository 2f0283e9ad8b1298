package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smartapp-edu/records-service/internal/config"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioSender sends SMS through the Twilio messages endpoint.
type TwilioSender struct {
	cfg     config.TwilioConfig
	client  *http.Client
	baseURL string
}

func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	return &TwilioSender{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: twilioBaseURL,
	}
}

func (t *TwilioSender) Send(ctx context.Context, phone, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", t.cfg.FromPhone)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}
	return nil
}
