package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/afinkbeiner86/weather-alert/internal/httpx"
)

const defaultPushoverURL = "https://api.pushover.net/1/messages.json"

// PushoverNotifier delivers notifications through the Pushover message API.
type PushoverNotifier struct {
	userKey  string
	appToken string
	endpoint string
	httpCfg  httpx.ClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewPushoverNotifier(client *http.Client, userKey, appToken string) *PushoverNotifier {
	return &PushoverNotifier{
		userKey:  userKey,
		appToken: appToken,
		endpoint: defaultPushoverURL,
		httpCfg: httpx.ClientConfig{
			Client: client,
			Backoff: httpx.BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: httpx.NewBreaker("pushover"),
	}
}

func (p *PushoverNotifier) Name() string {
	return "pushover"
}

func (p *PushoverNotifier) Send(ctx context.Context, n Notification) error {
	if p.userKey == "" || p.appToken == "" {
		return fmt.Errorf("pushover credentials are not configured")
	}

	resp, err := httpx.DoWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		form := url.Values{}
		form.Set("token", p.appToken)
		form.Set("user", p.userKey)
		form.Set("title", n.Title)
		form.Set("message", n.Message)

		req, err := http.NewRequest(http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("pushover send failed: %w", err)
	}
	resp.Body.Close()

	return nil
}
