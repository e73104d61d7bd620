// Package mfa talks to the external multi-factor provider. The provider owns
// enrollment; this client only asks whether an email has completed it.
package mfa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Enrollment is the provider's answer for one email.
type Enrollment struct {
	Valid             bool   `json:"valid"`
	RegistrationState string `json:"registration_state"`
}

// Finished reports whether the user both exists on the provider side and has
// completed out-of-band registration. Only this combination may mark MFA
// enrollment complete; anything else leaves MFA unset or incomplete.
func (e Enrollment) Finished() bool {
	return e.Valid && e.RegistrationState == "finished"
}

// EnrollmentChecker is what the application layer depends on.
type EnrollmentChecker interface {
	CheckEnrollment(ctx context.Context, email string) (Enrollment, error)
}

// Client calls the provider's is_user_valid endpoint. The call is idempotent
// on the provider side, so retrying a failed check is always safe.
type Client struct {
	Site      string // provider base URL
	AppUID    string
	AppSecret string
	HTTP      *http.Client
}

// NewClient builds a Client with a bounded-timeout HTTP client. A hung
// provider must not hang the login flow.
func NewClient(site, appUID, appSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		Site:      strings.TrimRight(site, "/"),
		AppUID:    appUID,
		AppSecret: appSecret,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// CheckEnrollment asks the provider whether email is enrolled and finished.
// Any transport error, non-2xx status, or malformed body is a definite
// failure, never a silent "not enrolled".
func (c *Client) CheckEnrollment(ctx context.Context, email string) (Enrollment, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("uid", c.AppUID)
	form.Set("secret", c.AppSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Site+"/api/v9/is_user_valid", strings.NewReader(form.Encode()))
	if err != nil {
		return Enrollment{}, fmt.Errorf("mfa: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Enrollment{}, fmt.Errorf("mfa: provider unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Enrollment{}, fmt.Errorf("mfa: provider returned status %d", resp.StatusCode)
	}

	var enr Enrollment
	if err := json.NewDecoder(resp.Body).Decode(&enr); err != nil {
		return Enrollment{}, fmt.Errorf("mfa: malformed provider response: %w", err)
	}
	return enr, nil
}

var _ EnrollmentChecker = (*Client)(nil)
