package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"
	"variaredirect/internal/net"
)

var (
	regClient = &http.Client{Timeout: consts.HTTPClientTimeout}
	lanClient = &http.Client{
		Timeout: consts.HTTPClientTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // LAN services commonly use self-signed certs.
		},
	}
)

// Log writes alerts to the program log.
type Log struct{}

// Notify implements contracts.Notifier.
func (Log) Notify(_ context.Context, n models.Notification) error {
	logger.Pl.W("%s: %s", n.Title, n.Message)
	return nil
}

// Feed persists alerts so the UI can list them.
type Feed struct {
	Store contracts.NotificationStore
}

// Notify implements contracts.Notifier.
func (f Feed) Notify(ctx context.Context, n models.Notification) error {
	return f.Store.AddNotification(ctx, n)
}

// Webhook posts alerts as JSON to each configured URL.
type Webhook struct {
	URLs []string
}

// webhookPayload is the JSON body posted to webhooks.
type webhookPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notify implements contracts.Notifier.
func (w Webhook) Notify(ctx context.Context, n models.Notification) error {
	if len(w.URLs) == 0 {
		return nil
	}

	body, err := json.Marshal(webhookPayload{ID: n.ID, Title: n.Title, Message: n.Message})
	if err != nil {
		return fmt.Errorf("failed to encode notification %q: %w", n.ID, err)
	}

	errs := make([]error, 0, len(w.URLs))
	for _, notifyURL := range w.URLs {
		logger.Pl.D(1, "Notifying %q", notifyURL)
		parsed, err := url.Parse(notifyURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid notification URL %q: %w", notifyURL, err))
			continue
		}

		client := regClient
		if net.IsPrivateNetwork(parsed.Host) {
			client = lanClient
		}

		if err := post(ctx, client, notifyURL, body); err != nil {
			errs = append(errs, fmt.Errorf("failed to notify URL %q: %w", notifyURL, err))
			continue
		}
		logger.Pl.D(1, "Successfully notified URL %q", notifyURL)
	}
	return errors.Join(errs...)
}

// post sends one webhook request.
func post(ctx context.Context, client *http.Client, notifyURL string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notifyURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set(consts.ContentType, consts.ApplicationJSON)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Pl.E("Failed to close HTTP response body: %v", err)
		}
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification failed with status %d", resp.StatusCode)
	}
	return nil
}

// Multi fans an alert out to several notifiers. Every notifier is tried.
type Multi []contracts.Notifier

// Notify implements contracts.Notifier.
func (m Multi) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
