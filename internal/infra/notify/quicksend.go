// File: internal/infra/notify/quicksend.go
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Randipa/lmcfinal/internal/config"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*QuicksendWhatsApp)(nil)

// QuicksendWhatsApp sends WhatsApp messages through the quicksend.lk HTTP API.
// Calls are bounded by a short timeout; a timeout is a hard failure with no
// partial state, and callers treat every failure as log-and-continue.
type QuicksendWhatsApp struct {
	apiURL string
	email  string
	apiKey string
	slotID string
	client *http.Client
}

func NewQuicksendWhatsApp(cfg config.WhatsAppConfig) (*QuicksendWhatsApp, error) {
	if cfg.SlotID == "" {
		return nil, errors.New("whatsapp slot id not configured")
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QuicksendWhatsApp{
		apiURL: cfg.APIURL,
		email:  cfg.Email,
		apiKey: cfg.APIKey,
		slotID: cfg.SlotID,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (q *QuicksendWhatsApp) Name() string { return "quicksend-whatsapp" }

func (q *QuicksendWhatsApp) Send(ctx context.Context, phoneNumber, text string) error {
	payload := map[string]any{
		"slotId":   q.slotID,
		"isGroup":  false,
		"withFile": false,
		"receiver": model.InternationalPhone(phoneNumber),
		"msg":      text,
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(q.email + ":" + q.apiKey))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("quicksend: unexpected status %d", resp.StatusCode)
	}
	return nil
}
