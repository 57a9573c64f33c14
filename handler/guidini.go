package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"restaurant_manager/config"
	"restaurant_manager/model"
)

// GuidiniPay is the external payment gateway adapter. It initiates hosted
// payments and answers status queries; amounts travel as strings in minor
// units. Any non-2xx or malformed response surfaces as an error, never as a
// silent success.
type GuidiniPay struct {
	BaseURL       string
	AppKey        string
	AppSecret     string
	WebhookSecret string
	Client        *http.Client
}

func NewGuidiniPay() *GuidiniPay {
	return &GuidiniPay{
		BaseURL:       config.ConfigOr("GATEWAY_URL", "https://epay.guiddini.dz/api/payment"),
		AppKey:        config.Config("GATEWAY_APP_KEY"),
		AppSecret:     config.Config("GATEWAY_APP_SECRET"),
		WebhookSecret: config.Config("GATEWAY_WEBHOOK_SECRET"),
		Client:        &http.Client{Timeout: 30 * time.Second},
	}
}

type gatewayEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			FormURL string `json:"form_url"`
			Amount  string `json:"amount"`
		} `json:"attributes"`
	} `json:"data"`
}

func (g *GuidiniPay) do(method, url string, body any) (*gatewayEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-key", g.AppKey)
	req.Header.Set("x-app-secret", g.AppSecret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var envelope gatewayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("invalid gateway response: %w", err)
	}
	if envelope.Data.ID == "" {
		return nil, fmt.Errorf("invalid gateway response: missing transaction id")
	}
	return &envelope, nil
}

// Initiate opens a hosted payment for the amount (converted to minor units)
// and returns the transaction reference plus the redirect form URL.
func (g *GuidiniPay) Initiate(amount float64, language string) (*model.GatewayTransaction, error) {
	if language == "" {
		language = "fr"
	}
	body := map[string]string{
		"amount":   strconv.FormatInt(int64(amount*100), 10),
		"language": language,
	}

	envelope, err := g.do(http.MethodPost, g.BaseURL+"/initiate", body)
	if err != nil {
		return nil, err
	}

	return &model.GatewayTransaction{
		TransactionID: envelope.Data.ID,
		FormURL:       envelope.Data.Attributes.FormURL,
		Amount:        envelope.Data.Attributes.Amount,
	}, nil
}

// Show queries the gateway's payment status by order number and returns the
// raw envelope for pass-through to the client.
func (g *GuidiniPay) Show(orderNumber string) (map[string]interface{}, error) {
	body := map[string]string{"order_number": orderNumber}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, g.BaseURL+"/show", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-key", g.AppKey)
	req.Header.Set("x-app-secret", g.AppSecret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid gateway response: %w", err)
	}
	return raw, nil
}

// VerifyCallbackSignature checks the HMAC-SHA256 signature the gateway sends
// with its callback. With no webhook secret configured the callback is
// accepted as-is, matching the gateway's original unauthenticated contract.
func (g *GuidiniPay) VerifyCallbackSignature(orderNumber, signature string) bool {
	if g.WebhookSecret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(g.WebhookSecret))
	mac.Write([]byte(orderNumber))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
