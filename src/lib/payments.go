package lib

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gatepass/src/config"
	"gatepass/src/types"

	"github.com/tidwall/gjson"
)

// PaymentDetail is the authoritative record fetched from the provider.
// Status uses the provider's own vocabulary (approved, pending,
// in_process, rejected, cancelled, ...).
type PaymentDetail struct {
	ID                string
	Status            string
	ExternalReference string
}

var paymentsClient *http.Client

func GetPaymentsClient() *http.Client {
	if paymentsClient != nil {
		return paymentsClient
	}
	paymentsClient = &http.Client{Timeout: 10 * time.Second}
	return paymentsClient
}

// NewPaymentsClient replaces the singleton, used by tests.
func NewPaymentsClient(c *http.Client) {
	paymentsClient = c
}

// FetchPaymentDetail re-fetches a payment by id from the provider API.
// Webhook bodies carry nothing trustworthy beyond the payment id, so
// every notification goes through this call. Network errors, timeouts
// and non-200 responses all map to ErrUpstreamUnavailable so the caller
// lets the provider redeliver.
func FetchPaymentDetail(ctx context.Context, paymentId string) (*PaymentDetail, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", config.PaymentAPIURL(), paymentId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+config.PaymentAPIToken())

	resp, err := GetPaymentsClient().Do(req)
	if err != nil {
		log.Printf("[Payments] Error fetching payment %s: %s\n", paymentId, err.Error())
		return nil, fmt.Errorf("fetch payment %s: %w", paymentId, types.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Payments] Unexpected status %d fetching payment %s\n", resp.StatusCode, paymentId)
		return nil, fmt.Errorf("fetch payment %s: status %d: %w", paymentId, resp.StatusCode, types.ErrUpstreamUnavailable)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read payment %s: %w", paymentId, types.ErrUpstreamUnavailable)
	}

	detail := PaymentDetail{
		ID:                gjson.GetBytes(body, "id").String(),
		Status:            gjson.GetBytes(body, "status").String(),
		ExternalReference: gjson.GetBytes(body, "external_reference").String(),
	}
	return &detail, nil
}
