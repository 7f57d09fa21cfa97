package lib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatepass/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPaymentDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/pay_123", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pay_123","status":"approved","external_reference":"42"}`)
	}))
	defer srv.Close()
	t.Setenv("PAYMENT_API_URL", srv.URL)
	t.Setenv("PAYMENT_API_TOKEN", "test-token")

	detail, err := FetchPaymentDetail(context.Background(), "pay_123")
	require.NoError(t, err)
	assert.Equal(t, "pay_123", detail.ID)
	assert.Equal(t, "approved", detail.Status)
	assert.Equal(t, "42", detail.ExternalReference)
}

func TestFetchPaymentDetailUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	t.Setenv("PAYMENT_API_URL", srv.URL)

	_, err := FetchPaymentDetail(context.Background(), "pay_500")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstreamUnavailable))
}

func TestFetchPaymentDetailConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	t.Setenv("PAYMENT_API_URL", srv.URL)

	_, err := FetchPaymentDetail(context.Background(), "pay_dead")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstreamUnavailable))
}
