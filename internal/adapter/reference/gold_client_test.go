package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

var goldCriteria = domain.GoldCriteria{Metal: "gold", Quality: "14K", Range: "A"}

func TestGoldClient_QuoteGold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/gold/price", r.URL.Path)
		assert.Equal(t, "14K", r.URL.Query().Get("quality"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price_per_gram":"1234.567"}`))
	}))
	defer server.Close()

	client := NewGoldClient(server.URL+"/", time.Second, 0)
	price, err := client.QuoteGold(context.Background(), goldCriteria)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1234.567").Equal(price))
}

func TestGoldClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "Structured fault",
			status: http.StatusUnprocessableEntity,
			body:   `{"code":"NMP-TR-010","message":"Error Test"}`,
			check: func(t *testing.T, err error) {
				var fault *ProtocolFault
				require.ErrorAs(t, err, &fault)
				assert.Equal(t, "NMP-TR-010", fault.Code)
				assert.Equal(t, "Error Test", fault.Message)
			},
		},
		{
			name:   "Unstructured server error",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				var comm *CommunicationError
				require.ErrorAs(t, err, &comm)
				assert.Contains(t, comm.Error(), "502")
			},
		},
		{
			name:   "Malformed success body",
			status: http.StatusOK,
			body:   `{"price_per_gram":"lots"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "price_per_gram")
				var comm *CommunicationError
				assert.NotErrorAs(t, err, &comm)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewGoldClient(server.URL, time.Second, 0).QuoteGold(context.Background(), goldCriteria)
			tt.check(t, err)
		})
	}
}

func TestGoldClient_ConnectionRefusedTranslatesToMV003(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	pricer := WithGoldTranslation(NewGoldClient(url, time.Second, 0), NewTranslator(zerolog.Nop()))
	_, err := pricer.QuoteGold(context.Background(), goldCriteria)

	var verr *domain.ValuationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CodeCommunication, verr.Code)
	assert.NotEmpty(t, verr.Actor)
}

func TestGoldClient_CancelledContextIsNotTranslated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pricer := WithGoldTranslation(NewGoldClient(server.URL, time.Second, 5), NewTranslator(zerolog.Nop()))
	_, err := pricer.QuoteGold(ctx, goldCriteria)

	assert.ErrorIs(t, err, context.Canceled)
	var verr *domain.ValuationError
	assert.NotErrorAs(t, err, &verr)
}
