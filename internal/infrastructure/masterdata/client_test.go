package masterdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/types"
	"milkbill/internal/domain/billing"
	"milkbill/internal/domain/collection"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL})
}

func TestClient_FarmerRates_MissingOverrideIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.FarmerRates(context.Background(), "f1")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestClient_ServerFailureIsUpstream(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.CommonRates(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUpstream, appErr.Code)
}

func TestPreviewValuation_FarmerWithoutOverrideUsesCommonRates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rate-configs/common", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	client := newTestClient(t, mux)
	svc := billing.NewService(client)

	rec, err := svc.PreviewValuation(context.Background(), collection.Input{
		FarmerID: "f1",
		Date:     types.MustDate("2025-06-10"),
		Shift:    types.ShiftAM,
		QtyKg:    types.NewDecimal(types.MustMoney("100")),
		Fat:      types.NewDecimal(types.MustMoney("6.5")),
		CLR:      types.NewDecimal(types.MustMoney("28")),
		BaseRate: types.NewDecimal(types.MustMoney("7")),
	})
	require.NoError(t, err)

	// Valued from the common configuration: per-liter default pricing,
	// 100 kg is 97.09 L at the base rate of 7.
	assert.Equal(t, "679.63", rec.MilkValue.String())
}
