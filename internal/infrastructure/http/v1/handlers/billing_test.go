package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"milkbill/internal/domain/billing"
	"milkbill/internal/infrastructure/http/v1/middleware"
)

func newBillingTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	h := NewBillingHandler(NewBaseHandler(), billing.NewService(nil))
	h.RegisterRoutes(router.Group(""))
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBillingHandler_PreviewValuation_RequiresShift(t *testing.T) {
	router := newBillingTestRouter()

	w := postJSON(router, "/valuations/preview",
		`{"farmerId":"f1","date":"2025-06-10","qtyKg":100,"fat":6.5,"clr":28,"baseRate":7}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "shift is required")
}

func TestBillingHandler_PreviewValuation_RequiresFarmerAndDate(t *testing.T) {
	router := newBillingTestRouter()

	w := postJSON(router, "/valuations/preview",
		`{"date":"2025-06-10","shift":"AM"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "farmerId is required")

	w = postJSON(router, "/valuations/preview",
		`{"farmerId":"f1","shift":"AM"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "date is required")
}
