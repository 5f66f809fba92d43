package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/villa-booking/internal/config"
	"github.com/iliyamo/villa-booking/internal/handler"
	"github.com/iliyamo/villa-booking/internal/middleware"
	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/payment"
	"github.com/iliyamo/villa-booking/internal/repository"
	"github.com/iliyamo/villa-booking/internal/router"
	"github.com/iliyamo/villa-booking/internal/service"
	"github.com/iliyamo/villa-booking/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	adminEmail    = "owner@villa.test"
	adminPassword = "s3cret-pass"
	jwtSecret     = "test-secret"
)

type app struct {
	e     *echo.Echo
	villa model.Villa
	store *repository.MemoryStore
}

func newApp(t *testing.T) *app {
	t.Helper()
	logger := zap.NewNop()
	villa := model.SampleVilla()
	store := repository.NewMemoryStore(villa)
	processor := payment.NewMockProcessor(0, logger)
	bookings := service.NewBookingService(store, processor, nil, logger, "")
	payments := service.NewPaymentService(store, processor, logger, "")

	hash, err := utils.HashPassword(adminPassword, bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:         jwtSecret,
		AccessTTLMin:      5,
		AdminEmail:        adminEmail,
		AdminPasswordHash: hash,
	}
	noRedis := middleware.NewTokenBucket(config.RateLimitConfig{}, nil, logger)

	e := router.New(logger)
	router.RegisterRoutes(e, &handler.HealthHandler{Store: store})
	router.RegisterPublic(e, router.Public{
		Villas:   &handler.VillaHandler{Store: store, Bookings: bookings, Logger: logger},
		Bookings: &handler.BookingHandler{Bookings: bookings, Logger: logger},
		Payments: &handler.PaymentHandler{Payments: payments, Logger: logger},
		Cache:    middleware.NewRedisCache(config.CacheConfig{}, nil, logger),
		Limiter:  noRedis,
	})
	router.RegisterAdmin(e, &handler.AdminHandler{Cfg: cfg, Bookings: bookings, Payments: payments, Logger: logger}, jwtSecret, noRedis)
	return &app{e: e, villa: villa, store: store}
}

func (a *app) do(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

// stay returns check-in/check-out dates offset days from today.
func stay(from, nights int) (string, string) {
	in := model.NewDate(time.Now()).AddDays(from)
	return in.String(), in.AddDays(nights).String()
}

func (a *app) bookingBody(in, out string, nights int) string {
	b, _ := json.Marshal(map[string]any{
		"first_name":   "Asha",
		"last_name":    "Rao",
		"email":        "asha@example.com",
		"phone":        "+91 98765 43210",
		"check_in":     in,
		"check_out":    out,
		"guests":       4,
		"villa_id":     a.villa.ID,
		"total_amount": float64(nights) * a.villa.Price,
	})
	return string(b)
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	code, body := a.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "memory", body["store"])
}

func TestBookingMissingFields(t *testing.T) {
	a := newApp(t)
	code, body := a.do(t, http.MethodPost, "/api/booking", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t,
		"Missing required fields: first_name, last_name, email, phone, check_in, check_out, guests, villa_id, total_amount",
		body["error"])

	code, body = a.do(t, http.MethodPost, "/api/booking", `{"first_name":"Asha","email":"a@b.co","guests":2}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields: last_name, phone, check_in, check_out, villa_id, total_amount", body["error"])
}

func TestBookingInvalidInput(t *testing.T) {
	a := newApp(t)
	in, out := stay(10, 3)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(a.bookingBody(in, out, 3)), &m))
	m["email"] = "not-an-email"
	raw, _ := json.Marshal(m)
	code, body := a.do(t, http.MethodPost, "/api/booking", string(raw), "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email must be a valid email address", body["error"])

	code, body = a.do(t, http.MethodPost, "/api/booking", a.bookingBody("2030-13-01", out, 3), "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "check_in")

	code, _ = a.do(t, http.MethodPost, "/api/booking", `{"first_name":`, "")
	assert.Equal(t, http.StatusBadRequest, code)

	// total that does not match nights * price
	code, _ = a.do(t, http.MethodPost, "/api/booking", a.bookingBody(in, out, 2), "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBookingCreatedThenConflict(t *testing.T) {
	a := newApp(t)
	in, out := stay(10, 3)

	code, body := a.do(t, http.MethodPost, "/api/booking", a.bookingBody(in, out, 3), "")
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, true, body["success"])
	booking := body["booking"].(map[string]any)
	assert.Equal(t, model.BookingConfirmed, booking["status"])
	assert.Equal(t, in, booking["check_in"])
	assert.Regexp(t, `^pay_`, booking["payment_id"])
	txn := body["transaction"].(map[string]any)
	assert.Equal(t, model.TxCompleted, txn["status"])
	assert.Contains(t, body["message"], "asha@example.com")

	code, body = a.do(t, http.MethodPost, "/api/booking", a.bookingBody(out, stay2(out, 2), 2), "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Villa is not available for the selected dates", body["error"])

	// guest lookup
	code, body = a.do(t, http.MethodGet, "/api/bookings?email=ASHA@example.com", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["bookings"], 1)

	id := booking["id"].(string)
	code, body = a.do(t, http.MethodGet, "/api/bookings/"+id, "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, body["booking"].(map[string]any)["id"])

	code, _ = a.do(t, http.MethodGet, "/api/bookings/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(t, http.MethodGet, "/api/bookings", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func stay2(from string, nights int) string {
	return model.MustDate(from).AddDays(nights).String()
}

func TestBookingWithUnpaidReference(t *testing.T) {
	a := newApp(t)
	in, out := stay(12, 2)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(a.bookingBody(in, out, 2)), &m))
	m["payment_id"] = "never-paid"
	m["status"] = model.BookingConfirmed
	raw, _ := json.Marshal(m)
	code, resp := a.do(t, http.MethodPost, "/api/booking", string(raw), "")
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, "Payment not found", resp["error"])

	code, resp = a.do(t, http.MethodGet, "/api/villas/"+a.villa.ID+"/availability?check_in="+in+"&check_out="+out, "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["available"])
}

func TestBookingUnknownVilla(t *testing.T) {
	a := newApp(t)
	in, out := stay(10, 2)
	body := strings.Replace(a.bookingBody(in, out, 2), a.villa.ID, "00000000-0000-0000-0000-000000000000", 1)
	code, resp := a.do(t, http.MethodPost, "/api/booking", body, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Villa not found", resp["error"])
}

func TestBookingMethodNotAllowed(t *testing.T) {
	a := newApp(t)
	code, body := a.do(t, http.MethodGet, "/api/booking", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, false, body["success"])

	code, _ = a.do(t, http.MethodGet, "/api/payment", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestPayment(t *testing.T) {
	a := newApp(t)
	code, body := a.do(t, http.MethodPost, "/api/payment", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Amount is required", body["error"])

	code, body = a.do(t, http.MethodPost, "/api/payment", `{"amount": 2400}`, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Regexp(t, `^pay_[0-9a-z]{13}$`, body["paymentId"])
	assert.Equal(t, 2400.0, body["amount"])
	assert.Equal(t, "completed", body["status"])
	_, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	assert.NoError(t, err)

	// the payment id can then be attached to a booking, which stays pending
	// and owns the transaction
	in, out := stay(20, 2)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(a.bookingBody(in, out, 2)), &m))
	m["payment_id"] = body["paymentId"]
	raw, _ := json.Marshal(m)
	code, resp := a.do(t, http.MethodPost, "/api/booking", string(raw), "")
	require.Equal(t, http.StatusCreated, code, resp)
	assert.Equal(t, model.BookingPending, resp["booking"].(map[string]any)["status"])
	assert.NotContains(t, resp, "transaction")
	linked, err := a.store.ListTransactions(context.Background(), resp["booking"].(map[string]any)["id"].(string))
	require.NoError(t, err)
	assert.Len(t, linked, 1)

	// and not to a second one
	in, out = stay(40, 2)
	require.NoError(t, json.Unmarshal([]byte(a.bookingBody(in, out, 2)), &m))
	m["payment_id"] = body["paymentId"]
	raw, _ = json.Marshal(m)
	code, _ = a.do(t, http.MethodPost, "/api/booking", string(raw), "")
	assert.Equal(t, http.StatusConflict, code)
}

func TestVillaEndpoints(t *testing.T) {
	a := newApp(t)
	code, body := a.do(t, http.MethodGet, "/api/villas", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["villas"], 1)

	code, body = a.do(t, http.MethodGet, "/api/villas/"+a.villa.ID, "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, a.villa.Name, body["villa"].(map[string]any)["name"])

	code, _ = a.do(t, http.MethodGet, "/api/villas/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, code)

	in, out := stay(5, 4)
	code, body = a.do(t, http.MethodGet, "/api/villas/"+a.villa.ID+"/quote?check_in="+in+"&check_out="+out, "", "")
	assert.Equal(t, http.StatusOK, code)
	quote := body["quote"].(map[string]any)
	assert.Equal(t, 4.0, quote["nights"])
	assert.Equal(t, 4*a.villa.Price, quote["total_amount"])

	code, body = a.do(t, http.MethodGet, "/api/villas/"+a.villa.ID+"/availability?check_in="+in+"&check_out="+out, "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["available"])

	code, body = a.do(t, http.MethodGet, "/api/villas/"+a.villa.ID+"/availability", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields: check_in, check_out", body["error"])
}

func TestAdmin(t *testing.T) {
	a := newApp(t)

	code, _ := a.do(t, http.MethodGet, "/api/admin/bookings", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodPost, "/api/admin/login", `{"email":"owner@villa.test","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := a.do(t, http.MethodPost, "/api/admin/login", `{"email":"Owner@Villa.test","password":"s3cret-pass"}`, "")
	require.Equal(t, http.StatusOK, code, body)
	token := body["access"].(map[string]any)["access_token"].(string)

	in, out := stay(10, 2)
	code, body = a.do(t, http.MethodPost, "/api/booking", a.bookingBody(in, out, 2), "")
	require.Equal(t, http.StatusCreated, code)
	id := body["booking"].(map[string]any)["id"].(string)

	code, body = a.do(t, http.MethodGet, "/api/admin/bookings?status=confirmed", "", token)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["bookings"], 1)

	code, body = a.do(t, http.MethodGet, "/api/admin/transactions?booking_id="+id, "", token)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["transactions"], 1)

	code, body = a.do(t, http.MethodPatch, "/api/admin/bookings/"+id, `{"status":"cancelled"}`, token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.BookingCancelled, body["booking"].(map[string]any)["status"])

	code, _ = a.do(t, http.MethodPatch, "/api/admin/bookings/"+id, `{"status":"confirmed"}`, token)
	assert.Equal(t, http.StatusConflict, code)

	code, body = a.do(t, http.MethodPatch, "/api/admin/bookings/"+id, `{"status":"lost"}`, token)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "status must be one of: pending, confirmed, cancelled", body["error"])

	// a token with another role is refused
	other, err := utils.NewAccessToken(jwtSecret, "guest@villa.test", "GUEST", 5)
	require.NoError(t, err)
	code, _ = a.do(t, http.MethodGet, "/api/admin/bookings", "", other.Token)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminLoginDisabled(t *testing.T) {
	e := router.New(zap.NewNop())
	router.RegisterAdmin(e, &handler.AdminHandler{Logger: zap.NewNop()}, "", middleware.NewTokenBucket(config.RateLimitConfig{}, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/bookings", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
