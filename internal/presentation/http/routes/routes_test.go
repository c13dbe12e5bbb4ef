package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/config"
	"github.com/sangkips/tillbook-api/internal/infrastructure/database"
	"github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/internal/presentation/http/handler"
	"github.com/sangkips/tillbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/tillbook-api/internal/testutil"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, database.SeedDefaultData(db, zap.NewNop()))

	jwt := utils.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	tx := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	conversionRepo := repository.NewUnitConversionRepository(db)
	historyRepo := repository.NewInventoryHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	resolver := service.NewUnitConversionResolver(conversionRepo, inventoryRepo, historyRepo)
	ledger := service.NewInventoryLedger(inventoryRepo, historyRepo, notificationRepo)
	threshold := decimal.RequireFromString("0.1")
	queries := service.NewReceiptQueryService(receiptRepo, debtRepo, analyticsRepo, threshold)

	h := &Handlers{
		Auth:   handler.NewAuthHandler(service.NewAuthService(tx, userRepo, repository.NewRoleRepository(db), tenantRepo, jwt)),
		Tenant: handler.NewTenantHandler(service.NewTenantService(tx, tenantRepo, userRepo)),
		Receipt: handler.NewReceiptHandler(
			service.NewReceiptService(tx, receiptRepo, customerRepo, tenantRepo, inventoryRepo, debtRepo, resolver, ledger,
				service.ReceiptOptions{UnpaidThreshold: threshold}, nil),
			queries,
		),
		Debt:         handler.NewDebtHandler(service.NewDebtService(tx, debtRepo, receiptRepo, customerRepo, decimal.RequireFromString("0.01")), queries),
		Analytics:    handler.NewAnalyticsHandler(queries),
		Inventory:    handler.NewInventoryHandler(service.NewInventoryService(tx, inventoryRepo, conversionRepo, historyRepo, analyticsRepo, ledger)),
		Customer:     handler.NewCustomerHandler(service.NewCustomerService(customerRepo)),
		Notification: handler.NewNotificationHandler(service.NewNotificationService(notificationRepo)),
	}

	router := Setup(h, &Deps{
		JWTManager:      jwt,
		Cfg:             &config.Config{App: config.AppConfig{Name: "tillbook-test"}},
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
		Logger:          zap.NewNop(),
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type session struct {
	Token    string
	TenantID string
}

func (s *testServer) register(email, business string) session {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"first_name":       "Amina",
		"email":            email,
		"password":         "correct-horse",
		"password_confirm": "correct-horse",
		"business_name":    business,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	data := decode[struct {
		AccessToken string `json:"access_token"`
		Tenant      struct {
			ID string `json:"id"`
		} `json:"tenant"`
	}](s.t, env.Data)
	return session{Token: data.AccessToken, TenantID: data.Tenant.ID}
}

type itemView struct {
	ID     string          `json:"id"`
	Onhand decimal.Decimal `json:"onhand"`
}

// stockShop registers a shop with the customer "Acme - John" and 10 kg of sugar at 100
func (s *testServer) stockShop(email string) (session, itemView) {
	s.t.Helper()
	sess := s.register(email, "Corner Shop")

	w, _ := s.do(http.MethodPost, "/api/v1/customers", sess.Token, gin.H{"company": "Acme", "name": "John"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(http.MethodPost, "/api/v1/inventory", sess.Token, gin.H{
		"name":          "Sugar",
		"base_unit":     "kg",
		"cost_price":    80,
		"sales_price":   100,
		"opening_stock": 10,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return sess, decode[itemView](s.t, env.Data)
}

type receiptCreated struct {
	Receipt struct {
		ID      string          `json:"id"`
		Total   decimal.Decimal `json:"total"`
		Balance decimal.Decimal `json:"balance"`
	} `json:"receipt"`
	Debt *struct {
		ID     string          `json:"id"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"debt"`
}

func sale(qty string, paid int) gin.H {
	return gin.H{
		"customer":    "Acme - John",
		"products":    []gin.H{{"name": "Sugar", "quantity": qty}},
		"amount_paid": paid,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/v1/receipts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodGet, "/api/v1/receipts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateReceipt_EmptyProductsIs400(t *testing.T) {
	s := newTestServer(t)
	sess, _ := s.stockShop("amina@example.com")

	w, env := s.do(http.MethodPost, "/api/v1/receipts", sess.Token, gin.H{
		"customer": gin.H{"company": "Acme", "name": "John"},
		"products": []gin.H{},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "products", env.Errors[0].Field)
}

func TestCreateReceipt_NullCustomerIsFieldError(t *testing.T) {
	s := newTestServer(t)
	sess, _ := s.stockShop("amina@example.com")

	w, env := s.do(http.MethodPost, "/api/v1/receipts", sess.Token, gin.H{
		"customer": nil,
		"products": []gin.H{{"name": "Sugar", "quantity": 1}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "customer", env.Errors[0].Field)
	assert.Equal(t, "is required", env.Errors[0].Message)
}

func TestCreateReceipt_UnknownProductCarriesReason(t *testing.T) {
	s := newTestServer(t)
	sess, _ := s.stockShop("amina@example.com")

	w, env := s.do(http.MethodPost, "/api/v1/receipts", sess.Token, gin.H{
		"customer": "Acme - John",
		"products": []gin.H{{"name": "Flour", "quantity": 1}},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product_not_found", env.Reason)
}

func TestCreateReceipt_IdempotentRetry(t *testing.T) {
	s := newTestServer(t)
	sess, item := s.stockShop("amina@example.com")

	w, env := s.do(http.MethodPost, "/api/v1/receipts", sess.Token, sale("2", 50), "Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[receiptCreated](t, env.Data)
	assert.True(t, created.Receipt.Total.Equal(decimal.NewFromInt(200)))
	require.NotNil(t, created.Debt)
	assert.True(t, created.Debt.Amount.Equal(decimal.NewFromInt(150)))

	replay, replayEnv := s.do(http.MethodPost, "/api/v1/receipts", sess.Token, sale("2", 50), "Idempotency-Key", "sale-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, created.Receipt.ID, decode[receiptCreated](t, replayEnv.Data).Receipt.ID)

	w, env = s.do(http.MethodGet, "/api/v1/inventory/"+item.ID, sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[itemView](t, env.Data).Onhand.Equal(decimal.NewFromInt(8)), "stock moved once")

	w, _ = s.do(http.MethodPost, "/api/v1/receipts", sess.Token, sale("3", 50), "Idempotency-Key", "sale-1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReceiptLifecycle(t *testing.T) {
	s := newTestServer(t)
	sess, item := s.stockShop("amina@example.com")

	_, env := s.do(http.MethodPost, "/api/v1/receipts", sess.Token, sale("1", 100))
	id := decode[receiptCreated](t, env.Data).Receipt.ID

	w, env := s.do(http.MethodGet, "/api/v1/receipts", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	w, _ = s.do(http.MethodGet, "/api/v1/receipts?date=16-10-2026", sess.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPut, "/api/v1/receipts/"+id, sess.Token, gin.H{
		"customer":    "Acme - John",
		"products":    []gin.H{{"name": "Sugar", "quantity": 3}},
		"amount_paid": 300,
		"version":     1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodPut, "/api/v1/receipts/"+id, sess.Token, gin.H{
		"customer": "Acme - John",
		"products": []gin.H{{"name": "Sugar", "quantity": 2}},
		"version":  1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "concurrent_modification", env.Reason)

	w, _ = s.do(http.MethodPatch, "/api/v1/receipts/"+id+"/flag", sess.Token, gin.H{"flagged": true})
	require.Equal(t, http.StatusOK, w.Code)

	_, env = s.do(http.MethodGet, "/api/v1/inventory/"+item.ID, sess.Token, nil)
	assert.True(t, decode[itemView](t, env.Data).Onhand.Equal(decimal.NewFromInt(10)), "flagging returns the stock")

	w, _ = s.do(http.MethodPatch, "/api/v1/receipts/"+id+"/flag", sess.Token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/v1/receipts/"+id, sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/receipts/"+id, sess.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "receipt_not_found", env.Reason)

	w, _ = s.do(http.MethodGet, "/api/v1/receipts/not-a-uuid", sess.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMakePayment(t *testing.T) {
	s := newTestServer(t)
	sess, _ := s.stockShop("amina@example.com")

	_, env := s.do(http.MethodPost, "/api/v1/receipts", sess.Token, sale("1", 40))
	debt := decode[receiptCreated](t, env.Data).Debt
	require.NotNil(t, debt)
	path := "/api/v1/debts/" + debt.ID + "/payments"

	w, _ := s.do(http.MethodPost, path, sess.Token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "amount is required")

	w, _ = s.do(http.MethodPost, path, sess.Token, `{"amount": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/debts/not-a-uuid/payments", sess.Token, gin.H{"amount": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/debts", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	w, env = s.do(http.MethodPost, path, sess.Token, gin.H{"amount": 60, "payment_method": "M-Pesa"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[struct {
		Debt struct {
			Status  string          `json:"status"`
			Balance decimal.Decimal `json:"balance"`
		} `json:"debt"`
	}](t, env.Data)
	assert.Equal(t, "paid", paid.Debt.Status)
	assert.True(t, paid.Debt.Balance.IsZero())

	w, env = s.do(http.MethodGet, path, sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	w, env = s.do(http.MethodGet, "/api/v1/debts?show_all=true", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, env.Data))
}

func TestCashierPermissions(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.stockShop("amina@example.com")

	w, _ := s.do(http.MethodPost, "/api/v1/tenant/members", owner.Token, gin.H{
		"first_name": "Brian",
		"email":      "brian@example.com",
		"password":   "till-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "brian@example.com", "password": "till-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cashier := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, env.Data).AccessToken

	w, env = s.do(http.MethodPost, "/api/v1/receipts", cashier, sale("1", 100))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[receiptCreated](t, env.Data).Receipt.ID

	for _, tc := range []struct{ method, path string }{
		{http.MethodDelete, "/api/v1/receipts/" + id},
		{http.MethodGet, "/api/v1/analytics/sales"},
		{http.MethodPost, "/api/v1/inventory"},
		{http.MethodPut, "/api/v1/tenant"},
		{http.MethodGet, "/api/v1/tenant/members"},
	} {
		w, _ := s.do(tc.method, tc.path, cashier, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, tc.method+" "+tc.path)
	}

	w, _ = s.do(http.MethodGet, "/api/v1/inventory", cashier, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShopsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	first, _ := s.stockShop("amina@example.com")
	second, _ := s.stockShop("other@example.com")

	_, env := s.do(http.MethodPost, "/api/v1/receipts", first.Token, sale("1", 100))
	id := decode[receiptCreated](t, env.Data).Receipt.ID

	w, env := s.do(http.MethodGet, "/api/v1/receipts/"+id, second.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "receipt_not_found", env.Reason)

	w, env = s.do(http.MethodGet, "/api/v1/receipts", second.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, env.Data))
}

func TestSalesAnalytics(t *testing.T) {
	s := newTestServer(t)
	sess, _ := s.stockShop("amina@example.com")
	s.do(http.MethodPost, "/api/v1/receipts", sess.Token, sale("2", 200))

	w, env := s.do(http.MethodGet, "/api/v1/analytics/sales", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[struct {
		TotalSales       decimal.Decimal `json:"total_sales"`
		TransactionCount int             `json:"transaction_count"`
	}](t, env.Data)
	assert.Equal(t, 1, out.TransactionCount)
	assert.True(t, out.TotalSales.Equal(decimal.NewFromInt(200)))

	w, _ = s.do(http.MethodGet, "/api/v1/analytics/sales?start_date=2026-02-01&end_date=2026-01-01", sess.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	rl := middleware.NewTenantRateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1, EntryTTL: time.Minute})
	s := newTestServer(t)
	sess := s.register("amina@example.com", "Corner Shop")

	r := gin.New()
	r.GET("/ping", middleware.AuthMiddleware(utils.NewJWTManager("test-secret", 15*time.Minute, time.Hour)), rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}
