package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fanzvault/internal/metrics"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories/cache"
	"fanzvault/internal/repositories/memory"
	"fanzvault/internal/services/credit"
	"fanzvault/internal/services/revenue"
	"fanzvault/internal/services/token"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "routes-test-secret"

type RoutesTestSuite struct {
	suite.Suite
	app        *fiber.App
	coord      *transaction.Coordinator
	wallets    wallet.Service
	serviceJWT string
	adminJWT   string
}

func TestRoutes(t *testing.T) {
	suite.Run(t, new(RoutesTestSuite))
}

func (s *RoutesTestSuite) SetupTest() {
	store := memory.New()
	balances := cache.NewLocalCache()
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg)

	s.coord = transaction.NewCoordinator(store, nil, balances, transaction.Config{}, collector, nil)
	s.wallets = wallet.NewService(store, balances, wallet.Config{}, collector, nil)

	s.app = fiber.New()
	SetupRoutes(s.app, Dependencies{
		Store:       store,
		Wallets:     s.wallets,
		Coordinator: s.coord,
		Credit:      credit.NewService(store, s.coord, nil),
		Tokens:      token.NewService(store, s.coord, token.Config{}, nil),
		Revenue:     revenue.NewService(store, s.coord, nil),
		JWTSecret:   testSecret,
		Gatherer:    reg,
	})

	s.serviceJWT = s.token("billing-svc", models.RoleService)
	s.adminJWT = s.token("ops-admin", models.RoleAdmin)
}

func (s *RoutesTestSuite) token(sub, role string) string {
	claims := models.CallerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	s.Require().NoError(err)
	return signed
}

// do sends a request and decodes the JSON response into out when non-nil.
func (s *RoutesTestSuite) do(method, path, bearer string, body interface{}, out interface{}) int {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *RoutesTestSuite) createWallet(userID string) models.Wallet {
	var w models.Wallet
	status := s.do("POST", "/api/v1/wallets", s.serviceJWT, map[string]string{
		"user_id": userID, "wallet_type": "standard",
	}, &w)
	s.Require().Equal(http.StatusOK, status)
	return w
}

func (s *RoutesTestSuite) deposit(w models.Wallet, amount int64) {
	status := s.do("POST", "/api/v1/transactions", s.serviceJWT, map[string]interface{}{
		"user_id": w.UserID, "wallet_id": w.ID, "direction": "credit",
		"category": "deposit", "amount": amount,
	}, nil)
	s.Require().Equal(http.StatusCreated, status)
}

func (s *RoutesTestSuite) TestRequiresToken() {
	s.Equal(http.StatusUnauthorized, s.do("GET", "/api/v1/wallets/wlt_x", "", nil, nil))
}

func (s *RoutesTestSuite) TestHealthAndMetrics() {
	var body map[string]interface{}
	s.Equal(http.StatusOK, s.do("GET", "/health", "", nil, &body))
	s.Equal("ok", body["status"])

	s.deposit(s.createWallet("u1"), 100)
	resp, err := s.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	s.Require().NoError(err)
	raw, _ := io.ReadAll(resp.Body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(raw), "fanzvault_")
}

func (s *RoutesTestSuite) TestWalletLifecycle() {
	w := s.createWallet("u1")
	s.True(len(w.ID) > 4)

	again := s.createWallet("u1")
	s.Equal(w.ID, again.ID)

	s.deposit(w, 10000)

	var b models.Balance
	s.Equal(http.StatusOK, s.do("GET", "/api/v1/wallets/"+w.ID+"/balance", s.serviceJWT, nil, &b))
	s.Equal(int64(10000), b.Available)
	s.Equal(int64(10000), b.Total)

	var list struct {
		Wallets []models.Wallet `json:"wallets"`
	}
	s.Equal(http.StatusOK, s.do("GET", "/api/v1/users/u1/wallets", s.serviceJWT, nil, &list))
	s.Len(list.Wallets, 1)

	var eb errorBody
	s.Equal(http.StatusNotFound, s.do("GET", "/api/v1/wallets/wlt_missing", s.serviceJWT, nil, &eb))
	s.Equal("NOT_FOUND", eb.Error.Code)
}

func (s *RoutesTestSuite) TestValidationErrors() {
	var eb errorBody
	s.Equal(http.StatusBadRequest, s.do("POST", "/api/v1/wallets", s.serviceJWT, map[string]string{"user_id": "u1"}, &eb))
	s.Equal("INVALID_INPUT", eb.Error.Code)

	w := s.createWallet("u1")
	s.Equal(http.StatusBadRequest, s.do("POST", "/api/v1/transactions", s.serviceJWT, map[string]interface{}{
		"user_id": "u1", "wallet_id": w.ID, "direction": "credit", "category": "deposit", "amount": 0,
	}, &eb))
	s.Equal("INVALID_AMOUNT", eb.Error.Code)

	s.Equal(http.StatusBadRequest, s.do("POST", "/api/v1/transactions", s.serviceJWT, map[string]interface{}{
		"transaction_id": "not-a-uuid", "user_id": "u1", "wallet_id": w.ID,
		"direction": "credit", "category": "deposit", "amount": 5,
	}, &eb))
	s.Equal("INVALID_INPUT", eb.Error.Code)

	s.Equal(http.StatusBadRequest, s.do("GET", "/api/v1/transactions", s.serviceJWT, nil, &eb))
}

func (s *RoutesTestSuite) TestInsufficientFundsIsConflict() {
	w := s.createWallet("u1")
	var eb errorBody
	status := s.do("POST", "/api/v1/transactions", s.serviceJWT, map[string]interface{}{
		"user_id": "u1", "wallet_id": w.ID, "direction": "debit", "category": "withdrawal", "amount": 1,
	}, &eb)
	s.Equal(http.StatusConflict, status)
	s.Equal("INSUFFICIENT_FUNDS", eb.Error.Code)
}

func (s *RoutesTestSuite) TestTransferAndHistory() {
	a := s.createWallet("alice")
	b := s.createWallet("bob")
	s.deposit(a, 10000)

	var res transaction.TransferResult
	status := s.do("POST", "/api/v1/transfers", s.serviceJWT, map[string]interface{}{
		"from_user_id": "alice", "from_wallet_id": a.ID,
		"to_user_id": "bob", "to_wallet_id": b.ID, "amount": 2500,
	}, &res)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal(int64(7500), res.Debit.BalanceAfter)
	s.Equal(int64(2500), res.Credit.BalanceAfter)

	var page struct {
		Data []struct {
			models.LedgerEntry
			SignedAmount int64 `json:"signed_amount"`
		} `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	s.Equal(http.StatusOK, s.do("GET", "/api/v1/transactions?wallet_id="+a.ID+"&limit=1", s.serviceJWT, nil, &page))
	s.Equal(int64(2), page.Pagination.Total)
	s.Require().Len(page.Data, 1)
	s.Equal(int64(-2500), page.Data[0].SignedAmount)
}

func (s *RoutesTestSuite) TestAdminRoutes() {
	w := s.createWallet("u1")
	body := map[string]string{"status": "frozen"}

	s.Equal(http.StatusForbidden, s.do("POST", "/api/v1/wallets/"+w.ID+"/status", s.serviceJWT, body, nil))

	var frozen models.Wallet
	s.Equal(http.StatusOK, s.do("POST", "/api/v1/wallets/"+w.ID+"/status", s.adminJWT, body, &frozen))
	s.Equal(models.WalletStatusFrozen, frozen.Status)
}

func (s *RoutesTestSuite) TestCreditLineFlow() {
	var cl models.CreditLine
	status := s.do("POST", "/api/v1/credit-lines", s.serviceJWT, map[string]interface{}{
		"user_id": "u1", "credit_limit": 50000, "interest_rate_bps": 500,
		"trust_score": 700, "risk_tier": "low",
	}, &cl)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal(models.CreditLineStatusPending, cl.Status)

	draw := map[string]interface{}{"user_id": "u1", "amount": 20000}
	var eb errorBody
	s.Equal(http.StatusConflict, s.do("POST", "/api/v1/credit-lines/"+cl.ID+"/draw", s.serviceJWT, draw, &eb))
	s.Equal("INVALID_STATE", eb.Error.Code)

	var approved models.CreditLine
	s.Equal(http.StatusOK, s.do("POST", "/api/v1/credit-lines/"+cl.ID+"/approve", s.adminJWT, nil, &approved))
	s.Equal("ops-admin", approved.ApprovedBy)

	var res credit.DrawResult
	s.Equal(http.StatusCreated, s.do("POST", "/api/v1/credit-lines/"+cl.ID+"/draw", s.serviceJWT, draw, &res))
	s.Equal(int64(30000), res.CreditLine.AvailableCredit)

	s.Equal(http.StatusConflict, s.do("POST", "/api/v1/credit-lines/"+cl.ID+"/draw", s.serviceJWT,
		map[string]interface{}{"user_id": "u1", "amount": 40000}, &eb))
	s.Equal("CREDIT_EXCEEDED", eb.Error.Code)
}

func (s *RoutesTestSuite) TestTokenFlow() {
	w := s.createWallet("u1")
	s.deposit(w, 10000)

	var res token.PurchaseResult
	status := s.do("POST", "/api/v1/tokens/purchase", s.serviceJWT, map[string]interface{}{
		"user_id": "u1", "token_type": "fanzcoin", "token_amount": 50,
	}, &res)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal(int64(5000), res.Cost)
	s.Equal(int64(50), res.Balance.Balance)

	mint := map[string]interface{}{"user_id": "u1", "token_type": "loyalty", "amount": 10}
	s.Equal(http.StatusForbidden, s.do("POST", "/api/v1/tokens/mint", s.serviceJWT, mint, nil))
	s.Equal(http.StatusOK, s.do("POST", "/api/v1/tokens/mint", s.adminJWT, mint, nil))

	var eb errorBody
	s.Equal(http.StatusConflict, s.do("POST", "/api/v1/tokens/burn", s.serviceJWT, map[string]interface{}{
		"user_id": "u1", "token_type": "loyalty", "amount": 11,
	}, &eb))
	s.Equal("INSUFFICIENT_BALANCE", eb.Error.Code)

	var list struct {
		Tokens []models.TokenBalance `json:"tokens"`
	}
	s.Equal(http.StatusOK, s.do("GET", "/api/v1/users/u1/tokens", s.serviceJWT, nil, &list))
	s.Len(list.Tokens, 2)
}

func (s *RoutesTestSuite) TestRevenueShare() {
	var rs models.RevenueShare
	status := s.do("POST", "/api/v1/revenue-shares", s.serviceJWT, map[string]interface{}{
		"reference_type": "subscription", "reference_id": "sub-1", "split_type": "collaborative",
		"total_amount": 10000,
		"splits": []map[string]interface{}{
			{"user_id": "creator", "percentage": 70},
			{"user_id": "platform", "percentage": 30},
		},
	}, &rs)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal(models.RevenueShareStatusCompleted, rs.Status)

	var got models.RevenueShare
	s.Equal(http.StatusOK, s.do("GET", "/api/v1/revenue-shares/"+rs.ID, s.serviceJWT, nil, &got))
	s.Len(got.Splits, 2)

	var eb errorBody
	s.Equal(http.StatusUnprocessableEntity, s.do("POST", "/api/v1/revenue-shares", s.serviceJWT, map[string]interface{}{
		"reference_type": "subscription", "reference_id": "sub-2", "split_type": "collaborative",
		"total_amount": 10000,
		"splits": []map[string]interface{}{{"user_id": "creator", "percentage": 90}},
	}, &eb))
	s.Equal("INVALID_SPLIT", eb.Error.Code)
}

func TestMetricsDisabledWithoutGatherer(t *testing.T) {
	store := memory.New()
	app := fiber.New()
	SetupRoutes(app, Dependencies{Store: store, JWTSecret: testSecret})
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
