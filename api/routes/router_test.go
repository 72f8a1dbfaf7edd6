package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	addresssvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/address"
	cartsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/cart"
	checkoutsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/checkout"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/coupons"
	exchangesvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/exchanges"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/inventory"
	orderssvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/products"
	returnsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/returns"
	pkgAuth "github.com/Ch-Lokesh-21/truestyle-backend/pkg/auth"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/config"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

type routerFixture struct {
	handler   http.Handler
	db        *gorm.DB
	userID    uuid.UUID
	userToken string
	adminTok  string
	productID uuid.UUID
	addressID uuid.UUID
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.ProductStock{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Address{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.PendingGatewayOrder{},
		&models.Return{},
		&models.Exchange{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "router-test-secret", Issuer: "truestyle-test", ExpirationMinutes: 30}
	cfg.Gateway = config.GatewayConfig{KeyID: "key_test", Secret: "gateway-test-secret"}
	cfg.Checkout.PendingGatewayOrderTTL = 30 * time.Minute
	cfg.Returns.WindowDays = 7

	logg := logger.New(logger.Options{ServiceName: "routes-test"})
	tx := &testTxRunner{db: db}

	cartRepo := cartsvc.NewRepository(db)
	productsRepo := products.NewRepository(db)
	addressRepo := addresssvc.NewRepository(db)
	paymentsRepo := payments.NewRepository(db)
	pendingRepo := checkoutsvc.NewPendingRepository(db)
	ordersRepo := orderssvc.NewRepository(db)

	cartService, err := cartsvc.NewService(cartRepo, tx, productsRepo, inventory.NewReader(db))
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	gateway, err := payments.NewHMACGateway(cfg.Gateway)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	checkoutService, err := checkoutsvc.NewService(
		tx, cartRepo, productsRepo, addressRepo, paymentsRepo, pendingRepo,
		ordersRepo, coupons.NewDBValidator(db), gateway, nil,
		cfg.Checkout.PendingGatewayOrderTTL,
	)
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	ordersService, err := orderssvc.NewService(ordersRepo, tx, paymentsRepo, nil)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	returnsService, err := returnsvc.NewService(returnsvc.NewRepository(db), ordersRepo, paymentsRepo, tx, cfg.Returns.Window())
	if err != nil {
		t.Fatalf("returns service: %v", err)
	}
	exchangesService, err := exchangesvc.NewService(exchangesvc.NewRepository(db), ordersRepo, tx, cfg.Returns.Window())
	if err != nil {
		t.Fatalf("exchanges service: %v", err)
	}

	handler := NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		DBPinger:    stubPinger{},
		RedisPinger: stubPinger{},
		Cart:        cartService,
		Checkout:    checkoutService,
		Orders:      ordersService,
		Returns:     returnsService,
		Exchanges:   exchangesService,
		Addresses:   addressRepo,
	})

	userID := uuid.New()
	userToken := mintToken(t, cfg.JWT, userID, enums.ActorRoleCustomer)
	adminTok := mintToken(t, cfg.JWT, uuid.New(), enums.ActorRoleAdmin)

	productID := uuid.New()
	if err := db.Create(&models.Product{ID: productID, Name: "Oversized Tee", PriceCents: 79900}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := db.Create(&models.ProductStock{ProductID: productID, AvailableQty: 10}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	addressID := uuid.New()
	addr := &models.Address{
		ID: addressID, UserID: userID,
		Name: "Asha", Phone: "9999999999", Line1: "12 MG Road",
		City: "Bengaluru", State: "KA", PostalCode: "560001", Country: "IN",
	}
	if err := db.Create(addr).Error; err != nil {
		t.Fatalf("seed address: %v", err)
	}

	return &routerFixture{
		handler:   handler,
		db:        db,
		userID:    userID,
		userToken: userToken,
		adminTok:  adminTok,
		productID: productID,
		addressID: addressID,
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return envelope.Data
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cart", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/cart", "not-a-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestCartCheckoutFlow(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	addBody := fmt.Sprintf(`{"product_id":%q,"size":"M","quantity":2}`, f.productID)
	rec := f.do(t, http.MethodPost, "/api/v1/cart", f.userToken, addBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("cart add: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/v1/cart/availability", f.userToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("availability: expected 200, got %d", rec.Code)
	}
	snapshot := decodeData(t, rec)
	if snapshot["all_available"] != true {
		t.Fatalf("expected cart to be available: %v", snapshot)
	}
	if got := snapshot["total_amount_cents"].(float64); got != 159800 {
		t.Fatalf("expected total 159800, got %v", got)
	}

	codBody := fmt.Sprintf(`{"address_id":%q}`, f.addressID)
	rec = f.do(t, http.MethodPost, "/api/v1/orders/place-order-cod", f.userToken, codBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place cod: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	order := decodeData(t, rec)
	if got := order["total_cents"].(float64); got != 159800 {
		t.Fatalf("expected order total 159800, got %v", got)
	}
	if order["status"] != string(enums.OrderStatusPlaced) {
		t.Fatalf("expected placed, got %v", order["status"])
	}

	var stock models.ProductStock
	if err := f.db.First(&stock, "product_id = ?", f.productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if stock.AvailableQty != 8 {
		t.Fatalf("expected stock 8 after placement, got %d", stock.AvailableQty)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/orders/my", f.userToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list mine: expected 200, got %d", rec.Code)
	}
	list := decodeData(t, rec)
	orders, ok := list["orders"].([]any)
	if !ok || len(orders) != 1 {
		t.Fatalf("expected one order, got %v", list["orders"])
	}
}

func TestStatusUpdateRequiresAdmin(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	orderID := f.placeOrder(t)

	body := `{"status":"confirmed"}`
	rec := f.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", f.userToken, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer on admin surface: expected 403, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", f.adminTok, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin confirm: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	order := decodeData(t, rec)
	if order["status"] != string(enums.OrderStatusConfirmed) {
		t.Fatalf("expected confirmed, got %v", order["status"])
	}
}

func TestOwnerCancelRestoresStock(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	orderID := f.placeOrder(t)

	rec := f.do(t, http.MethodPut, "/api/v1/orders/my/"+orderID+"/status", f.userToken, `{"status":"cancelled"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner cancel: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	order := decodeData(t, rec)
	if order["status"] != string(enums.OrderStatusCancelled) {
		t.Fatalf("expected cancelled, got %v", order["status"])
	}

	var stock models.ProductStock
	if err := f.db.First(&stock, "product_id = ?", f.productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if stock.AvailableQty != 10 {
		t.Fatalf("expected stock restored to 10, got %d", stock.AvailableQty)
	}
}

func TestReturnDecisionRequiresAdmin(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/returns/"+uuid.NewString()+"/status", f.userToken, `{"status":"approved"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func (f *routerFixture) placeOrder(t *testing.T) string {
	t.Helper()
	addBody := fmt.Sprintf(`{"product_id":%q,"size":"M","quantity":2}`, f.productID)
	rec := f.do(t, http.MethodPost, "/api/v1/cart", f.userToken, addBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("cart add: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPost, "/api/v1/orders/place-order-cod", f.userToken, fmt.Sprintf(`{"address_id":%q}`, f.addressID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("place cod: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	order := decodeData(t, rec)
	id, ok := order["id"].(string)
	if !ok || id == "" {
		t.Fatalf("order id missing: %v", order)
	}
	return id
}
