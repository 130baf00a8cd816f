package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/application/readcache"
	"github.com/jhoicas/retail-ledger/internal/application/report"
	"github.com/jhoicas/retail-ledger/internal/application/transaction"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/retail-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/retail-ledger/pkg/jwt"
)

type fakeRenderer struct{}

func (fakeRenderer) RenderBranchReport(_ context.Context, rep *entity.BranchReport) ([]byte, error) {
	return []byte("%PDF-fake " + rep.BranchID), nil
}

func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	s := memory.NewStore()
	s.AddBranch(entity.Branch{ID: "b1", Name: "Centro"})
	s.AddBranch(entity.Branch{ID: "b2", Name: "Norte"})
	s.AddProduct(entity.Product{ID: "p1", Name: "Arroz", UnitOfSale: entity.UnitPiece,
		CostPerUnit: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(15)})

	c := readcache.New(cache.NewMemoryStore(), readcache.DefaultTTL(), nil, nil)
	l := ledger.NewLedger(s.Movements(), s, ledger.DefaultConfig())
	agg := report.NewAggregator(s.Branches(), s.Transactions(), s.Expenses())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Transactions:   transaction.NewProcessor(s.Branches(), s.Products(), s.Transactions(), l, s, c, nil, nil),
		Reads:          inventory.NewReadService(s.Branches(), s.Products(), l, agg, c),
		ReportRenderer: fakeRenderer{},
		ReportLocation: time.UTC,
		JWTSecret:      testJWTSecret,
	})
	return app
}

func bearer(t *testing.T, role, branchID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, branchID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func txBody(typ string, qty int64) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{Type: typ, BranchID: "b1",
		Items: []dto.TransactionItemRequest{{ProductID: "p1", Quantity: qty}}}
}

func TestTransactions_FlujoCompleto(t *testing.T) {
	app := buildAPI(t)
	cashier := bearer(t, apphttp.RoleCashier, "b1")

	resp := call(t, app, http.MethodPost, "/api/transactions", cashier, txBody("purchase", 20))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/transactions", cashier, txBody("SALE", 5))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.TransactionResponse](t, resp)
	assert.Equal(t, "SALE", sale.Type)
	assert.Equal(t, testUserID, sale.CreatedBy)
	assert.True(t, sale.Profit.Equal(decimal.NewFromInt(25)))

	resp = call(t, app, http.MethodPost, "/api/transactions", cashier, txBody("SALE", 20))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	resp = call(t, app, http.MethodGet, "/api/stock/products/p1/branches/b1", cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stock := decode[dto.StockResponse](t, resp)
	assert.Equal(t, int64(15), stock.Quantity)

	resp = call(t, app, http.MethodGet, "/api/transactions/"+sale.ID, cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.TransactionResponse](t, resp)
	assert.Equal(t, sale.ID, got.ID)

	resp = call(t, app, http.MethodGet, "/api/stock/movements?limit=1", cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs := decode[dto.StockMovementListResponse](t, resp)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, 1, movs.Limit)
	assert.Equal(t, int64(15), movs.Items[0].Balance)

	resp = call(t, app, http.MethodGet, "/api/stock/movements/products/p1", cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs = decode[dto.StockMovementListResponse](t, resp)
	assert.Len(t, movs.Items, 2)
	assert.Equal(t, 10, movs.Limit)
}

func TestTransactions_ErroresDeEntrada(t *testing.T) {
	app := buildAPI(t)
	cashier := bearer(t, apphttp.RoleCashier, "")

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"tipo desconocido", txBody("TRANSFER", 1), http.StatusBadRequest},
		{"cantidad cero", txBody("PURCHASE", 0), http.StatusBadRequest},
		{"producto desconocido", dto.CreateTransactionRequest{Type: "PURCHASE", BranchID: "b1",
			Items: []dto.TransactionItemRequest{{ProductID: "p9", Quantity: 1}}}, http.StatusNotFound},
		{"sucursal desconocida", dto.CreateTransactionRequest{Type: "PURCHASE", BranchID: "b9",
			Items: []dto.TransactionItemRequest{{ProductID: "p1", Quantity: 1}}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/transactions", cashier, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestTransactions_SucursalAjenaProhibida(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/transactions", bearer(t, apphttp.RoleCashier, "b2"), txBody("PURCHASE", 1))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTransactions_ManagerNoAplica(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/transactions", bearer(t, apphttp.RoleManager, ""), txBody("PURCHASE", 1))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReports(t *testing.T) {
	app := buildAPI(t)
	cashier := bearer(t, apphttp.RoleCashier, "b1")
	manager := bearer(t, apphttp.RoleManager, "")
	for _, body := range []dto.CreateTransactionRequest{txBody("PURCHASE", 10), txBody("SALE", 4)} {
		resp := call(t, app, http.MethodPost, "/api/transactions", cashier, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	to := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")

	resp := call(t, app, http.MethodGet, "/api/reports/branches/b1?from="+from+"&to="+to+"&opex=5&target=50", manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[dto.BranchReportResponse](t, resp)
	assert.True(t, rep.Revenue.Equal(decimal.NewFromInt(60)))
	assert.True(t, rep.GrossProfit.Equal(decimal.NewFromInt(20)))
	assert.True(t, rep.NetProfit.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, rep.RemainingRequiredProfit)
	assert.True(t, rep.RemainingRequiredProfit.Equal(decimal.NewFromInt(35)))

	resp = call(t, app, http.MethodGet, "/api/reports/branches/b1", cashier, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "cashier no ve reportes")

	resp = call(t, app, http.MethodGet, "/api/reports/branches/b1?month=13", manager, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/reports/branches/b1?opex=abc", manager, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/reports/branches/b1/pdf", manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestMovements_AlcancePorSucursal(t *testing.T) {
	app := buildAPI(t)
	admin := bearer(t, apphttp.RoleAdmin, "b1")
	cashierB2 := bearer(t, apphttp.RoleCashier, "b2")

	b1 := txBody("PURCHASE", 7)
	b2 := txBody("PURCHASE", 3)
	b2.BranchID = "b2"
	for _, body := range []dto.CreateTransactionRequest{b1, b2} {
		resp := call(t, app, http.MethodPost, "/api/transactions", admin, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := call(t, app, http.MethodGet, "/api/stock/movements", cashierB2, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs := decode[dto.StockMovementListResponse](t, resp)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, "b2", movs.Items[0].BranchID)
	assert.Equal(t, int64(3), movs.Items[0].Delta)

	resp = call(t, app, http.MethodGet, "/api/stock/movements?branch_id=b1", cashierB2, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/stock/movements/products/p1", cashierB2, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs = decode[dto.StockMovementListResponse](t, resp)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, "b2", movs.Items[0].BranchID)

	// admin ve todas las sucursales aunque su token traiga una
	resp = call(t, app, http.MethodGet, "/api/stock/movements", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.StockMovementListResponse](t, resp).Items, 2)

	resp = call(t, app, http.MethodGet, "/api/stock/movements/products/p1", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.StockMovementListResponse](t, resp).Items, 2)

	resp = call(t, app, http.MethodGet, "/api/stock/movements?branch_id=b1", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs = decode[dto.StockMovementListResponse](t, resp)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, "b1", movs.Items[0].BranchID)
}
