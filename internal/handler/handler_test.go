package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/service"
	"deposito-pos/internal/workbook"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&m))
	return m
}

func TestFail_StatusMapping(t *testing.T) {
	saleID := uuid.New()
	cases := []struct {
		err    error
		status int
	}{
		{&service.ValidationError{Field: "items", Message: "estoque insuficiente"}, 400},
		{service.ErrNotFound, 404},
		{service.ErrConflict, 409},
		{service.ErrForbidden, 403},
		{service.ErrTooManyAttempts, 429},
		{service.ErrInvalidCredentials, 401},
		{service.ErrSessionExpired, 401},
		{service.ErrWrongPassword, 400},
		{&service.PartialStockError{SaleID: saleID, Number: "V000001", Err: errors.New("boom")}, 500},
		{errors.New("connection refused"), 500},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return fail(c, tc.err) })
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		body := decode(t, resp.Body)
		assert.NotEmpty(t, body["error"])
	}
}

func TestFail_PartialStockCarriesSale(t *testing.T) {
	saleID := uuid.New()
	failed := uuid.New()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return fail(c, &service.PartialStockError{SaleID: saleID, Number: "V000042", Failed: []uuid.UUID{failed}, Err: errors.New("timeout")})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body := decode(t, resp.Body)
	assert.Equal(t, saleID.String(), body["sale_id"])
	assert.Equal(t, "V000042", body["number"])
	assert.Equal(t, []any{failed.String()}, body["failed_products"])
}

// stubSales records the request it receives.
type stubSales struct {
	service.SaleService
	got    *service.RecordSaleRequest
	filter repository.SaleFilter
	err    error
}

func (s *stubSales) RecordSale(_ context.Context, req *service.RecordSaleRequest) (*model.Sale, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &model.Sale{Number: "V000001", PaymentMethod: req.PaymentMethod}, nil
}

func (s *stubSales) ListSales(_ context.Context, f repository.SaleFilter) ([]model.Sale, error) {
	s.filter = f
	return []model.Sale{}, nil
}

func (s *stubSales) Receipt(context.Context, uuid.UUID) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "Venda_V000001.pdf", nil
}

func TestCreateSale(t *testing.T) {
	stub := &stubSales{}
	h := NewSaleHandler(stub, time.UTC)
	app := fiber.New()
	app.Post("/sales", h.CreateSale)

	pid := uuid.New()
	body := `{"items":[{"product_id":"` + pid.String() + `","quantity":3,"unit_price":"3.50"}],"payment_method":"pix","customer_name":"Ana"}`
	req := httptest.NewRequest("POST", "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	require.NotNil(t, stub.got)
	require.Len(t, stub.got.Items, 1)
	assert.Equal(t, pid, stub.got.Items[0].ProductID)
	assert.Equal(t, 3, stub.got.Items[0].Quantity)
	assert.Equal(t, "3.5", stub.got.Items[0].UnitPrice.String())
	assert.Equal(t, model.PaymentPix, stub.got.PaymentMethod)
}

func TestCreateSale_Rejected(t *testing.T) {
	stub := &stubSales{err: &service.ValidationError{Field: "items", Message: "estoque insuficiente para Coca-Cola 2L"}}
	app := fiber.New()
	app.Post("/sales", NewSaleHandler(stub, time.UTC).CreateSale)

	req := httptest.NewRequest("POST", "/sales", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "estoque insuficiente para Coca-Cola 2L", decode(t, resp.Body)["error"])
}

func TestGetSales_Filters(t *testing.T) {
	stub := &stubSales{}
	app := fiber.New()
	app.Get("/sales", NewSaleHandler(stub, time.UTC).GetSales)

	resp, err := app.Test(httptest.NewRequest("GET", "/sales?status=completed&start=2024-03-01&end=2024-03-31&search=ana", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, model.SaleCompleted, stub.filter.Status)
	assert.Equal(t, "ana", stub.filter.Search)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), stub.filter.From)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), stub.filter.To)

	for _, q := range []string{"status=lost", "start=01/03/2024", "seller_id=x"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/sales?"+q, nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode, q)
	}
}

func TestReceiptDownload(t *testing.T) {
	app := fiber.New()
	app.Get("/sales/:id/receipt", NewSaleHandler(&stubSales{}, time.UTC).Receipt)

	resp, err := app.Test(httptest.NewRequest("GET", "/sales/"+uuid.NewString()+"/receipt", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Venda_V000001.pdf")
}

type stubReports struct {
	service.ReportService
	kind       workbook.Kind
	start, end time.Time
}

func (s *stubReports) Summary(_ context.Context, start, end time.Time) (*service.ReportSummary, error) {
	s.start, s.end = start, end
	return &service.ReportSummary{}, nil
}

func (s *stubReports) Export(_ context.Context, kind workbook.Kind, start, end time.Time) ([]byte, string, error) {
	s.kind, s.start, s.end = kind, start, end
	return []byte("PK"), workbook.FileName(kind, end), nil
}

func TestReportExport(t *testing.T) {
	stub := &stubReports{}
	h := NewReportHandler(stub, time.UTC)
	h.now = func() time.Time { return time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC) }
	app := fiber.New()
	app.Get("/reports/export", h.Export)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/export?type=vendas&start=2024-03-01&end=2024-03-15", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, workbook.KindSales, stub.kind)
	assert.Equal(t, workbook.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Relatorio_vendas_2024-03-15.xlsx")

	resp, err = app.Test(httptest.NewRequest("GET", "/reports/export?type=mensal", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestReportSummary_DefaultsToCurrentMonth(t *testing.T) {
	stub := &stubReports{}
	h := NewReportHandler(stub, time.UTC)
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	app := fiber.New()
	app.Get("/reports/summary", h.GetSummary)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/summary", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), stub.start)
	assert.Equal(t, now, stub.end)

	resp, err = app.Test(httptest.NewRequest("GET", "/reports/summary?range=7d", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, now.AddDate(0, 0, -7), stub.start)

	resp, err = app.Test(httptest.NewRequest("GET", "/reports/summary?range=2w", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetRoles(t *testing.T) {
	app := fiber.New()
	app.Get("/roles", NewRoleHandler().GetRoles)

	resp, err := app.Test(httptest.NewRequest("GET", "/roles", nil))
	require.NoError(t, err)
	var roles []roleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roles))
	require.Len(t, roles, 2)
	assert.Equal(t, "Administrador", roles[0].Label)
	assert.Contains(t, roles[0].Privileges, model.PrivUserDelete)
	assert.NotContains(t, roles[1].Privileges, model.PrivUserDelete)
}
