package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/inventory"
	"github.com/unipress/publishing/internal/database/production"
	"github.com/unipress/publishing/internal/database/reports"
	"github.com/unipress/publishing/internal/database/royalties"
	"github.com/unipress/publishing/internal/database/sales"
	"github.com/unipress/publishing/internal/database/search"
)

// --- fakes ---

type fakeSales struct {
	filter sales.ListFilter
	page   database.PageRequest
	err    error
}

func (f *fakeSales) List(_ context.Context, filter sales.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	f.filter, f.page = filter, page
	return []database.Row{{"id": int64(1), "formatted_amount": "1,250.00"}}, page.Paginate(1), f.err
}

func (f *fakeSales) Summary(context.Context, sales.ListFilter) (sales.Summary, error) {
	return sales.Summary{TotalTransactions: 1, TotalRevenue: 1250}, nil
}

func (f *fakeSales) RecentSummary(context.Context) (sales.RecentSummary, error) {
	return sales.RecentSummary{TotalOrders: 4, PaidRevenue: 80}, nil
}

type fakeInventory struct {
	filter inventory.ListFilter
}

func (f *fakeInventory) List(_ context.Context, filter inventory.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	f.filter = filter
	return []database.Row{{"id": int64(2), "stock_status": "low_stock"}}, page.Paginate(1), nil
}

func (f *fakeInventory) Summary(context.Context) (inventory.Summary, error) {
	return inventory.Summary{TotalItems: 1, LowStockItems: 1}, nil
}

type fakeRoyalties struct {
	filter royalties.ListFilter
}

func (f *fakeRoyalties) List(_ context.Context, filter royalties.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	f.filter = filter
	return []database.Row{}, page.Paginate(0), nil
}

type fakeProduction struct {
	filter production.ListFilter
}

func (f *fakeProduction) List(_ context.Context, filter production.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	f.filter = filter
	return []database.Row{{"id": int64(5), "stage": filter.Stage}}, page.Paginate(1), nil
}

type fakeReports struct {
	filter reports.FinancialFilter
}

func (f *fakeReports) Financial(_ context.Context, filter reports.FinancialFilter) (*reports.Financial, error) {
	f.filter = filter
	return &reports.Financial{
		MonthlyRevenue:   []database.Row{{"period": "2026-09", "revenue": 900.0}},
		TopBooks:         []database.Row{},
		PendingRoyalties: []database.Row{},
	}, nil
}

type fakeSearch struct {
	term string
}

func (f *fakeSearch) Filters(context.Context) (*search.Filters, error) {
	return &search.Filters{Faculties: []string{"Law"}, Categories: []string{}, Authors: []database.Row{}}, nil
}

func (f *fakeSearch) Search(_ context.Context, term string) ([]database.Row, error) {
	f.term = term
	return []database.Row{{"type": "book", "id": int64(3)}}, nil
}

type staffRegistrar interface {
	RegisterStaffRoutes(gin.IRouter)
}

func staffRouter(controllers ...staffRegistrar) *gin.Engine {
	router := gin.New()
	staff := router.Group("/api")
	for _, c := range controllers {
		c.RegisterStaffRoutes(staff)
	}
	return router
}

// --- sales and inventory ---

func TestSalesController(t *testing.T) {
	t.Run("admin report carries the filtered summary", func(t *testing.T) {
		store := &fakeSales{}
		router := adminRouter(NewSalesController(store))

		w := serve(router, http.MethodGet, "/api/admin/sales?start_date=2026-01-01&format=ebook&customer_type=library", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, sales.ListFilter{StartDate: "2026-01-01", Format: "ebook", CustomerType: "library"}, store.filter)

		body := decode(t, w)
		assert.Len(t, body["sales"], 1)
		assert.Equal(t, float64(1250), body["summary"].(map[string]any)["total_revenue"])
		assert.NotContains(t, body, "pagination")
	})

	t.Run("staff ledger carries the 30 day summary", func(t *testing.T) {
		store := &fakeSales{}
		router := staffRouter(NewSalesController(store))

		w := serve(router, http.MethodGet, "/api/sales?payment_status=paid&page=2&limit=10", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "paid", store.filter.PaymentStatus)
		assert.Equal(t, database.PageRequest{Page: 2, Limit: 10}, store.page)

		body := decode(t, w)
		assert.Equal(t, float64(4), body["summary"].(map[string]any)["total_orders"])
		assert.Contains(t, body, "pagination")
	})

	t.Run("store failure", func(t *testing.T) {
		router := adminRouter(NewSalesController(&fakeSales{err: errors.New("timeout")}))
		w := serve(router, http.MethodGet, "/api/admin/sales", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to load sales data", decode(t, w)["message"])
	})
}

func TestInventoryController(t *testing.T) {
	store := &fakeInventory{}

	w := serve(adminRouter(NewInventoryController(store)), http.MethodGet, "/api/admin/inventory?low_stock=true&category=Law", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, inventory.ListFilter{LowStock: true, Category: "Law"}, store.filter)
	assert.Len(t, decode(t, w)["inventory"], 1)

	w = serve(staffRouter(NewInventoryController(store)), http.MethodGet, "/api/inventory?format=ebook", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, inventory.ListFilter{Format: "ebook"}, store.filter)
	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(1), body["summary"].(map[string]any)["low_stock_items"])

	w = serve(staffRouter(NewInventoryController(store)), http.MethodGet, "/api/inventory?low_stock=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- royalties, production, training ---

func TestRoyaltiesAndProductionControllers(t *testing.T) {
	royaltyStore := &fakeRoyalties{}
	productionStore := &fakeProduction{}
	router := staffRouter(NewRoyaltiesController(royaltyStore), NewProductionController(productionStore))

	w := serve(router, http.MethodGet, "/api/royalties?status=pending&author_id=4&period_start=2026-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, royalties.ListFilter{Status: "pending", AuthorID: 4, PeriodStart: "2026-01-01"}, royaltyStore.filter)

	w = serve(router, http.MethodGet, "/api/production?stage=proofreading&book_id=9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, production.ListFilter{Stage: "proofreading", BookID: 9}, productionStore.filter)
	assert.Equal(t, "proofreading", decode(t, w)["data"].([]any)[0].(map[string]any)["stage"])

	w = serve(router, http.MethodGet, "/api/royalties?author_id=ada", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- reports, filters, search ---

func TestReportsController(t *testing.T) {
	reportStore := &fakeReports{}
	searchStore := &fakeSearch{}
	router := adminRouter(NewReportsController(reportStore, searchStore))

	w := serve(router, http.MethodGet, "/api/admin/reports/financial?year=2026&month=9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reports.FinancialFilter{Year: 2026, Month: 9}, reportStore.filter)
	report := decode(t, w)["report"].(map[string]any)
	assert.Equal(t, "2026-09", report["monthly_revenue"].([]any)[0].(map[string]any)["period"])

	w = serve(router, http.MethodGet, "/api/admin/reports/financial?month=13", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid report period", decode(t, w)["message"])

	w = serve(router, http.MethodGet, "/api/admin/filters", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Law"}, decode(t, w)["filters"].(map[string]any)["faculties"])

	w = serve(router, http.MethodGet, "/api/admin/search?q=soil", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "soil", searchStore.term)
	assert.Len(t, decode(t, w)["results"], 1)
}
