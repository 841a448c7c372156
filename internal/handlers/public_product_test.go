package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"qancha/internal/models"
)

func publicRouter(products *fakeStore) http.Handler {
	r := testEngine()
	r.GET("/api/products", GetProducts(products, 12))
	r.GET("/api/products/:id", GetProduct(products))
	r.POST("/api/products/:id/views", IncrementViews(products))
	r.POST("/api/products/:id/forwards", IncrementForwards(products))
	r.GET("/api/product-types", GetProductTypes())
	return r
}

type listResponse struct {
	Data       []models.Product `json:"data"`
	Pagination struct {
		Page       int64 `json:"page"`
		Limit      int64 `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"totalPages"`
	} `json:"pagination"`
}

func TestGetProductsPaginates(t *testing.T) {
	seed := make([]models.Product, 0, 14)
	for i := 0; i < 14; i++ {
		seed = append(seed, models.Product{Name: fmt.Sprintf("Item %02d", i), LowestPrice: 1, HighestPrice: 2})
	}
	products := newFakeStore(seed...)

	rec := get(t, publicRouter(products), "/api/products?page=2", chromeUA)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, int64(2), resp.Pagination.Page)
	require.Equal(t, int64(12), resp.Pagination.Limit)
	require.Equal(t, int64(14), resp.Pagination.Total)
	require.Equal(t, int64(2), resp.Pagination.TotalPages)
}

func TestGetProductsFilters(t *testing.T) {
	products := newFakeStore(
		models.Product{Name: "iPhone 15", Type: models.TypeTechnology},
		models.Product{Name: "Olma", Type: models.TypeFood},
	)

	rec := get(t, publicRouter(products), "/api/products?type=technology&search=%20iphone%20", chromeUA)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.TypeTechnology, products.lastList.Type)
	require.Equal(t, "iphone", products.lastList.Search)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "iPhone 15", resp.Data[0].Name)
}

func TestGetProductsRejectsBadInput(t *testing.T) {
	router := publicRouter(newFakeStore())

	require.Equal(t, http.StatusBadRequest, get(t, router, "/api/products?type=Weapons", chromeUA).Code)
	require.Equal(t, http.StatusBadRequest, get(t, router, "/api/products?page=0", chromeUA).Code)
	require.Equal(t, http.StatusBadRequest, get(t, router, "/api/products?limit=abc", chromeUA).Code)
}

func TestGetProductsStoreFailure(t *testing.T) {
	products := newFakeStore()
	products.err = errStoreDown

	rec := get(t, publicRouter(products), "/api/products", chromeUA)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestGetProductHidesUnavailableSellerPhone(t *testing.T) {
	products := newFakeStore(
		models.Product{Name: "Hidden", PhoneNumber: "+998901112233"},
		models.Product{Name: "Shown", PhoneNumber: "+998904445566", IsSellerAvailable: true},
	)
	router := publicRouter(products)

	rec := get(t, router, "/api/products/"+products.order[0], chromeUA)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "+998901112233")

	rec = get(t, router, "/api/products/"+products.order[1], chromeUA)
	require.Contains(t, rec.Body.String(), "+998904445566")

	require.Equal(t, http.StatusNotFound, get(t, router, "/api/products/nope", chromeUA).Code)
}

func TestConcurrentViewIncrements(t *testing.T) {
	products := newFakeStore(models.Product{Name: "Popular", Views: 10})
	id := products.order[0]
	router := publicRouter(products)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/products/"+id+"/views", nil)
			router.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	require.Equal(t, int64(12), products.get(id).Views)
	require.Zero(t, products.get(id).Forwards)
}

func TestIncrementForwardsResponse(t *testing.T) {
	products := newFakeStore(models.Product{Name: "Shared", Forwards: 3})
	id := products.order[0]

	req := httptest.NewRequest(http.MethodPost, "/api/products/"+id+"/forwards", nil)
	rec := httptest.NewRecorder()
	publicRouter(products).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, fmt.Sprintf(`{"id":%q,"forwards":4}`, id), rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/products/65f000000000000000000000/forwards", nil)
	rec = httptest.NewRecorder()
	publicRouter(products).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductTypes(t *testing.T) {
	rec := get(t, publicRouter(newFakeStore()), "/api/product-types", chromeUA)
	require.Equal(t, http.StatusOK, rec.Code)

	var types []productTypeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	require.Len(t, types, 11)
	require.Equal(t, productTypeResponse{Value: "Boshqa", Label: "Other"}, types[10])
}
