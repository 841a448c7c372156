package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"qancha/internal/models"
)

func adminRouter(products *fakeStore, images *fakeImages) http.Handler {
	r := testEngine()
	r.GET("/admin/api/products", GetAdminProducts(products, 12))
	r.POST("/admin/api/products", CreateProduct(products, images))
	r.PUT("/admin/api/products/:id", UpdateProduct(products, images))
	r.DELETE("/admin/api/products/:id", DeleteProduct(products, images))
	return r
}

func sendJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sendMultipart(t *testing.T, h http.Handler, method, path string, fields map[string]string, imageName string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, _ = part.Write([]byte("fake image"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateProductJSON(t *testing.T) {
	products := newFakeStore()
	router := adminRouter(products, &fakeImages{})

	rec := sendJSON(t, router, http.MethodPost, "/admin/api/products", `{
		"name": "Samsung A55",
		"lowestPrice": "4,200,000",
		"highestPrice": 4800000,
		"type": "Technology",
		"isSellerAvailable": true,
		"phoneNumber": "+998901234567"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, 4200000.0, created.LowestPrice)
	require.Equal(t, models.TypeTechnology, created.Type)
	require.Zero(t, created.Views)
	require.Len(t, products.products, 1)
}

func TestCreateProductValidation(t *testing.T) {
	router := adminRouter(newFakeStore(), &fakeImages{})

	tests := map[string]string{
		"missing name":     `{"lowestPrice": 1, "highestPrice": 2}`,
		"zero price":       `{"name": "X", "lowestPrice": 0, "highestPrice": 2}`,
		"bad price":        `{"name": "X", "lowestPrice": "cheap", "highestPrice": 2}`,
		"unknown type":     `{"name": "X", "lowestPrice": 1, "highestPrice": 2, "type": "Weapons"}`,
		"seller w/o phone": `{"name": "X", "lowestPrice": 1, "highestPrice": 2, "isSellerAvailable": true}`,
		"nan price":        `{"name": "X", "lowestPrice": "NaN", "highestPrice": "Inf"}`,
		"overflow price":   `{"name": "X", "lowestPrice": 1, "highestPrice": "1e309"}`,
		"not json":         `name=X`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := sendJSON(t, router, http.MethodPost, "/admin/api/products", body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateProductMultipartStoresImage(t *testing.T) {
	products := newFakeStore()
	images := &fakeImages{}
	router := adminRouter(products, images)

	rec := sendMultipart(t, router, http.MethodPost, "/admin/api/products", map[string]string{
		"name":         "Choynak",
		"lowestPrice":  "90 000",
		"highestPrice": "120000",
		"type":         "Uy-ro'zg'or",
	}, "kettle.png")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Equal(t, []string{"/uploads/products/kettle.png"}, images.saved)
	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "/uploads/products/kettle.png", created.Image)
	require.Equal(t, 90000.0, created.LowestPrice)
}

func TestCreateProductInvalidInputSavesNoImage(t *testing.T) {
	images := &fakeImages{}
	router := adminRouter(newFakeStore(), images)

	rec := sendMultipart(t, router, http.MethodPost, "/admin/api/products", map[string]string{
		"lowestPrice":  "1",
		"highestPrice": "2",
	}, "orphan.png")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, images.saved)
}

func TestUpdateProductOverwritesEditableFieldsOnly(t *testing.T) {
	products := newFakeStore(models.Product{
		Name:         "Old",
		LowestPrice:  10,
		HighestPrice: 20,
		Image:        "/uploads/products/old.png",
		Views:        42,
		Forwards:     7,
		CreatedAt:    models.Now(),
	})
	id := products.order[0]
	images := &fakeImages{}
	router := adminRouter(products, images)

	rec := sendMultipart(t, router, http.MethodPut, "/admin/api/products/"+id, map[string]string{
		"name":         "New",
		"lowestPrice":  "15",
		"highestPrice": "25",
	}, "new.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := products.get(id)
	require.Equal(t, "New", updated.Name)
	require.Equal(t, "/uploads/products/new.png", updated.Image)
	require.Equal(t, int64(42), updated.Views)
	require.Equal(t, int64(7), updated.Forwards)
	require.Equal(t, []string{"/uploads/products/old.png"}, images.deleted)
}

func TestUpdateProductKeepsImageWithoutUpload(t *testing.T) {
	products := newFakeStore(models.Product{Name: "Old", LowestPrice: 1, HighestPrice: 2, Image: "https://cdn.example.com/a.png"})
	id := products.order[0]
	images := &fakeImages{}
	router := adminRouter(products, images)

	rec := sendJSON(t, router, http.MethodPut, "/admin/api/products/"+id, `{"name":"Renamed","lowestPrice":1,"highestPrice":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "https://cdn.example.com/a.png", products.get(id).Image)
	require.Empty(t, images.deleted)

	rec = sendJSON(t, router, http.MethodPut, "/admin/api/products/"+id, `{"name":"Renamed","lowestPrice":1,"highestPrice":2,"image":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Empty(t, products.get(id).Image)
	require.Equal(t, []string{"https://cdn.example.com/a.png"}, images.deleted)
}

func TestUpdateProductNotFound(t *testing.T) {
	router := adminRouter(newFakeStore(), &fakeImages{})

	rec := sendJSON(t, router, http.MethodPut, "/admin/api/products/65f000000000000000000000", `{"name":"X","lowestPrice":1,"highestPrice":2}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProductRemovesImage(t *testing.T) {
	products := newFakeStore(models.Product{Name: "Gone", Image: "/uploads/products/gone.png"})
	id := products.order[0]
	images := &fakeImages{}
	router := adminRouter(products, images)

	req := httptest.NewRequest(http.MethodDelete, "/admin/api/products/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, products.products)
	require.Equal(t, []string{"/uploads/products/gone.png"}, images.deleted)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/api/products/"+id, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAdminProductsKeepsPhone(t *testing.T) {
	products := newFakeStore(models.Product{Name: "Hidden", PhoneNumber: "+998901112233"})

	rec := get(t, adminRouter(products, &fakeImages{}), "/admin/api/products", chromeUA)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "+998901112233")
}

func TestCreateProductRejectsNonFinitePricesEverywhere(t *testing.T) {
	products := newFakeStore()
	router := adminRouter(products, &fakeImages{})

	rec := sendMultipart(t, router, http.MethodPost, "/admin/api/products", map[string]string{
		"name":         "X",
		"lowestPrice":  "NaN",
		"highestPrice": "Infinity",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = sendJSON(t, router, http.MethodPost, "/admin/api/products", `{"name":"X","lowestPrice":"NaN","highestPrice":"Inf"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Empty(t, products.products)

	rec = get(t, router, "/admin/api/products", chromeUA)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":12,"total":0,"totalPages":0}}`, rec.Body.String())
}
