package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"qancha/internal/models"
	"qancha/internal/seo"
	"qancha/internal/store"
)

var errStoreDown = errors.New("connection refused")

// fakeStore is an in-memory ProductStore. Setting err makes every call fail.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]models.Product
	order    []string
	err      error
	reads    int
	lastList store.ListFilter
}

func newFakeStore(products ...models.Product) *fakeStore {
	s := &fakeStore{products: map[string]models.Product{}}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		s.products[p.ID.Hex()] = p
		s.order = append(s.order, p.ID.Hex())
	}
	return s
}

func (s *fakeStore) FindByID(_ context.Context, id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return models.Product{}, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) List(_ context.Context, filter store.ListFilter) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	s.lastList = filter
	if s.err != nil {
		return nil, 0, s.err
	}

	matched := make([]models.Product, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.products[s.order[i]]
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, p)
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *fakeStore) Create(_ context.Context, fields store.ProductFields) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.Product{}, s.err
	}
	p := applyFields(models.Product{ID: primitive.NewObjectID(), CreatedAt: models.Now()}, fields)
	s.products[p.ID.Hex()] = p
	s.order = append(s.order, p.ID.Hex())
	return p, nil
}

func (s *fakeStore) Update(_ context.Context, id string, fields store.ProductFields) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.Product{}, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	p = applyFields(p, fields)
	s.products[id] = p
	return p, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.Product{}, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	delete(s.products, id)
	return p, nil
}

func (s *fakeStore) Increment(_ context.Context, id string, counter store.Counter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	var value int64
	if counter == store.CounterViews {
		p.Views++
		value = p.Views
	} else {
		p.Forwards++
		value = p.Forwards
	}
	s.products[id] = p
	return value, nil
}

func (s *fakeStore) Ping(context.Context) error {
	return s.err
}

func (s *fakeStore) get(id string) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func applyFields(p models.Product, f store.ProductFields) models.Product {
	p.Name = f.Name
	p.LowestPrice = f.LowestPrice
	p.HighestPrice = f.HighestPrice
	p.Type = f.Type
	p.Image = f.Image
	p.Description = f.Description
	p.IsSellerAvailable = f.IsSellerAvailable
	p.PhoneNumber = f.PhoneNumber
	return p
}

// fakeImages records saves and deletes instead of touching disk.
type fakeImages struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (f *fakeImages) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "/uploads/products/" + file.Filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeImages) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

func newTestRenderer(t *testing.T) *seo.Renderer {
	t.Helper()
	r, err := seo.NewRenderer(seo.Site{
		Name:         "Qancha.uz",
		URL:          "https://qancha.uz",
		DefaultImage: "https://qancha.uz/main.png",
		TwitterSite:  "@qancha_uz",
	}, t.TempDir()+"/missing-index.html")
	require.NoError(t, err)
	return r
}

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
