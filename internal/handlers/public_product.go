package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qancha/internal/models"
	"qancha/internal/store"
)

/*
GET /api/products
- search: case-insensitive name match
- type: Uzbek or English product type
- page, limit: defaults to page 1 and the configured page size
*/
func GetProducts(products ProductStore, pageSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		zap.S().Debugf(
			"[%s] hit page=%s limit=%s type=%s search=%s",
			route,
			c.Query("page"),
			c.Query("limit"),
			c.Query("type"),
			c.Query("search"),
		)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"), pageSize)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		productType, ok := models.ParseProductType(c.Query("type"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid type")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, total, err := products.List(ctx, listFilter(c.Query("search"), productType, page, limit))
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		data := make([]models.Product, 0, len(list))
		for _, p := range list {
			data = append(data, p.Public())
		}

		zap.S().Debugf("[%s] returning %d of %d products", route, len(data), total)
		c.JSON(http.StatusOK, gin.H{
			"data": data,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		})
	}
}

func listFilter(search string, productType models.ProductType, page, limit int64) store.ListFilter {
	return store.ListFilter{
		Search: strings.TrimSpace(search),
		Type:   productType,
		Page:   page,
		Limit:  limit,
	}
}

func GetProduct(products ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := products.FindByID(ctx, c.Param("id"))
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, product.Public())
	}
}

func IncrementViews(products ProductStore) gin.HandlerFunc {
	return incrementCounter(products, store.CounterViews, "POST /api/products/:id/views")
}

func IncrementForwards(products ProductStore) gin.HandlerFunc {
	return incrementCounter(products, store.CounterForwards, "POST /api/products/:id/forwards")
}

func incrementCounter(products ProductStore, counter store.Counter, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		id := c.Param("id")
		value, err := products.Increment(ctx, id, counter)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":            id,
			string(counter): value,
		})
	}
}
