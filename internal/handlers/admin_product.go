package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qancha/internal/models"
	"qancha/internal/storage"
)

/* =======================
   HELPERS
======================= */

func respondProductInputError(c *gin.Context, err error) {
	if isMultipart(c) {
		respondMultipartError(c, err)
		return
	}
	respondValidationError(c, err)
}

// storeUploadedImage saves input.ImageFile, if any, and returns the URL to
// persist. An empty string means the request carried no file.
func storeUploadedImage(ctx context.Context, images storage.Storage, input ProductInput) (string, error) {
	if input.ImageFile == nil {
		return "", nil
	}
	return images.Save(ctx, input.ImageFile)
}

func respondImageError(c *gin.Context, route string, err error) {
	if errors.Is(err, storage.ErrUnsupportedImage) || errors.Is(err, storage.ErrImageTooLarge) {
		respondWithError(c, http.StatusBadRequest, route, err.Error())
		return
	}
	zap.S().Errorf("[%s] image upload failed: %v", route, err)
	respondWithError(c, http.StatusInternalServerError, route, "image upload failed")
}

// discardImage removes an image the product no longer references. Failures
// are logged only; the product change has already been committed.
func discardImage(images storage.Storage, route, ref string) {
	if ref == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := images.Delete(ctx, ref); err != nil {
		zap.S().Warnf("[%s] image delete failed for %s: %v", route, ref, err)
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(products ProductStore, images storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		zap.S().Infof("[%s] request received content-type=%s", route, c.GetHeader("Content-Type"))

		input, err := parseProductRequest(c)
		if err != nil {
			respondProductInputError(c, err)
			return
		}

		fields, err := productFields(input, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		uploaded, err := storeUploadedImage(ctx, images, input)
		if err != nil {
			respondImageError(c, route, err)
			return
		}
		if uploaded != "" {
			fields.Image = uploaded
		}

		product, err := products.Create(ctx, fields)
		if err != nil {
			discardImage(images, route, uploaded)
			respondStoreError(c, route, err)
			return
		}

		zap.S().Infof("[%s] created product %s", route, product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

// UpdateProduct overwrites every editable field. Counters and createdAt are
// not editable.
func UpdateProduct(products ProductStore, images storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		id := c.Param("id")
		zap.S().Infof("[%s] request received for id=%s", route, id)

		input, err := parseProductRequest(c)
		if err != nil {
			respondProductInputError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		existing, err := products.FindByID(ctx, id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		fields, err := productFields(input, &existing)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		uploaded, err := storeUploadedImage(ctx, images, input)
		if err != nil {
			respondImageError(c, route, err)
			return
		}
		if uploaded != "" {
			fields.Image = uploaded
		}

		updated, err := products.Update(ctx, id, fields)
		if err != nil {
			discardImage(images, route, uploaded)
			respondStoreError(c, route, err)
			return
		}

		if existing.Image != updated.Image {
			discardImage(images, route, existing.Image)
		}

		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduct(products ProductStore, images storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"

		ctx, cancel := requestContext(c)
		defer cancel()

		deleted, err := products.Delete(ctx, c.Param("id"))
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		discardImage(images, route, deleted.Image)

		zap.S().Infof("[%s] deleted product %s", route, deleted.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

// GetAdminProducts lists products with seller phone numbers intact.
func GetAdminProducts(products ProductStore, pageSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"

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

		c.JSON(http.StatusOK, gin.H{
			"data": list,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		})
	}
}
