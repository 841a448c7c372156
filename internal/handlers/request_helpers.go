package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"qancha/internal/models"
	"qancha/internal/store"
)

const requestTimeout = 5 * time.Second

// ProductStore is the product persistence the handlers depend on.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context, filter store.ListFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, fields store.ProductFields) (models.Product, error)
	Update(ctx context.Context, id string, fields store.ProductFields) (models.Product, error)
	Delete(ctx context.Context, id string) (models.Product, error)
	Increment(ctx context.Context, id string, counter store.Counter) (int64, error)
	Ping(ctx context.Context) error
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		zap.S().Errorf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	zap.S().Warnf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondStoreError maps store failures: a missing product is a 404, anything
// else is logged and hidden behind a generic 500.
func respondStoreError(c *gin.Context, route string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, route, "product not found")
		return
	}
	zap.S().Errorf("[%s] store error: %v", route, err)
	respondWithError(c, http.StatusInternalServerError, route, "db error")
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
