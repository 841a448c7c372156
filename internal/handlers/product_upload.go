package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qancha/internal/models"
	"qancha/internal/store"
)

/*
=======================
  INPUT STRUCT
=======================
*/

// ProductInput is an admin create or edit request. The *Set flags record
// which fields the client actually sent.
type ProductInput struct {
	Name                 string
	NameSet              bool
	LowestPrice          float64
	LowestPriceSet       bool
	HighestPrice         float64
	HighestPriceSet      bool
	Type                 string
	Description          string
	Image                string
	ImageSet             bool
	ImageFile            *multipart.FileHeader
	RemoveImage          bool
	IsSellerAvailable    bool
	IsSellerAvailableSet bool
	PhoneNumber          string
}

type productRequest struct {
	Name              string      `json:"name" binding:"required"`
	LowestPrice       interface{} `json:"lowestPrice" binding:"required"`
	HighestPrice      interface{} `json:"highestPrice" binding:"required"`
	Type              string      `json:"type"`
	Description       string      `json:"description" binding:"max=5000"`
	Image             *string     `json:"image"`
	IsSellerAvailable bool        `json:"isSellerAvailable"`
	PhoneNumber       string      `json:"phoneNumber" binding:"max=32"`
}

/*
=======================
  PARSERS
=======================
*/

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data")
}

func parseMultipartProductRequest(c *gin.Context) (ProductInput, error) {
	if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
		zap.S().Warnf("[UPLOAD] parse error: %v", err)
		return ProductInput{}, err
	}

	input := ProductInput{}

	// ---- STRING FIELDS ----

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}
	input.Type = strings.TrimSpace(c.PostForm("type"))
	input.Description = strings.TrimSpace(c.PostForm("description"))
	input.PhoneNumber = strings.TrimSpace(c.PostForm("phoneNumber"))

	if value, ok := c.GetPostForm("image"); ok {
		input.Image = strings.TrimSpace(value)
		input.ImageSet = true
	}

	// ---- PRICES ----

	if value, ok := c.GetPostForm("lowestPrice"); ok {
		parsed, err := parsePrice(value)
		if err != nil {
			return ProductInput{}, fmt.Errorf("lowestPrice: %w", err)
		}
		input.LowestPrice = parsed
		input.LowestPriceSet = true
	}

	if value, ok := c.GetPostForm("highestPrice"); ok {
		parsed, err := parsePrice(value)
		if err != nil {
			return ProductInput{}, fmt.Errorf("highestPrice: %w", err)
		}
		input.HighestPrice = parsed
		input.HighestPriceSet = true
	}

	// ---- BOOL FIELDS ----

	if value, ok := c.GetPostForm("isSellerAvailable"); ok {
		parsed, err := parseBoolValue(value)
		if err != nil {
			return ProductInput{}, fmt.Errorf("isSellerAvailable must be boolean")
		}
		input.IsSellerAvailable = parsed
		input.IsSellerAvailableSet = true
	}

	if value, ok := c.GetPostForm("removeImage"); ok {
		parsed, err := parseBoolValue(value)
		if err != nil {
			return ProductInput{}, fmt.Errorf("removeImage must be boolean")
		}
		input.RemoveImage = parsed
	}

	// ---- IMAGE FILE ----

	file, err := c.FormFile("image")
	if err == nil {
		input.ImageFile = file
	} else if !errors.Is(err, http.ErrMissingFile) {
		return ProductInput{}, err
	}

	return input, nil
}

func parseJSONProductRequest(c *gin.Context) (ProductInput, error) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ProductInput{}, err
	}

	lowest, err := parsePrice(req.LowestPrice)
	if err != nil {
		return ProductInput{}, fmt.Errorf("lowestPrice: %w", err)
	}
	highest, err := parsePrice(req.HighestPrice)
	if err != nil {
		return ProductInput{}, fmt.Errorf("highestPrice: %w", err)
	}

	input := ProductInput{
		Name:                 strings.TrimSpace(req.Name),
		NameSet:              true,
		LowestPrice:          lowest,
		LowestPriceSet:       true,
		HighestPrice:         highest,
		HighestPriceSet:      true,
		Type:                 strings.TrimSpace(req.Type),
		Description:          strings.TrimSpace(req.Description),
		IsSellerAvailable:    req.IsSellerAvailable,
		IsSellerAvailableSet: true,
		PhoneNumber:          strings.TrimSpace(req.PhoneNumber),
	}
	if req.Image != nil {
		input.Image = strings.TrimSpace(*req.Image)
		input.ImageSet = true
		input.RemoveImage = input.Image == ""
	}
	return input, nil
}

func parseProductRequest(c *gin.Context) (ProductInput, error) {
	if isMultipart(c) {
		return parseMultipartProductRequest(c)
	}
	return parseJSONProductRequest(c)
}

/*
=======================
  VALIDATION
=======================
*/

// productFields validates a complete product. existing is the stored product
// on edit and nil on create; its image is kept unless the request replaces
// or removes it.
func productFields(input ProductInput, existing *models.Product) (store.ProductFields, error) {
	if !input.NameSet || input.Name == "" {
		return store.ProductFields{}, fmt.Errorf("name required")
	}
	if !input.LowestPriceSet || !input.HighestPriceSet {
		return store.ProductFields{}, fmt.Errorf("lowestPrice and highestPrice are required")
	}
	if err := validatePriceRange(input.LowestPrice, input.HighestPrice); err != nil {
		return store.ProductFields{}, err
	}

	productType, ok := models.ParseProductType(input.Type)
	if !ok {
		return store.ProductFields{}, fmt.Errorf("invalid type: %s", input.Type)
	}

	if input.IsSellerAvailable && input.PhoneNumber == "" {
		return store.ProductFields{}, fmt.Errorf("phoneNumber is required when isSellerAvailable is true")
	}

	if !validImageRef(input.Image) {
		return store.ProductFields{}, fmt.Errorf("image must be an http(s) URL or an /uploads path")
	}

	image := input.Image
	if !input.ImageSet && !input.RemoveImage && existing != nil {
		image = existing.Image
	}

	return store.ProductFields{
		Name:              input.Name,
		LowestPrice:       input.LowestPrice,
		HighestPrice:      input.HighestPrice,
		Type:              productType,
		Image:             image,
		Description:       input.Description,
		IsSellerAvailable: input.IsSellerAvailable,
		PhoneNumber:       input.PhoneNumber,
	}, nil
}

func validImageRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "/uploads/") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}

func respondMultipartError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
