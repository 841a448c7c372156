package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const maxBulkRows = 1000

// bulkRow is one product in an uploaded file. price, category and imageUrl
// are accepted as aliases for older exports.
type bulkRow struct {
	Name              string `csv:"name"`
	LowestPrice       string `csv:"lowestPrice"`
	HighestPrice      string `csv:"highestPrice"`
	Price             string `csv:"price"`
	Description       string `csv:"description"`
	Type              string `csv:"type"`
	Category          string `csv:"category"`
	Image             string `csv:"image"`
	ImageURL          string `csv:"imageUrl"`
	IsSellerAvailable string `csv:"isSellerAvailable"`
	PhoneNumber       string `csv:"phoneNumber"`
}

type bulkRowError struct {
	Row   int    `json:"row"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (r bulkRow) input() (ProductInput, error) {
	input := ProductInput{
		Name:        strings.TrimSpace(r.Name),
		NameSet:     true,
		Type:        firstNonEmpty(r.Type, r.Category),
		Description: strings.TrimSpace(r.Description),
		Image:       firstNonEmpty(r.Image, r.ImageURL),
		ImageSet:    true,
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
	}

	lowest, err := parsePrice(firstNonEmpty(r.LowestPrice, r.Price))
	if err != nil {
		return ProductInput{}, fmt.Errorf("lowestPrice: %w", err)
	}
	highest, err := parsePrice(firstNonEmpty(r.HighestPrice, r.Price))
	if err != nil {
		return ProductInput{}, fmt.Errorf("highestPrice: %w", err)
	}
	input.LowestPrice, input.LowestPriceSet = lowest, true
	input.HighestPrice, input.HighestPriceSet = highest, true

	if raw := strings.TrimSpace(r.IsSellerAvailable); raw != "" {
		available, err := parseBoolValue(raw)
		if err != nil {
			return ProductInput{}, fmt.Errorf("isSellerAvailable must be boolean")
		}
		input.IsSellerAvailable = available
	}
	return input, nil
}

// bulkRowFromMap converts a decoded JSON object; numbers and booleans are
// accepted wherever strings are.
func bulkRowFromMap(m map[string]interface{}) bulkRow {
	get := func(key string) string {
		value, ok := m[key]
		if !ok || value == nil {
			return ""
		}
		return cast.ToString(value)
	}
	return bulkRow{
		Name:              get("name"),
		LowestPrice:       get("lowestPrice"),
		HighestPrice:      get("highestPrice"),
		Price:             get("price"),
		Description:       get("description"),
		Type:              get("type"),
		Category:          get("category"),
		Image:             get("image"),
		ImageURL:          get("imageUrl"),
		IsSellerAvailable: get("isSellerAvailable"),
		PhoneNumber:       get("phoneNumber"),
	}
}

func decodeJSONRows(data []byte) ([]bulkRow, error) {
	data = bytes.TrimSpace(data)

	var objects []map[string]interface{}
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Products []map[string]interface{} `json:"products"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		objects = wrapped.Products
	} else if err := json.Unmarshal(data, &objects); err != nil {
		return nil, err
	}

	rows := make([]bulkRow, 0, len(objects))
	for _, object := range objects {
		rows = append(rows, bulkRowFromMap(object))
	}
	return rows, nil
}

func decodeCSVRows(data []byte) ([]bulkRow, error) {
	var rows []bulkRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, row := range rows {
		if row == (bulkRow{}) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// readBulkPayload returns the uploaded bytes and whether they are CSV. It
// accepts a multipart "file" field or a raw JSON or CSV body.
func readBulkPayload(c *gin.Context, maxBytes int64) ([]byte, bool, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	if isMultipart(c) {
		header, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, false, err
			}
			return nil, false, fmt.Errorf("file required")
		}
		file, err := header.Open()
		if err != nil {
			return nil, false, err
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, false, err
		}
		isCSV := strings.EqualFold(filepath.Ext(header.Filename), ".csv") ||
			strings.HasPrefix(header.Header.Get("Content-Type"), "text/csv")
		return data, isCSV, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, false, err
	}
	return data, strings.HasPrefix(c.GetHeader("Content-Type"), "text/csv"), nil
}

// BulkUploadProducts inserts every row independently and reports per-row
// failures; one bad row never blocks the rest.
func BulkUploadProducts(products ProductStore, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products/bulk"

		data, isCSV, err := readBulkPayload(c, maxBytes)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondWithError(c, http.StatusRequestEntityTooLarge, route, "file too large")
				return
			}
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		var rows []bulkRow
		if isCSV {
			rows, err = decodeCSVRows(data)
		} else {
			rows, err = decodeJSONRows(data)
		}
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "could not parse file: "+err.Error())
			return
		}
		if len(rows) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no products in file")
			return
		}
		if len(rows) > maxBulkRows {
			respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("at most %d products per upload", maxBulkRows))
			return
		}

		successCount := 0
		rowErrors := make([]bulkRowError, 0)
		for i, row := range rows {
			if err := insertBulkRow(c, products, row); err != nil {
				rowErrors = append(rowErrors, bulkRowError{Row: i + 1, Name: strings.TrimSpace(row.Name), Error: err.Error()})
				continue
			}
			successCount++
		}

		zap.S().Infof("[%s] inserted %d products, %d failed", route, successCount, len(rowErrors))
		c.JSON(http.StatusOK, gin.H{
			"successCount": successCount,
			"errorCount":   len(rowErrors),
			"errors":       rowErrors,
		})
	}
}

func insertBulkRow(c *gin.Context, products ProductStore, row bulkRow) error {
	input, err := row.input()
	if err != nil {
		return err
	}
	fields, err := productFields(input, nil)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := products.Create(ctx, fields); err != nil {
		zap.S().Errorf("[POST /admin/api/products/bulk] insert failed: %v", err)
		return errors.New("db error")
	}
	return nil
}
