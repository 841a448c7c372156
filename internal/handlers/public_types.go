package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qancha/internal/models"
)

type productTypeResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func GetProductTypes() gin.HandlerFunc {
	types := make([]productTypeResponse, 0, len(models.ProductTypes))
	for _, t := range models.ProductTypes {
		types = append(types, productTypeResponse{Value: string(t), Label: t.English()})
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, types)
	}
}
