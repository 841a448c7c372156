package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"qancha/internal/prefs"
)

func GetLikes(cookies *prefs.CookieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := cookies.Open(c.Request)
		c.JSON(http.StatusOK, gin.H{"likedProducts": prefs.Liked(session)})
	}
}

// ToggleLike flips the liked state of a product for this visitor only.
func ToggleLike(cookies *prefs.CookieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/likes/:id"

		id := c.Param("id")
		if !primitive.IsValidObjectID(id) {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		session := cookies.Open(c.Request)
		liked, err := prefs.ToggleLike(session, id)
		if err != nil {
			zap.S().Errorf("[%s] toggle failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not update likes")
			return
		}
		if err := session.Save(c.Request, c.Writer); err != nil {
			zap.S().Errorf("[%s] cookie save failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not update likes")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":            id,
			"liked":         liked,
			"likedProducts": prefs.Liked(session),
		})
	}
}
