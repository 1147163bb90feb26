package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const actorKey = "actor_member_id"

// Middleware validates the bearer token and resolves the acting member once
// per request. Every handler reads the actor from here; body-asserted ids
// are never the authority for "who is acting".
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization token is missing"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := ValidateToken(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		memberID, err := uuid.Parse(claims.MemberID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(actorKey, memberID)
		c.Next()
	}
}

// Actor returns the authenticated member resolved by Middleware.
func Actor(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
