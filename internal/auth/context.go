package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

func setUserID(c *gin.Context, id string) {
	c.Set(userIDKey, id)
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// SetRole stores the resolved role of the authenticated user.
func SetRole(c *gin.Context, role string) {
	c.Set(userRoleKey, role)
}

// GetRole returns the role stored by SetRole or empty string.
func GetRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}
