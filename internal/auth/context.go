package auth

import "github.com/gin-gonic/gin"

const (
	ctxKeyUserID    = "userID"
	ctxKeyUserEmail = "userEmail"
)

// SetActor stores the authenticated driver in the gin context.
func SetActor(c *gin.Context, userID, email string) {
	c.Set(ctxKeyUserID, userID)
	c.Set(ctxKeyUserEmail, email)
}

// GetUserID returns the authenticated driver's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

// GetUserEmail returns the authenticated driver's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxKeyUserEmail)
}
