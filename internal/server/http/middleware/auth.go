package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ClientIDContextKey is a gin context key for the client identifier.
	ClientIDContextKey = "clientID"
	clientCookieName   = "hubsai_client"
)

// ClientTokens issues and validates signed client tokens.
type ClientTokens interface {
	IssueClientToken() (string, string, error)
	ParseClientToken(token string) (string, error)
}

// ClientSession resolves the client of the request. A missing or invalid
// token gets a fresh client identity.
func ClientSession(tokens ClientTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if clientID, err := tokens.ParseClientToken(token); err == nil {
				c.Set(ClientIDContextKey, clientID)
				c.Next()
				return
			}
		}

		clientID, token, err := tokens.IssueClientToken()
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		SetClientCookie(c, token)
		c.Set(ClientIDContextKey, clientID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(clientCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetClientCookie writes the client token cookie to the response.
func SetClientCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(clientCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClientID returns the client resolved by ClientSession.
func ClientID(c *gin.Context) string {
	return c.GetString(ClientIDContextKey)
}
