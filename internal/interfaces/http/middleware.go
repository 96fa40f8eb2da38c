package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/pkg/utils"
)

// Identity headers set by the authenticating proxy in front of the API
const (
	HeaderUserEmail = "X-User-Email"
	HeaderUserType  = "X-User-Type"
)

const identityKey = "identity"

// identityMiddleware rejects requests without a usable caller identity.
// A missing type means an employee.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader(HeaderUserEmail))
		if err := utils.ValidateEmail(email); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing or invalid " + HeaderUserEmail,
			})
			return
		}

		userType := entity.UserTypeEmployee
		if strings.EqualFold(strings.TrimSpace(c.GetHeader(HeaderUserType)), entity.UserTypeAdmin) {
			userType = entity.UserTypeAdmin
		}

		c.Set(identityKey, port.Identity{Email: email, Type: userType})
		c.Next()
	}
}

// requireAdmin only lets administrators through
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "administrator access required",
			})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) port.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(port.Identity); ok {
			return id
		}
	}
	return port.Identity{}
}
