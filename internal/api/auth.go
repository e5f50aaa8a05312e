package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/storefront-api/jwtauth"
)

// issueToken signs the posted identity payload and sets it as the token cookie.
// The response keeps the "sucess" spelling existing clients read.
func (h *handlers) issueToken(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}

	token, err := jwtauth.IssueToken(h.auth, payload)
	if err != nil {
		switch jwtauth.CodeOf(err) {
		case jwtauth.ErrMissingIdentity:
			badRequest(c, messageEmailRequired)
		case jwtauth.ErrReservedClaim:
			badRequest(c, "exp and nbf are set by the server")
		case jwtauth.ErrTokenTooLarge:
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "identity payload too large for a cookie"})
		default:
			h.logger.ErrorContext(c.Request.Context(), "token issuance failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "could not issue token"})
		}
		return
	}

	jwtauth.SetTokenCookie(c.Writer, h.auth, token)
	c.JSON(http.StatusOK, gin.H{"sucess": true})
}

func (h *handlers) logout(c *gin.Context) {
	jwtauth.ClearTokenCookie(c.Writer, h.auth)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
