package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/storefront-api/internal/store"
	"github.com/Wang-tianhao/storefront-api/jwtauth"
)

// cartOwnerField is the owner key stored on every cart entry
const cartOwnerField = jwtauth.IdentityClaim

// listCart returns the caller's own entries; the owner key comes from the
// verified credential, never from the request.
func (h *handlers) listCart(c *gin.Context) {
	claims := jwtauth.MustGetClaims(c.Request.Context())
	items, err := h.cart.Find(c.Request.Context(), store.Filter{cartOwnerField: claims.Email})
	if err != nil {
		h.storeError(c, CartCollection, "find", "cart item", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// listCartByEmail runs behind RequireOwner, so :email is the caller's own.
func (h *handlers) listCartByEmail(c *gin.Context) {
	items, err := h.cart.Find(c.Request.Context(), store.Filter{cartOwnerField: c.Param("email")})
	if err != nil {
		h.storeError(c, CartCollection, "find", "cart item", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) addToCart(c *gin.Context) {
	var item store.Document
	if !bindJSON(c, &item) {
		return
	}

	owner, ok := item[cartOwnerField].(string)
	if !ok || owner == "" {
		badRequest(c, messageEmailRequired)
		return
	}
	if !jwtauth.Owns(c.Request.Context(), owner) {
		jwtauth.AbortForbidden(c, h.auth, owner)
		return
	}

	res, err := h.cart.Insert(c.Request.Context(), item)
	if err != nil {
		h.storeError(c, CartCollection, "insert", "cart item", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) removeFromCart(c *gin.Context) {
	id := c.Param("id")

	item, err := h.cart.FindByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, CartCollection, "findOne", "cart item", err)
		return
	}

	owner, _ := item[cartOwnerField].(string)
	if !jwtauth.Owns(c.Request.Context(), owner) {
		jwtauth.AbortForbidden(c, h.auth, owner)
		return
	}

	res, err := h.cart.DeleteByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, CartCollection, "delete", "cart item", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
