package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/storefront-api/internal/store"
)

// productUpdate is the fixed set of fields PUT /product/:id writes.
// Absent fields are written as null.
type productUpdate struct {
	Photo       any `json:"photo"`
	Name        any `json:"name"`
	Brand       any `json:"brand"`
	ProductType any `json:"productType"`
	Price       any `json:"price"`
	Rating      any `json:"rating"`
}

func (u productUpdate) document() store.Document {
	return store.Document{
		"photo":       u.Photo,
		"name":        u.Name,
		"brand":       u.Brand,
		"productType": u.ProductType,
		"price":       u.Price,
		"rating":      u.Rating,
	}
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.products.Find(c.Request.Context(), store.Filter{})
	if err != nil {
		h.storeError(c, ProductsCollection, "find", "product", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) listProductsByBrand(c *gin.Context) {
	products, err := h.products.Find(c.Request.Context(), store.Filter{"brand": c.Param("brand")})
	if err != nil {
		h.storeError(c, ProductsCollection, "find", "product", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) getProduct(c *gin.Context) {
	product, err := h.products.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, ProductsCollection, "findOne", "product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handlers) createProduct(c *gin.Context) {
	var product store.Document
	if !bindJSON(c, &product) {
		return
	}

	res, err := h.products.Insert(c.Request.Context(), product)
	if err != nil {
		h.storeError(c, ProductsCollection, "insert", "product", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var update productUpdate
	if !bindJSON(c, &update) {
		return
	}

	res, err := h.products.UpdateByID(c.Request.Context(), c.Param("id"), update.document(), true)
	if err != nil {
		h.storeError(c, ProductsCollection, "update", "product", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
