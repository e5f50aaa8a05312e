package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/storefront-api/jwtauth"
)

// Access is the protection class a route declares.
type Access int

const (
	// Public routes never run the verifier.
	Public Access = iota
	// Authenticated routes require a valid credential.
	Authenticated
	// OwnerScoped routes require a valid credential whose identity owns the
	// resource. With OwnerParam set the path parameter is the owner key;
	// otherwise the handler scopes by the identity itself or compares it
	// against the body or stored document.
	OwnerScoped
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case OwnerScoped:
		return "owner-scoped"
	default:
		return "unknown"
	}
}

// Route is one entry of the route table.
type Route struct {
	Method     string
	Path       string
	Access     Access
	OwnerParam string
	handler    gin.HandlerFunc
}

// routes is the single place every endpoint and its protection class is declared.
func (h *handlers) routes() []Route {
	return []Route{
		{Method: "GET", Path: "/", Access: Public, handler: h.root},
		{Method: "GET", Path: "/health", Access: Public, handler: h.health},
		{Method: "GET", Path: "/brands", Access: Public, handler: h.listBrands},
		{Method: "POST", Path: "/jwt", Access: Public, handler: h.issueToken},
		{Method: "POST", Path: "/logout", Access: Public, handler: h.logout},

		{Method: "GET", Path: "/products", Access: Public, handler: h.listProducts},
		{Method: "GET", Path: "/products/:brand", Access: Public, handler: h.listProductsByBrand},
		{Method: "GET", Path: "/product/:id", Access: Authenticated, handler: h.getProduct},
		{Method: "POST", Path: "/products", Access: Authenticated, handler: h.createProduct},
		{Method: "PUT", Path: "/product/:id", Access: Authenticated, handler: h.updateProduct},

		{Method: "GET", Path: "/cart", Access: OwnerScoped, handler: h.listCart},
		{Method: "GET", Path: "/cart/:email", Access: OwnerScoped, OwnerParam: "email", handler: h.listCartByEmail},
		{Method: "POST", Path: "/cart", Access: OwnerScoped, handler: h.addToCart},
		{Method: "DELETE", Path: "/cartDel/:id", Access: OwnerScoped, handler: h.removeFromCart},
	}
}

// chain builds the middleware stack a route's access class demands.
func (r Route) chain(auth *jwtauth.Config) []gin.HandlerFunc {
	switch r.Access {
	case Authenticated:
		return []gin.HandlerFunc{jwtauth.JWTAuth(auth), r.handler}
	case OwnerScoped:
		if r.OwnerParam != "" {
			return []gin.HandlerFunc{jwtauth.JWTAuth(auth), jwtauth.RequireOwner(auth, r.OwnerParam), r.handler}
		}
		return []gin.HandlerFunc{jwtauth.JWTAuth(auth), r.handler}
	default:
		return []gin.HandlerFunc{r.handler}
	}
}
