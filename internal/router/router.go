package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	categoryHandler *handler.CategoryHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	addressHandler *handler.AddressHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue
	mux.HandleFunc("GET /api/products", productHandler.GetAll)
	mux.HandleFunc("GET /api/products/search", productHandler.Search)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)
	mux.HandleFunc("PUT /api/products/{id}", productHandler.Update)
	mux.HandleFunc("DELETE /api/products/{id}", productHandler.Delete)
	mux.HandleFunc("GET /api/users/products", productHandler.GetUserProducts)

	// Categories
	mux.HandleFunc("GET /api/categories", categoryHandler.GetAll)
	mux.HandleFunc("POST /api/categories", categoryHandler.Create)
	mux.HandleFunc("PUT /api/categories/{id}", categoryHandler.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", categoryHandler.Delete)
	mux.HandleFunc("GET /api/categories/{categoryId}/products", productHandler.GetByCategory)
	mux.HandleFunc("POST /api/categories/{categoryId}/products", productHandler.Create)

	// Cart
	mux.HandleFunc("GET /api/cart", cartHandler.GetCart)
	mux.HandleFunc("GET /api/carts", cartHandler.GetAllCarts)
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/cart/items/{productId}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{productId}", cartHandler.RemoveItem)

	// Orders
	mux.HandleFunc("POST /api/orders", orderHandler.Purchase)
	mux.HandleFunc("POST /api/orders/from-cart", orderHandler.BuySelectedFromCart)
	mux.HandleFunc("POST /api/orders/buy-now", orderHandler.BuyNow)
	mux.HandleFunc("GET /api/orders", orderHandler.GetUserOrders)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetByID)

	// Addresses
	mux.HandleFunc("GET /api/addresses", addressHandler.List)
	mux.HandleFunc("POST /api/addresses", addressHandler.Create)
	mux.HandleFunc("GET /api/addresses/{id}", addressHandler.GetByID)
	mux.HandleFunc("PUT /api/addresses/{id}", addressHandler.Update)
	mux.HandleFunc("DELETE /api/addresses/{id}", addressHandler.Delete)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth -> Identity
	var h http.Handler = mux
	h = middleware.Identity(logger)(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
