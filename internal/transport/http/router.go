package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterDeps carries the services the HTTP surface exposes.
type RouterDeps struct {
	Orders  OrderPlacer
	Queries OrderLister
	Catalog Catalog
	Logger  *zap.Logger
	Origins []string
}

// NewRouter assembles the chi router with the full route table. Catalog
// writes and /admin routes are expected to sit behind gateway authorization.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.Origins))

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", HandleListProducts(deps.Catalog))
		r.Post("/", HandleCreateProduct(deps.Catalog))
		r.Get("/{id}", HandleGetProduct(deps.Catalog))
		r.Put("/{id}", HandleUpdateProduct(deps.Catalog))
		r.Delete("/{id}", HandleDeleteProduct(deps.Catalog))
		r.Post("/{id}/stock", HandleRestock(deps.Catalog))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", HandlePlaceOrder(deps.Orders))
		r.Get("/mine", HandleListMyOrders(deps.Queries))
	})

	r.Get("/admin/orders", HandleListAllOrders(deps.Queries))

	return r
}
