package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mercadinho/market-api/internal/app"
	"github.com/mercadinho/market-api/internal/domain"
)

// Catalog is the minimal interface the product endpoints need.
type Catalog interface {
	CreateProduct(ctx context.Context, in app.CreateProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, in app.UpdateProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	Restock(ctx context.Context, productID string, quantity int) error
}

// HandleListProducts returns the handler for GET /products.
func HandleListProducts(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := make([]productResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleGetProduct returns the handler for GET /products/{id}.
func HandleGetProduct(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// HandleCreateProduct returns the handler for POST /products.
func HandleCreateProduct(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		product, err := svc.CreateProduct(r.Context(), app.CreateProductInput{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Stock:       req.Stock,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// HandleUpdateProduct returns the handler for PUT /products/{id}. Stock is
// not an updatable field; restocking has its own endpoint.
func HandleUpdateProduct(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProductRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		product, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), app.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// HandleDeleteProduct returns the handler for DELETE /products/{id}.
func HandleDeleteProduct(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleRestock returns the handler for POST /products/{id}/stock.
func HandleRestock(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restockRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.Restock(r.Context(), chi.URLParam(r, "id"), req.Quantity); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
}

type updateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type productResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	PriceCents  int64      `json:"price_cents"`
	Stock       int        `json:"stock"`
	ImageURL    string     `json:"image_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
