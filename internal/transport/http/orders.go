package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mercadinho/market-api/internal/app"
	"github.com/mercadinho/market-api/internal/domain"
)

// Buyer identity is resolved by the gateway in front of this service and
// arrives pre-authenticated in this header.
const buyerHeader = "X-Buyer-ID"

// OrderPlacer is the minimal interface needed to place an order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in app.PlaceOrderInput) (domain.Order, error)
}

// OrderLister is the minimal interface needed for the order read side.
type OrderLister interface {
	ListBuyerOrders(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context, page, pageSize int) (app.OrderPage, error)
}

// HandlePlaceOrder returns the handler for POST /orders.
func HandlePlaceOrder(svc OrderPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID := r.Header.Get(buyerHeader)
		if buyerID == "" {
			writeError(w, http.StatusBadRequest, codeBuyerRequired, domain.ErrBuyerRequired.Error())
			return
		}

		var req placeOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if len(req.Items) == 0 {
			writeError(w, http.StatusBadRequest, codeEmptyOrder, domain.ErrEmptyOrder.Error())
			return
		}

		items := make([]domain.ItemQuantity, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, domain.ItemQuantity{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		order, err := svc.PlaceOrder(r.Context(), app.PlaceOrderInput{
			BuyerID: buyerID,
			Items:   items,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOrderResponse(order))
	}
}

// HandleListMyOrders returns the handler for GET /orders/mine.
func HandleListMyOrders(svc OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID := r.Header.Get(buyerHeader)

		orders, err := svc.ListBuyerOrders(r.Context(), buyerID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			resp = append(resp, toOrderResponse(o))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleListAllOrders returns the handler for the admin listing,
// GET /admin/orders?page&page_size.
func HandleListAllOrders(svc OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

		result, err := svc.ListAllOrders(r.Context(), page, pageSize)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		items := make([]orderResponse, 0, len(result.Orders))
		for _, o := range result.Orders {
			items = append(items, toOrderResponse(o))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(orderPageResponse{
			Total:    result.Total,
			Page:     result.Page,
			PageSize: result.PageSize,
			Items:    items,
		})
	}
}

type placeOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	BuyerID    string              `json:"buyer_id"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"total_cents"`
	CreatedAt  time.Time           `json:"created_at"`
	Lines      []orderLineResponse `json:"lines"`
}

type orderLineResponse struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type orderPageResponse struct {
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Items    []orderResponse `json:"items"`
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineResponse{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return orderResponse{
		ID:         o.ID,
		BuyerID:    o.BuyerID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		Lines:      lines,
	}
}
