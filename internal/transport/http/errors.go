package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mercadinho/market-api/internal/domain"
)

const (
	codeNotFound               = "not_found"
	codeMethodNotAllowed       = "method_not_allowed"
	codeInvalidRequestBody     = "invalid_request_body"
	codeInvalidID              = "invalid_id"
	codeBuyerRequired          = "buyer_required"
	codeEmptyOrder             = "empty_order"
	codeInvalidQuantity        = "invalid_quantity"
	codeDuplicateProduct       = "duplicate_product"
	codeProductNotFound        = "product_not_found"
	codeOrderNotFound          = "order_not_found"
	codeInsufficientStock      = "insufficient_stock"
	codeProductNameRequired    = "product_name_required"
	codeInvalidPrice           = "invalid_price"
	codeInvalidStock           = "invalid_stock"
	codeReservationUnavailable = "reservation_unavailable"
	codePersistenceUnavailable = "persistence_unavailable"
	codeStoreUnavailable       = "store_unavailable"
	codeForbidden              = "forbidden"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error   string           `json:"error"`
	Code    string           `json:"code"`
	Details []shortfallEntry `json:"details,omitempty"`
}

type shortfallEntry struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain failures onto the HTTP error contract:
// user-correctable input problems are 400, missing references 404, stock
// contention 409 with per-product detail, transient storage trouble 503.
func writeServiceError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		resp := errorResponse{Error: insufficient.Error(), Code: codeInsufficientStock}
		for _, s := range insufficient.Shortfalls {
			resp.Details = append(resp.Details, shortfallEntry{
				ProductID: s.ProductID,
				Requested: s.Requested,
				Available: s.Available,
			})
		}
		writeErrorResponse(w, http.StatusConflict, resp)
		return
	}

	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, codeEmptyOrder, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrDuplicateProduct):
		writeError(w, http.StatusBadRequest, codeDuplicateProduct, err.Error())
	case errors.Is(err, domain.ErrBuyerRequired):
		writeError(w, http.StatusBadRequest, codeBuyerRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrProductNameRequired):
		writeError(w, http.StatusBadRequest, codeProductNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidStock):
		writeError(w, http.StatusBadRequest, codeInvalidStock, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrReservationUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeReservationUnavailable, err.Error())
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		writeError(w, http.StatusServiceUnavailable, codePersistenceUnavailable, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
