package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-order-console/internal/api"
	"github.com/ariefcatur/go-order-console/internal/app"
	"github.com/ariefcatur/go-order-console/internal/draft"
	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/ariefcatur/go-order-console/internal/session"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Error      string `json:"error"`
	Detail     string `json:"detail,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return orders.Invalid("invalid json")
	}
	return nil
}

// writeError maps the error taxonomy to a status. Failures from the
// persistence service get a retry message; the server's own reason, when
// it gave one, goes in detail.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		ve  *orders.ValidationError
		pce *orders.ProductCreationError
		oce *orders.OrderCreationError
		te  *orders.TransitionError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message})
	case errors.Is(err, draft.ErrInvalidInput), errors.Is(err, draft.ErrUnknownField):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, draft.ErrNoSuchLine), errors.Is(err, session.ErrNotFound),
		errors.Is(err, app.ErrUnknownOrder):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, draft.ErrLineConfirmed), errors.Is(err, draft.ErrLineBusy),
		errors.Is(err, draft.ErrLastLine), errors.Is(err, draft.ErrSubmitting):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.As(err, &pce):
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:  "could not save the product, please try again",
			Detail: serverDetail(err),
		})
	case errors.As(err, &oce):
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:      "could not create the order, please try again",
			Detail:     serverDetail(err),
			CustomerID: oce.CustomerID,
		})
	case errors.As(err, &te):
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:  "could not update the order, please try again",
			Detail: serverDetail(err),
		})
	case errors.Is(err, api.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func serverDetail(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
