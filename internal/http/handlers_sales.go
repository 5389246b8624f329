package http

import (
	"net/http"
	"strconv"

	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/receipt"
)

// handleListSales returns the ledger in recording order. ?limit=N keeps the
// newest N sales.
func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, r, log.OpListSales, &core.ValidationError{Field: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = n
	}

	sales, err := s.sales.ListSales(r.Context())
	if err != nil && !core.IsWarning(err) {
		s.fail(w, r, log.OpListSales, err)
		return
	}
	if limit > 0 && len(sales) > limit {
		sales = sales[len(sales)-limit:]
	}
	NewJSONResponse().Data(orEmpty(sales)).Warning(err).Write(w)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	sale, err := s.sales.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpReceipt, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := receipt.Render(w, sale, s.loc); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write receipt",
			log.FieldSaleID, sale.ID, log.FieldError, err)
	}
}
