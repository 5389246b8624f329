package http

import (
	"net/http"

	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/receipt"
)

type cartResponse struct {
	Lines []core.CartLine `json:"lines"`
	Total core.Money      `json:"total"`
	Count int             `json:"count"`
}

type cartLineResponse struct {
	Line core.CartLine `json:"line"`
	Cart cartResponse  `json:"cart"`
}

type checkoutResponse struct {
	Sale    core.Sale `json:"sale"`
	Receipt string    `json:"receipt"`
}

func newCartResponse(cart *core.Cart) cartResponse {
	if cart == nil {
		return cartResponse{Lines: []core.CartLine{}}
	}
	lines := cart.Lines()
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return cartResponse{Lines: orEmpty(lines), Total: cart.Total(), Count: n}
}

// handleGetCart never starts a session; a visitor without one sees an empty cart.
func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	_, cart, _ := s.sessions.lookup(r)
	NewJSONResponse().Data(newCartResponse(cart)).Write(w)
}

func (s *Server) handleAddCartLine(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		badBody(w, err)
		return
	}
	// An unparsable quantity is rejected by AddToCart after the name check.
	quantity, err := core.ParseQuantity(p.Get("quantity"))
	if err != nil {
		quantity = 0
	}

	sessionID, cart := s.sessions.cart(w, r)
	ctx := log.WithLogger(r.Context(), log.FromContext(r.Context()).With(log.FieldSessionID, sessionID))
	line, err := s.checkout.AddToCart(ctx, cart, p.Get("name"), quantity)
	if err != nil {
		s.fail(w, r, log.OpAddToCart, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Data(cartLineResponse{Line: line, Cart: newCartResponse(cart)}).
		Write(w)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if _, cart, ok := s.sessions.lookup(r); ok {
		cart.Clear()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID, cart, ok := s.sessions.lookup(r)
	if !ok {
		s.fail(w, r, log.OpCompleteSale, core.ErrEmptyCart)
		return
	}

	ctx := log.WithLogger(r.Context(), log.FromContext(r.Context()).With(log.FieldSessionID, sessionID))
	sale, err := s.checkout.CompleteSale(ctx, cart)
	if err != nil {
		s.fail(w, r, log.OpCompleteSale, err)
		return
	}
	resp := NewJSONResponse().Status(http.StatusCreated)
	if sale.ID != "" {
		resp.Header("Location", "/api/sales/"+sale.ID+"/receipt")
	}
	resp.Data(checkoutResponse{Sale: sale, Receipt: receipt.String(sale, s.loc)}).
		Write(w)
}
