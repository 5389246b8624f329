package http

import (
	"bytes"
	"errors"
	"net/http"

	"cassa/internal/core"
	"cassa/internal/log"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.inventory.ListItems(r.Context())
	if err != nil && !core.IsWarning(err) {
		s.fail(w, r, log.OpListItems, err)
		return
	}
	NewJSONResponse().Data(orEmpty(items)).Warning(err).Write(w)
}

// handleAddItem accepts {name, price, quantity} as JSON or form fields. Price may
// be a number or a string with a dot or comma separator.
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		badBody(w, err)
		return
	}

	item, err := s.inventory.AddItemText(r.Context(), p.Get("name"), p.Get("price"), p.Get("quantity"))
	if err != nil {
		s.fail(w, r, log.OpAddItem, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(item).Write(w)
}

// handleImportItems seeds the catalog from a YAML body.
func (s *Server) handleImportItems(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if p.err != nil {
		badBody(w, p.err)
		return
	}
	n, err := s.inventory.Import(r.Context(), bytes.NewReader(p.Raw()))
	if err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	NewJSONResponse().Data(map[string]int{"imported": n}).Write(w)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.inventory.DeleteItem(r.Context(), r.PathValue("name")); err != nil {
		s.fail(w, r, log.OpDeleteItem, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func badBody(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		ErrorResponse(http.StatusRequestEntityTooLarge, CodeBadRequest, err.Error()).Write(w)
		return
	}
	BadRequestError(err.Error()).Write(w)
}
