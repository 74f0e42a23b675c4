package httpx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-order-console/internal/draft"
	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type DraftRegistry interface {
	Create() (string, *draft.Draft)
	Get(id string) (*draft.Draft, error)
	Discard(id string) bool
}

type DraftSubmitter interface {
	SubmitDraft(ctx context.Context, key string, d *draft.Draft) (orders.Order, bool, error)
	Submitted(ctx context.Context, key string) (orders.Order, bool, error)
}

type DraftsHandler struct {
	Drafts DraftRegistry
	Store  DraftSubmitter
	Log    zerolog.Logger
}

type draftResp struct {
	ID string `json:"id"`
	draft.View
}

type lineResp struct {
	Index int       `json:"index"`
	Draft draftResp `json:"draft"`
}

type customerReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type notesReq struct {
	Notes string `json:"notes"`
}

type lineUpdateReq struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type submitResp struct {
	Order    orderView `json:"order"`
	Replayed bool      `json:"replayed"`
}

func (h *DraftsHandler) Register(r chi.Router) {
	r.Post("/drafts", h.create)
	r.Route("/drafts/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.discard)
		r.Put("/customer", h.setCustomer)
		r.Put("/notes", h.setNotes)
		r.Post("/lines", h.addLine)
		r.Patch("/lines/{idx}", h.updateLine)
		r.Delete("/lines/{idx}", h.removeLine)
		r.Post("/lines/{idx}/confirm", h.confirmLine)
		r.Post("/submit", h.submit)
	})
}

func (h *DraftsHandler) create(w http.ResponseWriter, r *http.Request) {
	id, d := h.Drafts.Create()
	writeJSON(w, http.StatusCreated, draftResp{ID: id, View: d.View()})
}

// load resolves the draft and writes the error response when it cannot.
func (h *DraftsHandler) load(w http.ResponseWriter, r *http.Request) (string, *draft.Draft, bool) {
	id := chi.URLParam(r, "id")
	d, err := h.Drafts.Get(id)
	if err != nil {
		writeError(w, h.Log, err)
		return id, nil, false
	}
	return id, d, true
}

func lineIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		return 0, draft.ErrNoSuchLine
	}
	return i, nil
}

func (h *DraftsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, draftResp{ID: id, View: d.View()})
}

func (h *DraftsHandler) discard(w http.ResponseWriter, r *http.Request) {
	h.Drafts.Discard(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftsHandler) setCustomer(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	var req customerReq
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	d.SetCustomer(req.Name, req.Email)
	writeJSON(w, http.StatusOK, draftResp{ID: id, View: d.View()})
}

func (h *DraftsHandler) setNotes(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	var req notesReq
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	d.SetNotes(req.Notes)
	writeJSON(w, http.StatusOK, draftResp{ID: id, View: d.View()})
}

func (h *DraftsHandler) addLine(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	i := d.AddLine()
	writeJSON(w, http.StatusCreated, lineResp{Index: i, Draft: draftResp{ID: id, View: d.View()}})
}

func (h *DraftsHandler) updateLine(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	i, err := lineIndex(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var req lineUpdateReq
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := d.UpdateLine(i, draft.Field(req.Field), req.Value); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResp{ID: id, View: d.View()})
}

func (h *DraftsHandler) removeLine(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	i, err := lineIndex(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := d.RemoveLine(i); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResp{ID: id, View: d.View()})
}

func (h *DraftsHandler) confirmLine(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	i, err := lineIndex(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := d.ConfirmLine(r.Context(), i); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResp{ID: id, View: d.View()})
}

// submit discards the draft once its order exists. Repeating the call for a
// submitted draft returns the same order.
func (h *DraftsHandler) submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.Drafts.Get(id)
	if err != nil {
		o, found, lerr := h.Store.Submitted(r.Context(), id)
		if lerr == nil && found {
			writeJSON(w, http.StatusOK, submitResp{Order: view(o), Replayed: true})
			return
		}
		writeError(w, h.Log, err)
		return
	}

	o, replayed, err := h.Store.SubmitDraft(r.Context(), id, d)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.Drafts.Discard(id)
	code := http.StatusCreated
	if replayed {
		code = http.StatusOK
	}
	writeJSON(w, code, submitResp{Order: view(o), Replayed: replayed})
}
