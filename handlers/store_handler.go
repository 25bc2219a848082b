package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"storefinder/middleware"
	"storefinder/services"
	"storefinder/utils/errors"

	"github.com/gorilla/mux"
)

type StoreHandler struct {
	stores *services.StoreService
}

func NewStoreHandler(stores *services.StoreService) *StoreHandler {
	return &StoreHandler{stores: stores}
}

// ListStores serves one page of the directory. Asking for a page past the
// end answers with a redirect directive to the last valid page instead of an
// empty result.
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw, ok := mux.Vars(r)["page"]; ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
		page = parsed
	}

	result, err := h.stores.ListPage(r.Context(), page)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.RedirectTo > 0 {
		w.Header().Set("Location", fmt.Sprintf("/stores/page/%d", result.RedirectTo))
		w.WriteHeader(http.StatusSeeOther)
		json.NewEncoder(w).Encode(map[string]any{
			"redirect_to": result.RedirectTo,
			"message":     fmt.Sprintf("Page %d does not exist, redirected to page %d", page, result.RedirectTo),
		})
		return
	}
	json.NewEncoder(w).Encode(result)
}

func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	var input services.StoreInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}

	store, err := h.stores.Create(r.Context(), userID, input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(store)
}

// EditStore returns the store for its author's edit form; anyone else is
// rejected.
func (h *StoreHandler) EditStore(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	store, err := h.stores.EditStore(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(store)
}

func (h *StoreHandler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	var input services.StoreInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}

	store, err := h.stores.Update(r.Context(), mux.Vars(r)["id"], userID, input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(store)
}

func (h *StoreHandler) GetStoreBySlug(w http.ResponseWriter, r *http.Request) {
	store, err := h.stores.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(store)
}

// GetStoresByTag lists tag counts and the stores for the selected tag. With
// no tag (or the "any" sentinel) it matches every store carrying a tag.
func (h *StoreHandler) GetStoresByTag(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if tag == "any" {
		tag = ""
	}
	result, err := h.stores.Tags(r.Context(), tag)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *StoreHandler) SearchStores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	stores, err := h.stores.Search(r.Context(), query)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stores)
}

func (h *StoreHandler) MapStores(w http.ResponseWriter, r *http.Request) {
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	stores, err := h.stores.Near(r.Context(), lng, lat)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stores)
}

func (h *StoreHandler) TopStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.stores.TopStores(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stores)
}

// HeartStore toggles the store in the caller's favorites and returns the
// updated set.
func (h *StoreHandler) HeartStore(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	hearts, err := h.stores.ToggleHeart(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"hearts": hearts})
}

func (h *StoreHandler) HeartedStores(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	stores, err := h.stores.Hearted(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stores)
}

func (h *StoreHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	var input struct {
		Text   string `json:"text" validate:"required"`
		Rating int    `json:"rating" validate:"required,min=1,max=5"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}

	review, err := h.stores.AddReview(r.Context(), userID, mux.Vars(r)["id"], input.Text, input.Rating)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(review)
}
