package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/query"
	"github.com/example/storefront/internal/readmodel"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	tokens       *auth.TokenService
	cookieName   string
	log          *logger.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, tokens *auth.TokenService, cookieName string, log *logger.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		tokens:       tokens,
		cookieName:   cookieName,
		log:          log.Component("api"),
	}
}

// commandResponse reports a command outcome along with the badge counts a page
// header shows.
type commandResponse struct {
	*command.Result
	CartCount     int `json:"cart_count"`
	WishlistCount int `json:"wishlist_count"`
}

// Session Handlers

// CreateSession issues a profile token. A request that already carries a valid
// token keeps its profile and gets a renewed token.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	status := http.StatusCreated
	var (
		profileID string
		token     string
		session   readmodel.SessionReadModel
		err       error
	)

	if existing := middleware.ExtractToken(r, h.cookieName); existing != "" {
		if claims, verr := h.tokens.Validate(existing); verr == nil {
			profileID = claims.ProfileID()
			token, session.ExpiresAt, err = h.tokens.Issue(profileID)
			status = http.StatusOK
		}
	}
	if profileID == "" {
		profileID, token, session.ExpiresAt, err = h.tokens.NewProfile()
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	session.ProfileID = profileID
	session.Token = token

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, status, session)
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.queryHandler.ListProducts(r.Context(), r.URL.RawQuery)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	product, err := h.queryHandler.GetProduct(r.Context(), middleware.ProfileID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) GetRecent(w http.ResponseWriter, r *http.Request) {
	items, err := h.queryHandler.GetRecent(r.Context(), middleware.ProfileID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.queryHandler.GetCart(r.Context(), middleware.ProfileID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddToCart
	if !decodeBody(w, r, &cmd) {
		return
	}
	cmd.ProfileID = middleware.ProfileID(r.Context())

	result, err := h.cmdHandler.AddToCart(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

func (h *Handlers) QuickAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	cmd := command.QuickAdd{ProfileID: middleware.ProfileID(r.Context()), ProductID: id}

	result, err := h.cmdHandler.QuickAdd(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateQuantity
	if !decodeBody(w, r, &cmd) {
		return
	}
	cmd.ProfileID = middleware.ProfileID(r.Context())
	cmd.Key = lineKeyParam(r)

	result, err := h.cmdHandler.UpdateQuantity(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveFromCart{
		ProfileID: middleware.ProfileID(r.Context()),
		Key:       lineKeyParam(r),
	}
	result, err := h.cmdHandler.RemoveFromCart(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.ClearCart{ProfileID: middleware.ProfileID(r.Context())}
	result, err := h.cmdHandler.ClearCart(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

// Wishlist Handlers

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.queryHandler.GetWishlist(r.Context(), middleware.ProfileID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, wishlist)
}

func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	cmd := command.ToggleWishlist{ProfileID: middleware.ProfileID(r.Context()), ProductID: id}
	result, err := h.cmdHandler.ToggleWishlist(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

func (h *Handlers) MoveToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	cmd := command.MoveToCart{ProfileID: middleware.ProfileID(r.Context()), ProductID: id}
	result, err := h.cmdHandler.MoveToCart(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

func (h *Handlers) RemoveWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	cmd := command.RemoveWishlist{ProfileID: middleware.ProfileID(r.Context()), ProductID: id}
	result, err := h.cmdHandler.RemoveWishlist(r.Context(), cmd)
	h.respondCommand(w, r, result, err)
}

// Toast Handlers

func (h *Handlers) GetToasts(w http.ResponseWriter, r *http.Request) {
	toasts, err := h.queryHandler.ListToasts(r.Context(), middleware.ProfileID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toasts)
}

// Helper functions

// respondCommand writes 200 for applied commands and 422 for refused ones.
func (h *Handlers) respondCommand(w http.ResponseWriter, r *http.Request, result *command.Result, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !result.Applied {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, commandResponse{
		Result:        result,
		CartCount:     result.State.Cart.Count(),
		WishlistCount: len(result.State.Wishlist),
	})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondJSONError(w, "invalid product id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// lineKeyParam returns the cart line key. Keys contain sizes such as "One Size",
// so the segment may arrive escaped.
func lineKeyParam(r *http.Request) string {
	raw := chi.URLParam(r, "key")
	if key, err := url.PathUnescape(raw); err == nil {
		return key
	}
	return raw
}
