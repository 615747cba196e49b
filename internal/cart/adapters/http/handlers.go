package http

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dejobratic/cartwidget/internal/cart/domain"
	"github.com/dejobratic/cartwidget/internal/cart/ports"
	"github.com/dejobratic/cartwidget/internal/cart/render"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// CartService is the subset of the cart store the handlers drive.
type CartService interface {
	Add(ctx context.Context, name string, price float64, qty int)
	AddRaw(ctx context.Context, name, price, qty string)
	Remove(ctx context.Context, index int)
	Clear(ctx context.Context)
	Items() domain.Cart
	Total() float64
	ItemCount() int
}

// PanelToggler flips the cart panel.
type PanelToggler interface {
	TogglePanel() (visible bool, message string)
}

// Product is a quick-add entry offered on the shop pages.
type Product struct {
	Name  string
	Price float64
	Qty   int
}

// DefaultCatalog is offered when no catalog is configured.
var DefaultCatalog = []Product{
	{Name: "Classic Sneakers", Price: 1200, Qty: 1},
	{Name: "Denim Jacket", Price: 2499, Qty: 1},
	{Name: "Cotton T-Shirt", Price: 499, Qty: 2},
	{Name: "Leather Belt", Price: 650, Qty: 1},
}

const (
	shopPage  = "shop.html"
	homeTitle = "TrendHive"
	cartTitle = "Your Cart"
	shopTitle = "Shop"
)

// Handler serves the shop pages, their cart forms, and the JSON cart API.
type Handler struct {
	cart        CartService
	panel       PanelToggler
	targets     *PageTargets
	notifier    ports.Notifier
	idempotency ports.IdempotencyStore
	homes       []string
	cartPage    string
	catalog     []Product
	currency    string
	logger      *slog.Logger

	pages    map[string]string
	keyLocks *keyLocks
}

type Option func(*Handler)

func WithNotifier(n ports.Notifier) Option {
	return func(h *Handler) {
		h.notifier = n
	}
}

func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(h *Handler) {
		h.idempotency = store
	}
}

// WithHomePages sets the page names treated as the home surface.
func WithHomePages(pages []string) Option {
	return func(h *Handler) {
		if pages != nil {
			h.homes = pages
		}
	}
}

func WithCartPage(page string) Option {
	return func(h *Handler) {
		if page != "" {
			h.cartPage = strings.ToLower(page)
		}
	}
}

func WithCatalog(products []Product) Option {
	return func(h *Handler) {
		h.catalog = products
	}
}

func WithCurrencySymbol(symbol string) Option {
	return func(h *Handler) {
		h.currency = symbol
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a Handler.
func NewHandler(cart CartService, panel PanelToggler, targets *PageTargets, opts ...Option) *Handler {
	h := &Handler{
		cart:     cart,
		panel:    panel,
		targets:  targets,
		homes:    []string{"", "home.html", "index.html"},
		cartPage: "cart.html",
		catalog:  DefaultCatalog,
		currency: render.DefaultCurrencySymbol,
		logger:   slog.Default(),
		keyLocks: newKeyLocks(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.pages = servablePages(h.homes, h.cartPage)
	return h
}

// servablePages maps every page the handler renders to its title: the home
// pages, the cart page, and the shop page.
func servablePages(homes []string, cartPage string) map[string]string {
	pages := map[string]string{shopPage: shopTitle}
	for _, home := range homes {
		pages[strings.ToLower(home)] = homeTitle
	}
	pages[cartPage] = cartTitle
	return pages
}

// Register binds the cart routes to r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Delete("/items/{index}", h.removeItem)
		r.Post("/panel/toggle", h.togglePanelJSON)
	})

	r.Post("/cart/add", h.addForm)
	r.Post("/cart/remove/{index}", h.removeForm)
	r.Post("/cart/clear", h.clearForm)
	r.Post("/cart/toggle", h.toggleForm)

	r.Get("/", h.servePage)
	r.Get("/{page}", h.servePage)
}

type pageData struct {
	Title        string
	Page         string
	IsHome       bool
	HasPanel     bool
	FloatingCart bool
	CartPage     string
	Currency     string
	Catalog      []Product
	State        PageState
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	page := PageName(r.URL.Path)
	title, ok := h.pages[page]
	if !ok {
		http.NotFound(w, r)
		return
	}

	home := IsHome(r.URL.Path, h.homes)
	data := pageData{
		Title:        title,
		Page:         page,
		IsHome:       home,
		HasPanel:     h.hasPanel(page),
		FloatingCart: !home,
		CartPage:     h.cartPage,
		Currency:     h.currency,
		Catalog:      h.catalog,
		State:        h.targets.Snapshot(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.ExecuteTemplate(w, "page.html", data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "page", page, "error", err)
	}
}

func (h *Handler) hasPanel(page string) bool {
	return page == h.cartPage || IsHome(page, h.homes)
}

func (h *Handler) addForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	h.cart.AddRaw(r.Context(), r.PostFormValue("name"), r.PostFormValue("price"), r.PostFormValue("qty"))
	redirectBack(w, r)
}

func (h *Handler) removeForm(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	h.removeAt(r, index)
	redirectBack(w, r)
}

// removeAt goes through the row of the current render so the index always
// refers to what the page last showed.
func (h *Handler) removeAt(r *http.Request, index int) {
	if row, ok := h.targets.Row(index); ok && row.Remove != nil {
		row.Remove(r.Context())
		return
	}
	h.cart.Remove(r.Context(), index)
}

func (h *Handler) clearForm(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	redirectBack(w, r)
}

func (h *Handler) toggleForm(w http.ResponseWriter, r *http.Request) {
	h.toggle(refererPath(r))
	redirectBack(w, r)
}

func (h *Handler) toggle(fromPath string) (bool, string) {
	if !h.hasPanel(PageName(fromPath)) {
		message := render.SavedHint(h.cart.ItemCount())
		if h.notifier != nil {
			h.notifier.Show(message)
		}
		return false, message
	}
	return h.panel.TogglePanel()
}

type cartResponse struct {
	Items     domain.Cart `json:"items"`
	Total     float64     `json:"total"`
	ItemCount int         `json:"item_count"`
}

func (h *Handler) cartResponse() cartResponse {
	return cartResponse{
		Items:     h.cart.Items(),
		Total:     h.cart.Total(),
		ItemCount: h.cart.ItemCount(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse())
}

type addItemRequest struct {
	Name  string `json:"name"`
	Price any    `json:"price"`
	Qty   any    `json:"qty"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	if idemKey != "" && h.idempotency != nil {
		unlock := h.keyLocks.lock(idemKey)
		defer unlock()

		stored, err := h.idempotency.Get(ctx, idemKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stored != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(stored.StatusCode)
			_, _ = w.Write(stored.Body)
			return
		}
	}

	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	h.cart.Add(ctx, payload.Name, domain.CoercePrice(payload.Price), domain.CoerceQty(payload.Qty))

	body, err := json.Marshal(h.cartResponse())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if idemKey != "" && h.idempotency != nil {
		stored := ports.StoredResponse{StatusCode: http.StatusCreated, Body: body}
		if err := h.idempotency.Save(ctx, idemKey, stored); err != nil {
			h.logger.ErrorContext(ctx, "failed to save idempotent response", "key", idemKey, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	h.removeAt(r, index)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) togglePanelJSON(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	visible, message := h.toggle("/" + page)

	response := map[string]any{"visible": visible}
	if message != "" {
		response["message"] = message
	}
	writeJSON(w, http.StatusOK, response)
}

// refererPath returns the path of the page that submitted a form, or "/".
func refererPath(r *http.Request) string {
	referer := r.Referer()
	if referer == "" {
		return "/"
	}
	u, err := url.Parse(referer)
	if err != nil || !strings.HasPrefix(u.Path, "/") || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	return u.Path
}

func redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, refererPath(r), http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
