package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"saffron-order-desk/internal/catalog"
	"saffron-order-desk/internal/metrics"
	"saffron-order-desk/internal/order"
	"saffron-order-desk/internal/session"
	"saffron-order-desk/internal/storefront"
)

const (
	surface      = "web"
	cookieName   = "sf_session"
	maxFormBytes = 16 << 10
	maxNoteRunes = 1000
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

type Options struct {
	Sessions     *session.Store
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	CookieSecure bool
}

// Server is the browser storefront. Every visitor gets a cookie-keyed
// session in the shared store and all pages are rendered server side.
type Server struct {
	sessions     *session.Store
	cat          *catalog.Catalog
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tmpl         *template.Template
	cookieSecure bool
	mux          *http.ServeMux
}

func New(opts Options) (*Server, error) {
	if opts.Sessions == nil {
		return nil, errors.New("session store is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"add":     func(a, b int) int { return a + b },
		"qtyForm": newQuantityForm,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		sessions:     opts.Sessions,
		cat:          opts.Sessions.Catalog(),
		metrics:      opts.Metrics,
		logger:       logger,
		tmpl:         tmpl,
		cookieSecure: opts.CookieSecure,
		mux:          http.NewServeMux(),
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the routed storefront wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return withLogging(s.mux, s.logger)
}

func (s *Server) routes() error {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /products/{id}", s.handleProduct)
	s.mux.HandleFunc("POST /products/{id}/quantity", s.handleDraftQuantity)
	s.mux.HandleFunc("POST /products/{id}/add", s.handleAdd)
	s.mux.HandleFunc("GET /cart", s.handleCart)
	s.mux.HandleFunc("POST /cart/{id}/quantity", s.handleCartQuantity)
	s.mux.HandleFunc("POST /cart/{id}/remove", s.handleRemove)
	s.mux.HandleFunc("POST /cart/clear", s.handleClear)
	s.mux.HandleFunc("POST /cart/note", s.handleNote)
	s.mux.HandleFunc("GET /checkout", s.handleCheckout)
	s.mux.HandleFunc("GET /api/cart", s.handleAPICart)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	return nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	st := s.sessions.Update(key, func(st *storefront.State) { st.CloseAll() })
	s.render(w, http.StatusOK, st)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.cat.Lookup(id); err != nil {
		s.notFound(w, r, err)
		return
	}

	key := s.sessionKey(w, r)
	st := s.sessions.Update(key, func(st *storefront.State) {
		st.OpenProduct(id)
		if raw := r.URL.Query().Get("img"); raw != "" {
			if idx, err := strconv.Atoi(raw); err == nil {
				st.SelectImage(idx)
			}
		}
	})
	s.render(w, http.StatusOK, st)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	st := s.sessions.Update(key, func(st *storefront.State) { st.OpenCart() })
	s.render(w, http.StatusOK, st)
}

// handleDraftQuantity changes the draft quantity from the grid or the
// product view. A form "delta" steps the draft, otherwise "quantity" is
// parsed and clamped.
func (s *Server) handleDraftQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productFromForm(w, r)
	if !ok {
		return
	}
	s.applyQuantity(w, r, id)
	s.redirect(w, r, "/products/"+id)
}

func (s *Server) handleCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productFromForm(w, r)
	if !ok {
		return
	}
	s.applyQuantity(w, r, id)
	s.redirect(w, r, "/cart")
}

func (s *Server) applyQuantity(w http.ResponseWriter, r *http.Request, id string) {
	key := s.sessionKey(w, r)
	s.sessions.Update(key, func(st *storefront.State) {
		if raw := strings.TrimSpace(r.PostFormValue("delta")); raw != "" {
			if delta, err := strconv.Atoi(raw); err == nil {
				st.Order.StepDraft(id, delta)
			}
			return
		}
		st.Order.SetDraftText(id, r.PostFormValue("quantity"))
	})
	s.metrics.CartEvent(surface, "quantity")
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productFromForm(w, r)
	if !ok {
		return
	}

	key := s.sessionKey(w, r)
	s.sessions.Update(key, func(st *storefront.State) {
		if p, ok := st.ActiveProduct(); ok && p.ID == id {
			st.AddActiveProductToCart()
			return
		}
		st.AddToCart(id)
	})
	s.metrics.CartEvent(surface, "add")
	s.redirect(w, r, "/cart")
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productFromForm(w, r)
	if !ok {
		return
	}

	key := s.sessionKey(w, r)
	s.sessions.Update(key, func(st *storefront.State) { st.RemoveFromCart(id) })
	s.metrics.CartEvent(surface, "remove")
	s.redirect(w, r, "/cart")
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	s.sessions.Update(key, func(st *storefront.State) { st.ClearCart() })
	s.metrics.CartEvent(surface, "clear")
	s.redirect(w, r, "/cart")
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	note := r.PostFormValue("note")
	if runes := []rune(note); len(runes) > maxNoteRunes {
		note = string(runes[:maxNoteRunes])
	}

	key := s.sessionKey(w, r)
	s.sessions.Update(key, func(st *storefront.State) { st.Order.SetNote(note) })
	s.metrics.CartEvent(surface, "note")
	s.redirect(w, r, "/cart")
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	st := s.sessions.Get(key)
	s.metrics.Checkout(surface, st.Order.TotalItemCount())
	http.Redirect(w, r, st.Order.CheckoutLink(s.cat), http.StatusFound)
}

type cartItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	PriceRange string `json:"price_range"`
	Quantity   int    `json:"quantity"`
}

type cartResponse struct {
	Items       []cartItem `json:"items"`
	TotalItems  int        `json:"total_items"`
	Note        string     `json:"note,omitempty"`
	Message     string     `json:"message"`
	CheckoutURL string     `json:"checkout_url"`
}

func (s *Server) handleAPICart(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	st := s.sessions.Get(key)

	resp := cartResponse{
		Items:       []cartItem{},
		TotalItems:  st.Order.TotalItemCount(),
		Note:        strings.TrimSpace(st.Order.Note()),
		Message:     st.Order.Message(s.cat),
		CheckoutURL: st.Order.CheckoutLink(s.cat),
	}
	for _, l := range st.Order.Lines(s.cat) {
		resp.Items = append(resp.Items, cartItem{
			ID:         l.Product.ID,
			Name:       l.Product.Name,
			Unit:       l.Product.Unit,
			PriceRange: l.Product.PriceRange,
			Quantity:   l.Quantity,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// productFromForm parses the form and resolves the {id} path value,
// answering 400/404 itself when either fails.
func (s *Server) productFromForm(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return "", false
	}

	id := r.PathValue("id")
	if _, err := s.cat.Lookup(id); err != nil {
		s.notFound(w, r, err)
		return "", false
	}
	return id, true
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrUnknownProduct) {
		s.logger.Debug("unknown product", "path", r.URL.Path)
	}
	http.Error(w, "product not found", http.StatusNotFound)
}

// redirect sends the browser back after a POST. A local "back" form value
// wins over fallback.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if back := r.PostFormValue("back"); isLocalPath(back) {
		target = back
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isLocalPath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") {
		return false
	}
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	return !strings.ContainsAny(p, "\r\n")
}

// sessionKey returns the store key for the visitor, issuing a new cookie
// when the request has none or carries a malformed id.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return webKey(id.String())
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.AddCookie(&http.Cookie{Name: cookieName, Value: id})
	return webKey(id)
}

func webKey(id string) string {
	return "web:" + id
}

func (s *Server) render(w http.ResponseWriter, status int, st storefront.State) {
	var buf strings.Builder
	if err := s.tmpl.ExecuteTemplate(&buf, "page.html", newPageData(st)); err != nil {
		s.logger.Error("render failed", "view", st.View, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// quantityForm feeds the shared -/+ quantity template.
type quantityForm struct {
	Action string
	Back   string
	Value  int
	Min    int
	Max    int
}

func newQuantityForm(id string, value int, prefix, back string) quantityForm {
	return quantityForm{
		Action: prefix + id + "/quantity",
		Back:   back,
		Value:  value,
		Min:    order.MinQuantity,
		Max:    order.MaxQuantity,
	}
}

type productCard struct {
	catalog.Product
	Draft  int
	InCart int
}

type productDetail struct {
	productCard
	Gallery []string
	Image   string
	Index   int
	Prev    int
	Next    int
}

type cartView struct {
	Lines        []order.Line
	TotalItems   int
	Note         string
	Message      string
	CheckoutLink string
}

type pageData struct {
	Brand             catalog.Brand
	Products          []productCard
	ServiceHighlights []catalog.Highlight
	QualityChecklist  []string
	Fulfilment        []catalog.Highlight
	View              storefront.View
	Active            *productDetail
	Cart              cartView
	InquiryLink       string
	PhoneLink         template.URL
	MailLink          string
	MinQuantity       int
	MaxQuantity       int
	Year              int
}

func newPageData(st storefront.State) pageData {
	cat := st.Catalog()
	cart := st.Order.Cart()

	data := pageData{
		Brand:             cat.Brand,
		ServiceHighlights: cat.ServiceHighlights,
		QualityChecklist:  cat.QualityChecklist,
		Fulfilment:        cat.Fulfilment,
		View:              st.View,
		InquiryLink:       order.WhatsAppLink(cat.Brand.WhatsAppNumber, cat.Brand.DefaultMessage),
		PhoneLink:         template.URL(order.PhoneLink(cat.Brand.PhoneDisplay)),
		MailLink:          order.MailLink(cat.Brand.Email),
		MinQuantity:       order.MinQuantity,
		MaxQuantity:       order.MaxQuantity,
		Year:              time.Now().Year(),
		Cart: cartView{
			Lines:        st.Order.Lines(cat),
			TotalItems:   st.Order.TotalItemCount(),
			Note:         st.Order.Note(),
			Message:      st.Order.Message(cat),
			CheckoutLink: st.Order.CheckoutLink(cat),
		},
	}

	for _, p := range cat.Products {
		q, _ := cart.Quantity(p.ID)
		data.Products = append(data.Products, productCard{Product: p, Draft: st.Order.Draft(p.ID), InCart: q})
	}

	if p, ok := st.ActiveProduct(); ok {
		gallery := st.ActiveGallery()
		n := max(len(gallery), 1)
		q, _ := cart.Quantity(p.ID)
		data.Active = &productDetail{
			productCard: productCard{Product: p, Draft: st.Order.Draft(p.ID), InCart: q},
			Gallery:     gallery,
			Image:       st.ActiveImage(),
			Index:       st.GalleryIndex,
			Prev:        (st.GalleryIndex - 1 + n) % n,
			Next:        (st.GalleryIndex + 1) % n,
		}
	}
	return data
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "status", rec.status, "dur_ms", time.Since(start).Milliseconds())
	})
}
