package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review-collector/internal/conversation"
	"review-collector/internal/review"
)

// Options are the transport-level knobs the core treats as injected.
type Options struct {
	Addr             string
	ContactPrefix    string
	ListDefaultLimit int
	ListMaxLimit     int
}

// Server exposes the review-collection webhook plus the read-only listing and
// health endpoints.
type Server struct {
	machine *conversation.Machine
	store   *conversation.Store
	reviews review.Repository
	opts    Options
	server  *http.Server
}

func NewServer(machine *conversation.Machine, store *conversation.Store, reviews review.Repository, opts Options) *Server {
	if opts.ListDefaultLimit <= 0 {
		opts.ListDefaultLimit = 100
	}
	if opts.ListMaxLimit <= 0 {
		opts.ListMaxLimit = 1000
	}
	return &Server{
		machine: machine,
		store:   store,
		reviews: reviews,
		opts:    opts,
	}
}

// Handler builds the route table. Split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/whatsapp", s.handleWebhook)
	mux.HandleFunc("/api/reviews", s.handleListReviews)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Info().Str("addr", s.opts.Addr).Msg("starting webhook server")
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handleWebhook receives one provider callback: form-encoded From and Body.
// The reply rides back as the plain-text response body.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from := strings.TrimSpace(r.FormValue("From"))
	contact := strings.TrimSpace(strings.TrimPrefix(from, s.opts.ContactPrefix))
	if contact == "" {
		http.Error(w, "Missing 'From' in request", http.StatusBadRequest)
		return
	}

	// Opportunistic expiry pass, kept on the request path so idle processes
	// without the background sweep still shed stale records.
	s.store.Sweep()

	res := s.machine.Handle(r.Context(), contact, r.FormValue("Body"))

	status := http.StatusOK
	if res.Failed {
		status = http.StatusInternalServerError
	}
	log.Info().Str("contact", contact).Int("status", status).Msg("webhook handled")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(res.Reply))
}

type reviewResponse struct {
	ID          int64     `json:"id"`
	Contact     string    `json:"contact_number"`
	UserName    string    `json:"user_name"`
	ProductName string    `json:"product_name"`
	Text        string    `json:"product_review"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := queryInt(r, "limit", s.opts.ListDefaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > s.opts.ListMaxLimit {
		limit = s.opts.ListMaxLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.reviews.List(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("list reviews failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, reviewResponse{
			ID:          rev.ID,
			Contact:     rev.Contact,
			UserName:    rev.UserName,
			ProductName: rev.ProductName,
			Text:        rev.Text,
			CreatedAt:   rev.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
