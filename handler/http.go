package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"VoteBot/model"
	"VoteBot/repo"
)

const requestIDHeader = "X-Request-ID"

type RouterConfig struct {
	DefaultRoom string
	StaticDir   string
	Metrics     http.Handler // GET /metrics, not mounted when nil
}

type MessageRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
	Room string `json:"room,omitempty"`
}

type MessageResponse struct {
	Messages []model.Message `json:"messages"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewRouter(d *Dispatcher, cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	chat := &chatHandler{dispatcher: d, defaultRoom: cfg.DefaultRoom}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/message", WithLogging(chat.PostMessage))

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Chat pane
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return mux
}

// WithLogging attaches a request scoped logger carrying the request id to the
// context, and logs the request.
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := log.With().Str("request_id", id).Logger()
		ctx := logger.WithContext(repo.WithRequestID(r.Context(), id))

		logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("request started")
		next(w, r.WithContext(ctx))
		logger.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Int64("duration_ms", time.Since(start).Milliseconds()).Msg("request completed")
	}
}

func JSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	JSONResponse(w, r, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

type chatHandler struct {
	dispatcher  *Dispatcher
	defaultRoom string
}

// PostMessage handles POST /api/message
func (h *chatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	room := req.Room
	if room == "" {
		room = h.defaultRoom
	}

	messages := h.dispatcher.Handle(r.Context(), room, req.User, req.Text)
	for i := range messages {
		messages[i].Text = strings.ReplaceAll(messages[i].Text, "\n", "<br>")
	}
	JSONResponse(w, r, http.StatusOK, MessageResponse{Messages: messages})
}
