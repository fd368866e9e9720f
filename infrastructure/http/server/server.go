package server

import (
	"chat-broadcaster/auth"
	"chat-broadcaster/contract"
	"chat-broadcaster/domain"
	"chat-broadcaster/errors"
	"chat-broadcaster/services"
	"chat-broadcaster/sink"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// leaveTimeout bounds the unsubscribe issued once a stream is gone.
const leaveTimeout = 5 * time.Second

type Config struct {
	SinkCapacity     int
	MaxMessageLength int
	AllowedOrigin    string
	// Metrics is mounted on /metrics when set
	Metrics http.Handler
}

type Server struct {
	log         *slog.Logger
	chatService services.IChatService
	authService services.IAuthService
	issuer      *auth.Issuer
	probe       contract.IHealthProbe
	config      Config
}

func NewServer(log *slog.Logger, chatService services.IChatService, authService services.IAuthService,
	issuer *auth.Issuer, probe contract.IHealthProbe, config Config) *Server {
	return &Server{
		log:         log,
		chatService: chatService,
		authService: authService,
		issuer:      issuer,
		probe:       probe,
		config:      config,
	}
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.log))
	router.Use(middleware.Recoverer)
	router.Use(cors(s.config.AllowedOrigin))
	router.Use(auth.Middleware(s.log, s.issuer))

	router.Get("/health", s.health)
	if s.config.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.config.Metrics)
	}
	router.Get("/chat", s.stream)
	router.Post("/chat/send", s.send)
	router.Get("/chat/history", s.history)
	router.Get("/chat/signup/{user_name}", s.signUp)
	router.Get("/chat/login", s.login)
	router.Get("/chat/logout", s.logout)
	return router
}

// stream holds a text/event-stream response open and forwards every frame of
// the connection sink until the client goes away or the sink is closed.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.FromContext(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	streamSink := sink.NewStreamSink(s.config.SinkCapacity)
	defer streamSink.Close()

	subscriber, err := s.chatService.Join(r.Context(), identity, streamSink)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer func() {
		// The request context is already canceled at this point
		ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
		defer cancel()
		if err := s.chatService.Leave(ctx, subscriber); err != nil {
			s.log.Warn("Unsubscribe not queued", "user_id", subscriber.UserID, "subscriber_id", subscriber.ID, "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.log.Debug("Stream opened", "user_id", identity.UserID, "subscriber_id", subscriber.ID)
	for {
		select {
		case <-r.Context().Done():
			s.log.Debug("Client disconnected", "user_id", identity.UserID, "subscriber_id", subscriber.ID)
			return
		case frame, ok := <-streamSink.Frames():
			if !ok {
				return
			}
			if err := writeFrame(w, frame); err != nil {
				s.log.Warn("Failed to push frame to stream",
					"user_id", identity.UserID,
					"subscriber_id", subscriber.ID,
					"error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// send accepts the raw request body as the message text.
func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.FromContext(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Runes take up to 4 bytes
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(s.config.MaxMessageLength)*4))
	if err != nil {
		s.writeError(w, errors.ErrInvalidMessage)
		return
	}

	if err := s.chatService.PostMessage(r.Context(), identity, string(body)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	messages, err := s.chatService.GetMessages(r.Context())
	if err != nil {
		s.log.Error("Reading history failed", "error", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageDTOs(messages))
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	session, err := s.authService.SignUp(chi.URLParam(r, "user_name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	auth.SetSessionCookie(w, session.Token, s.issuer.TTL())
	s.writeJSON(w, http.StatusOK, SessionDTO{UserID: int64(session.UserID), UserName: session.UserName})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.FromContext(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	session, err := s.authService.Login(identity)
	if err != nil {
		auth.ClearSessionCookie(w)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionDTO{UserID: int64(session.UserID), UserName: session.UserName})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.FromContext(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	auth.ClearSessionCookie(w)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	report := s.probe.Report(r.Context())
	status := http.StatusOK
	if report.Status != domain.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	s.writeJSON(w, status, ErrorDTO{Error: message})
}
