package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/sot015/ocp-quiz-app/internal/app"
	"github.com/sot015/ocp-quiz-app/internal/auth"
	"github.com/sot015/ocp-quiz-app/internal/domain"
)

// Handler exposes the quiz session over a JSON API. Auth only guards the
// facilitator operations; everything else is open to participants.
type Handler struct {
	session   *app.Session
	auth      *auth.Auth
	publicURL string
	ws        *WSHandler
}

func NewHandler(session *app.Session, authz *auth.Auth, publicURL string) *Handler {
	return &Handler{
		session:   session,
		auth:      authz,
		publicURL: publicURL,
		ws:        NewWSHandler(session),
	}
}

// Routes builds the router. Read-only queries stay side-effect free, so they
// are safe for clients to poll aggressively.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", h.ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/rename", h.rename)
		r.Post("/submit", h.submit)
		r.Get("/state", h.state)
		r.Get("/leaderboard", h.leaderboard)
		r.Get("/qr", h.joinQR)
		r.Post("/admin/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)
			r.Post("/admin/start", h.start)
			r.Post("/admin/advance", h.advance)
			r.Post("/admin/reset", h.reset)
			r.Get("/admin/state", h.adminState)
		})
	})

	return r
}

type registerRequest struct {
	Name string `json:"name"`
}

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type submitRequest struct {
	Name   string `json:"name"`
	Option *int   `json:"option"`
}

type resetRequest struct {
	Hard bool `json:"hard"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type nameResponse struct {
	Name  string `json:"name"`
	Epoch string `json:"epoch"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	name, err := h.session.Register(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nameResponse{Name: name, Epoch: h.session.PublicState().Epoch})
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decode(w, r, &req) {
		return
	}
	name, err := h.session.Rename(req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nameResponse{Name: name, Epoch: h.session.PublicState().Epoch})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.session.Submit(req.Name, req.Option); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.session.PublicState())
}

func (h *Handler) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.session.PublicState())
}

func (h *Handler) leaderboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Leaderboard())
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	token, ok := h.auth.Login(req.Password)
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Start(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.session.AdminState())
}

func (h *Handler) advance(w http.ResponseWriter, _ *http.Request) {
	if err := h.session.Advance(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.session.AdminState())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if r.ContentLength > 0 && !decode(w, r, &req) {
		return
	}
	if req.Hard {
		h.session.ResetHard()
	} else {
		h.session.ResetSoft()
	}
	writeJSON(w, http.StatusOK, h.session.AdminState())
}

func (h *Handler) adminState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.session.AdminState())
}

// joinQR renders a PNG QR code of the join URL for the facilitator to
// project.
func (h *Handler) joinQR(w http.ResponseWriter, r *http.Request) {
	target := h.publicURL
	if target == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		target = scheme + "://" + r.Host + "/"
	}
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Error: "invalid JSON payload"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest, "invalid_name"
	case errors.Is(err, domain.ErrNameTaken):
		return http.StatusConflict, "name_taken"
	case errors.Is(err, domain.ErrNotRegistered):
		return http.StatusNotFound, "not_registered"
	case errors.Is(err, domain.ErrQuizInProgress):
		return http.StatusConflict, "quiz_in_progress"
	case errors.Is(err, domain.ErrNotAcceptingAnswers):
		return http.StatusConflict, "not_accepting_answers"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrNotStarted):
		return http.StatusConflict, "not_started"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
