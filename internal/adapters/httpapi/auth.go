package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/httpjson"
	"github.com/go-chi/chi/v5"
)

type ctxKey int

const userIDKey ctxKey = iota

// userID renvoie l'identifiant injecté par requireAuth.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// requireAuth résout le Bearer token en session et injecte le user id
// dans le contexte de la requête.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpjson.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		session, err := s.accounts.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrNotFound) || errors.Is(err, app.ErrExpired) {
				httpjson.WriteError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

type AuthHandler struct {
	accounts *app.AccountService
}

func NewAuthHandler(accounts *app.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/otp", h.requestCode)
		r.Post("/verify", h.verifyCode)
		r.Post("/logout", h.logout)
	})
}

type otpRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) requestCode(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	// Le code part dans les logs serveur, jamais dans la réponse.
	_, err := h.accounts.RequestCode(r.Context(), req.Email)
	if err != nil {
		writeCodedError(w, err)
		return
	}
	httpjson.Write(w, http.StatusAccepted, map[string]string{"status": "code sent"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	session, err := h.accounts.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		var coded *app.CodedError
		if errors.As(err, &coded) && coded.Code == "invalid_code" {
			httpjson.WriteError(w, http.StatusUnauthorized, coded.Message)
			return
		}
		writeCodedError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, session)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SignOut(r.Context(), bearerToken(r)); err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ProfileHandler struct {
	accounts *app.AccountService
}

func NewProfileHandler(accounts *app.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

func (h *ProfileHandler) Routes(r chi.Router) {
	r.Get("/profile", h.get)
	r.Put("/profile", h.put)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, profile)
}

func (h *ProfileHandler) put(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	updated, err := h.accounts.UpdateProfile(r.Context(), userID(r), req)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		writeCodedError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// writeCodedError traduit un CodedError en statut HTTP ; les erreurs de
// validation sont des 400, l'indisponibilité du store une 502.
func writeCodedError(w http.ResponseWriter, err error) {
	var coded *app.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case "validation_error":
			httpjson.WriteError(w, http.StatusBadRequest, coded.Message)
			return
		case "remote_unavailable":
			httpjson.WriteError(w, http.StatusBadGateway, coded.Message)
			return
		}
	}
	httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
}
