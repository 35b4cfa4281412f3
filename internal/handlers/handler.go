package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/accountsvc/internal/metrics"
	"github.com/prudhvinik1/accountsvc/internal/models"
	"github.com/prudhvinik1/accountsvc/internal/services"
	"go.uber.org/zap"
)

// AccountOperations is the account lifecycle surface exposed over HTTP.
type AccountOperations interface {
	Create(ctx context.Context, principal *services.Principal, req models.CreateAccountRequest) (*models.Account, error)
	UpdateInfo(ctx context.Context, principal *services.Principal, target string, req models.UpdateInfoRequest) (*models.Account, error)
	ChangePassword(ctx context.Context, principal *services.Principal, target string, req models.UpdatePasswordRequest) error
	ChangeLogin(ctx context.Context, principal *services.Principal, oldLogin string, req models.UpdateLoginRequest) error
	SoftDelete(ctx context.Context, principal *services.Principal, target string) error
	Restore(ctx context.Context, principal *services.Principal, target string) error
	ListActive(ctx context.Context, principal *services.Principal) ([]*models.Account, error)
	GetByLogin(ctx context.Context, principal *services.Principal, login string) (*models.AccountProfile, error)
	AuthenticateSelf(ctx context.Context, principal *services.Principal, login, password string) (*models.SelfProfile, error)
	ListOlderThan(ctx context.Context, principal *services.Principal, age int) ([]*models.Account, error)
}

type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Authenticate(token string) (*services.Principal, error)
}

type Handler struct {
	accounts AccountOperations
	auth     Authenticator
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewHandler(accounts AccountOperations, auth Authenticator, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		auth:     auth,
		metrics:  m,
		logger:   logger.Named("http"),
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	switch {
	case err == nil:
		h.metrics.ObserveLogin("success")
	case errors.Is(err, services.ErrInvalidCredentials):
		h.metrics.ObserveLogin("failure")
	default:
		h.metrics.ObserveLogin("error")
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	account, err := h.accounts.Create(r.Context(), PrincipalFromContext(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) updateInfo(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateInfoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	account, err := h.accounts.UpdateInfo(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "login"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "login"), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) changeLogin(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.accounts.ChangeLogin(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "login"), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListActive(r.Context(), PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) getByLogin(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.GetByLogin(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "login"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) authenticateSelf(w http.ResponseWriter, r *http.Request) {
	var req models.AuthenticateSelfRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	profile, err := h.accounts.AuthenticateSelf(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "login"), req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) listOlderThan(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(chi.URLParam(r, "age"))
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: age must be an integer", services.ErrInvalidArgument))
		return
	}

	accounts, err := h.accounts.ListOlderThan(r.Context(), PrincipalFromContext(r.Context()), age)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SoftDelete(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "login")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Restore(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "login")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
