package auth

import (
	"errors"
	"net/http"
	"time"

	authUseCase "github.com/hilthontt/encore/internal/application/usecases/auth"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/security"
	"github.com/hilthontt/encore/internal/presentation/binding"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

type Handler struct {
	usecase authUseCase.AuthUseCase
	cookie  security.CookieConfig
	logger  *logger.Logger
}

func NewHandler(usecase authUseCase.AuthUseCase, cookie security.CookieConfig, logger *logger.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		cookie:  cookie,
		logger:  logger,
	}
}

func (h *Handler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	res, err := h.usecase.SignUp(r.Context(), req.FirstName, req.LastName, req.Pin)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.startSession(w, res, http.StatusCreated)
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	role := domain.RoleParticipant
	if req.Role != "" {
		role, _ = domain.ParseRole(req.Role)
	}

	res, err := h.usecase.Login(r.Context(), req.FirstName, req.LastName, req.Pin, role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.startSession(w, res, http.StatusOK)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := middlewares.GetActorFromContext(r.Context())
	if !ok {
		json.WriteUnauthorizedError(w)
		return
	}

	if err := h.usecase.Logout(r.Context(), actor); err != nil {
		h.writeError(w, r, err)
		return
	}

	security.ClearSessionCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startSession(w http.ResponseWriter, res *authUseCase.Result, status int) {
	security.SetSessionCookie(w, h.cookie, res.Token, time.Until(res.ExpiresAt))
	json.Write(w, status, sessionResponse{
		Actor:     res.Actor,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrAccountExists) {
		json.WriteError(w, http.StatusConflict, "An account with this name already exists. Try logging in instead.")
		return
	}
	if json.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error("auth request failed", zap.Error(err), zap.String("path", r.URL.Path))
	}
	json.WriteDomainError(w, err)
}
