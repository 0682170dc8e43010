package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/gatehouse/internal/core/domain"
	logicv1 "github.com/duynhne/gatehouse/internal/logic/v1"
	"github.com/duynhne/gatehouse/internal/token"
	"github.com/duynhne/gatehouse/middleware"
)

// Handler groups HTTP handlers for the auth API. Dependencies are
// injected via the constructor — no global state.
type Handler struct {
	auth *logicv1.AuthService
	// secureCookies marks the session cookie Secure; enabled in
	// production.
	secureCookies bool
}

// NewHandler creates a new Handler with the given AuthService.
func NewHandler(auth *logicv1.AuthService, secureCookies bool) *Handler {
	return &Handler{auth: auth, secureCookies: secureCookies}
}

// RegisterRoutes registers the API routes on the given router. The
// access gate must already be installed; admin routes rely on it for
// their first line of defense.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/logout", h.Logout)
	r.GET("/api/auth/me", h.GetMe)
	r.GET("/api/overlay/access", h.OverlayAccess)
	r.GET("/api/admin/users", h.ListUsers)
	r.PATCH("/api/admin/users/:id", h.UpdateUserRole)
	r.DELETE("/api/admin/users/:id", h.DeleteUser)
}

// setSessionCookie places the signed token in the session cookie with
// the transport attributes the session contract requires.
func (h *Handler) setSessionCookie(c *gin.Context, signed string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, signed, int(token.TTL.Seconds()), "/", "", h.secureCookies, true)
}

// clearSessionCookie expires the session cookie immediately.
func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.login", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials), errors.Is(err, logicv1.ErrUserNotFound):
			// One message for both factors so accounts are not
			// enumerable.
			logger.Warn().Err(err).Msg("Login rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			logger.Error().Err(err).Msg("Login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	h.setSessionCookie(c, response.Token)
	logger.Info().Str("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.register", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Msg("Registration failed")

		switch {
		case errors.Is(err, logicv1.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		case errors.Is(err, logicv1.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	h.setSessionCookie(c, response.Token)
	logger.Info().Str("user_id", response.User.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, response)
}

// Logout handles POST /api/auth/logout. It always clears the cookie
// and returns 200; revoking an unknown or expired token is a no-op,
// and even a store failure must not leave the client logged in.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.logout", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	cookieToken, _ := c.Cookie(middleware.SessionCookie)

	if err := h.auth.Logout(ctx, cookieToken); err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Session revocation failed; cookie cleared anyway")
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMe handles GET /api/auth/me. Unlike the gate, it also requires a
// live session row, so a logged-out token is reported as no session.
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.me", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	cookieToken, _ := c.Cookie(middleware.SessionCookie)

	user, err := h.auth.CurrentSession(ctx, cookieToken)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrSessionNotFound), errors.Is(err, logicv1.ErrSessionExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
		default:
			logger.Error().Err(err).Msg("Session lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// OverlayAccess handles GET /api/overlay/access: the fine-grained role
// check for embeddable gated regions. An optional "role" query param
// names the minimum role the region requires.
func (h *Handler) OverlayAccess(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.overlay_access", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	caller := middleware.PayloadFromContext(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"hasAccess": false, "message": "Not authenticated"})
		return
	}

	check, err := h.auth.CheckAccess(ctx, caller, c.Query("role"))
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, logicv1.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, check)
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.admin_list_users", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	users, err := h.auth.ListUsers(ctx, middleware.PayloadFromContext(c))
	if err != nil {
		h.renderAdminError(c, span, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserRole handles PATCH /api/admin/users/:id.
func (h *Handler) UpdateUserRole(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.admin_update_role", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	var req domain.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role is required"})
		return
	}

	user, err := h.auth.UpdateUserRole(ctx, middleware.PayloadFromContext(c), c.Param("id"), req.Role)
	if err != nil {
		h.renderAdminError(c, span, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.admin_delete_user", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	if err := h.auth.DeleteUser(ctx, middleware.PayloadFromContext(c), c.Param("id")); err != nil {
		h.renderAdminError(c, span, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// renderAdminError maps logic-layer errors from the admin operations to
// HTTP responses, by error kind only.
func (h *Handler) renderAdminError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)

	switch {
	case errors.Is(err, logicv1.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, logicv1.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
	case errors.Is(err, logicv1.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Admin operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
