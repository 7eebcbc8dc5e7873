package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"bhokexpress/internal/config"
	"bhokexpress/internal/middleware"
	"bhokexpress/internal/repository"
	"bhokexpress/internal/usecase"
)

type AuthHandler struct {
	authUC *usecase.AuthUsecase
	fdUC   *usecase.FreeDeliveryUsecase

	refreshTTL   time.Duration // refresh cookieの有効期限
	cookieSecure bool
}

// DI
func NewAuthHandler(
	authUC *usecase.AuthUsecase,
	fdUC *usecase.FreeDeliveryUsecase,
	refreshTTL time.Duration,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		authUC:       authUC,
		fdUC:         fdUC,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/refresh", h.refresh)

	e.POST("/auth/logout", h.logout,
		middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

	g := e.Group("/auth/user")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.GET("/freeDelivery", h.freeDelivery)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.authUC.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return writeError(c, err)
	}

	//refresh tokenはCookieで返し、bodyからは外す
	h.setRefreshCookie(c, out.RefreshToken)
	out.RefreshToken = ""

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	cookie, err := c.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.authUC.Refresh(c.Request().Context(), usecase.RefreshInput{
		RefreshToken: cookie.Value,
		UserAgent:    c.Request().UserAgent(),
	})
	if err != nil {
		return writeError(c, err)
	}

	h.setRefreshCookie(c, out.RefreshToken)
	out.RefreshToken = ""

	return c.JSON(http.StatusOK, out)
}

// POST /auth/logout
// 全端末ログアウト。refresh cookieも消す
func (h *AuthHandler) logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.authUC.Logout(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logout success"})
}

// GET /auth/user/freeDelivery
// 取れないときも200で0を返す（チェックアウトを止めない）
func (h *AuthHandler) freeDelivery(c echo.Context) error {
	userID, _ := getUserIDFromContext(c)
	out := h.fdUC.Remaining(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
