package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/utils"
)

// AuthHandler issues access tokens.  Identity is asserted by the external
// sign-in provider on the client; this service only signs it.
type AuthHandler struct {
	Secret string
	TTL    time.Duration
}

// NewAuthHandler signs tokens with secret, each valid for ttl.
func NewAuthHandler(secret string, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthHandler{Secret: secret, TTL: ttl}
}

type tokenReq struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// IssueToken: POST /jwt.
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var req tokenReq
	if err := bind(c, &req); err != nil {
		return err
	}
	tok, err := utils.NewAccessToken(h.Secret, strings.TrimSpace(req.Email), req.Name, h.TTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"token": tok.Token})
}
