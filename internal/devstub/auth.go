package devstub

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maueyecare/clinic/internal/session"
)

func (s *Server) handleLogin(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if grant := c.FormValue("grant_type"); grant != "" && grant != "password" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported grant_type")
	}

	u, ok := s.store.authenticate(username, password)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	}

	access, err := issueToken(s.jwtKey, u.ID, u.Role, accessTTL)
	if err != nil {
		return err
	}
	refresh, err := issueToken(s.jwtKey, u.ID, u.Role, refreshTTL)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (s *Server) handleBootstrap(c echo.Context) error {
	created := s.store.Bootstrap()
	msg := "Default user already exists."
	if created {
		msg = "Default user created."
		s.log.Info().Str("email", DefaultEmail).Msg("bootstrap created default user")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"created": created,
		"message": msg,
	})
}

func (s *Server) handleMe(c echo.Context) error {
	id, _ := c.Get(userIDKey).(int)
	u, ok := s.store.userByID(id)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return c.JSON(http.StatusOK, session.Profile{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	})
}
