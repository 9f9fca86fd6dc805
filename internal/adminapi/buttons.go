package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mchsuite/billingd/internal/domain"
)

func (s *Server) registerButtonRoutes(g *echo.Group) {
	g.GET("/buttons", s.listButtons)
	g.PUT("/buttons", s.replaceButtons)
}

func (s *Server) listButtons(c echo.Context) error {
	terminal := strings.TrimSpace(c.QueryParam("terminal"))
	switch terminal {
	case "", domain.TerminalOutpatient, domain.TerminalInpatient:
	default:
		return fail(c, http.StatusBadRequest, "INVALID_TERMINAL", "Unknown terminal", terminal)
	}
	return ok(c, s.cache.Buttons(terminal))
}

func (s *Server) replaceButtons(c echo.Context) error {
	var buttons []domain.TerminalButton
	if err := c.Bind(&buttons); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse button list", err.Error())
	}
	if err := s.engine.ReplaceButtons(buttons); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Button rewrite failed", err.Error())
	}
	s.resync()
	return ok(c, map[string]int{"count": len(buttons)})
}
