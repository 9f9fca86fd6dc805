package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type categoryPayload struct {
	Name string `json:"name"`
}

func (s *Server) registerCategoryRoutes(g *echo.Group) {
	g.GET("/categories", s.listCategories)
	g.POST("/categories", s.addCategory)
	g.PUT("/categories", s.replaceCategories)
	g.DELETE("/categories/:name", s.deleteCategory)
}

func (s *Server) listCategories(c echo.Context) error {
	return ok(c, s.cache.Categories())
}

func (s *Server) addCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := s.engine.AddCategory(payload.Name); err != nil {
		return fail(c, http.StatusConflict, "CATEGORY_REJECTED", "Category not added", err.Error())
	}
	s.resync()
	return ok(c, payload.Name)
}

func (s *Server) replaceCategories(c echo.Context) error {
	var names []string
	if err := c.Bind(&names); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category list", err.Error())
	}
	if err := s.engine.ReplaceCategories(names); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Category rewrite failed", err.Error())
	}
	s.resync()
	return ok(c, map[string]int{"count": len(names)})
}

// deleteCategory cascades: the category's items and any terminal
// buttons mapped to it are removed in the same transaction.
func (s *Server) deleteCategory(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_NAME", "Category name is required", nil)
	}
	if err := s.engine.DeleteCategory(name); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	s.resync()
	return ok(c, name)
}
