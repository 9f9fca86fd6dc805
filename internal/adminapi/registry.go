package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mchsuite/billingd/internal/domain"
)

type itemPayload struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
	Strength string  `json:"strength"`
	Category string  `json:"category"`
}

func (s *Server) registerRegistryRoutes(g *echo.Group) {
	g.GET("/registry", s.listItems)
	g.POST("/registry", s.upsertItem)
	g.PUT("/registry", s.replaceItems)
	g.DELETE("/registry/:id", s.deleteItem)
	g.POST("/registry/import.csv", s.importItemsCSV)
	g.GET("/registry/export.xlsx", s.exportItemsXLSX)
}

func (s *Server) listItems(c echo.Context) error {
	page, pageSize := parsePagination(c)
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	category := strings.TrimSpace(c.QueryParam("category"))

	all := s.cache.Items()
	filtered := all[:0]
	for _, item := range all {
		if category != "" && item.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(item.Name), q) {
			continue
		}
		filtered = append(filtered, item)
	}

	total := int64(len(filtered))
	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return paged(c, filtered[start:end], total, page, pageSize)
}

func (s *Server) upsertItem(c echo.Context) error {
	var payload itemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_NAME", "Item name is required", nil)
	}
	if payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_PRICE", "Price must not be negative", nil)
	}
	item := domain.RegistryItem{
		ID:       payload.ID,
		Name:     payload.Name,
		Price:    payload.Price,
		Type:     payload.Type,
		Strength: payload.Strength,
		Category: payload.Category,
	}
	if item.ID == 0 {
		item.ID = time.Now().UnixMilli()
	}
	if err := s.engine.UpsertItem(&item); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save item", err.Error())
	}
	s.resync()
	return ok(c, item)
}

func (s *Server) replaceItems(c echo.Context) error {
	var items []domain.RegistryItem
	if err := c.Bind(&items); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item list", err.Error())
	}
	if err := s.engine.ReplaceItems(items); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Registry rewrite failed", err.Error())
	}
	s.resync()
	return ok(c, map[string]int{"count": len(items)})
}

func (s *Server) deleteItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}
	if err := s.engine.DeleteItem(id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete item", err.Error())
	}
	s.resync()
	return ok(c, map[string]int64{"id": id})
}
