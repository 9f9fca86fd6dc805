// Package adminapi exposes the registry and cart to terminal UIs over
// HTTP. It is a thin collaborator: every invariant lives in the engine
// and cart packages, the handlers only translate requests.
package adminapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mchsuite/billingd/internal/billing"
	"github.com/mchsuite/billingd/internal/registry"
)

type Server struct {
	echo   *echo.Echo
	engine *registry.Engine
	cache  *registry.Cache
	cart   *billing.Cart
}

func NewServer(engine *registry.Engine, cache *registry.Cache, cart *billing.Cart) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		engine: engine,
		cache:  cache,
		cart:   cart,
	}

	api := e.Group("/api")
	s.registerRegistryRoutes(api)
	s.registerCategoryRoutes(api)
	s.registerButtonRoutes(api)
	s.registerSnapshotRoutes(api)
	s.registerBillRoutes(api)
	return s
}

func (s *Server) Start(addr string) error {
	zap.L().Info("admin api listening", zap.String("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// resync repopulates the catalog cache after an engine mutation.
func (s *Server) resync() {
	if err := s.cache.Reload(s.engine); err != nil {
		zap.L().Error("catalog cache reload failed", zap.Error(err))
	}
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("not positive")
	}
	return v, nil
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 50
	if p := c.QueryParam("page"); p != "" {
		if v, err := parsePositiveInt(p); err == nil {
			page = v
		}
	}
	if ps := c.QueryParam("perPage"); ps != "" {
		if v, err := parsePositiveInt(ps); err == nil && v <= 500 {
			pageSize = v
		}
	}
	return page, pageSize
}
