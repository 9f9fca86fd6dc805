package adminapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mchsuite/billingd/internal/registry"
)

type queryPayload struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params"`
}

func (s *Server) registerSnapshotRoutes(g *echo.Group) {
	g.POST("/query", s.executeQuery)
	g.GET("/snapshot", s.downloadSnapshot)
	g.POST("/snapshot", s.restoreSnapshot)
	g.POST("/reseed", s.reseedDefaults)
	g.POST("/flush", s.flushNow)
}

// executeQuery is the operational escape hatch: raw statements against
// the embedded engine, rows back as ordered field/value mappings.
func (s *Server) executeQuery(c echo.Context) error {
	var payload queryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse query", err.Error())
	}
	result, err := s.engine.Query(payload.SQL, payload.Params...)
	if err != nil {
		return fail(c, http.StatusBadRequest, "QUERY_FAILED", "Statement failed", err.Error())
	}
	return ok(c, result)
}

func (s *Server) downloadSnapshot(c echo.Context) error {
	blob, err := s.engine.ExportSnapshot()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Snapshot export failed", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="mch_main.sqlite"`)
	return c.Blob(http.StatusOK, "application/x-sqlite3", blob)
}

// restoreSnapshot accepts the database blob either as a multipart
// "file" field or as the raw request body.
func (s *Server) restoreSnapshot(c echo.Context) error {
	blob, err := snapshotBody(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read snapshot", err.Error())
	}
	if err := s.engine.ImportSnapshot(blob); err != nil {
		if errors.Is(err, registry.ErrImportFormat) {
			return fail(c, http.StatusBadRequest, "INVALID_SNAPSHOT", "Not a valid catalog database", nil)
		}
		return fail(c, http.StatusInternalServerError, "IMPORT_FAILED", "Snapshot import failed", err.Error())
	}
	s.resync()
	return ok(c, map[string]int{"bytes": len(blob)})
}

func snapshotBody(c echo.Context) ([]byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request().Body)
}

func (s *Server) reseedDefaults(c echo.Context) error {
	if err := s.engine.SeedDefaults(); err != nil {
		return fail(c, http.StatusInternalServerError, "RESEED_FAILED", "Default reseed failed", err.Error())
	}
	s.resync()
	return ok(c, "reseeded")
}

func (s *Server) flushNow(c echo.Context) error {
	if err := s.engine.FlushNow(); err != nil {
		return fail(c, http.StatusInternalServerError, "FLUSH_FAILED", "Durable write failed", err.Error())
	}
	return ok(c, "flushed")
}
