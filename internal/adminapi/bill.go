package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/mchsuite/billingd/internal/billing"
	"github.com/mchsuite/billingd/internal/domain"
)

type addLinePayload struct {
	ItemID     int64          `json:"itemId"`
	UnitPrice  *float64       `json:"unitPrice"`
	ServiceQty string         `json:"serviceQty"`
	Dosage     *domain.Dosage `json:"dosage"`
}

type imagingPayload struct {
	ItemID    int64    `json:"itemId"`
	Views     []string `json:"views"`
	UnitPrice *float64 `json:"unitPrice"`
	OffCharge bool     `json:"offCharge"`
}

func (s *Server) registerBillRoutes(g *echo.Group) {
	g.GET("/bill", s.getBill)
	g.POST("/bill/lines", s.addLine)
	g.POST("/bill/imaging", s.addImagingStudy)
	g.DELETE("/bill/lines/:index", s.removeLine)
	g.DELETE("/bill", s.clearBill)
}

func (s *Server) getBill(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"lines": s.cart.Lines(),
		"total": s.cart.Total(),
	})
}

// addLine composes a bill line from a catalog selection: dosage mode
// for medicine items when a prescription is supplied, service-quantity
// mode otherwise.
func (s *Server) addLine(c echo.Context) error {
	var payload addLinePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse line", err.Error())
	}
	item, err := s.engine.Item(payload.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Catalog item not found", payload.ItemID)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Item lookup failed", err.Error())
	}

	unitPrice := item.Price
	if payload.UnitPrice != nil {
		unitPrice = *payload.UnitPrice
	}

	var line domain.BillLineItem
	if billing.IsMedicine(*item) && payload.Dosage != nil {
		d := payload.Dosage
		qty, subtotal := billing.Dosage(unitPrice, d.Qty, d.Freq, d.Days)
		line = billing.LineFromItem(*item, unitPrice, qty, subtotal, d)
	} else {
		qty, subtotal := billing.ServiceQuantity(unitPrice, payload.ServiceQty)
		line = billing.LineFromItem(*item, unitPrice, qty, subtotal, nil)
	}

	return ok(c, map[string]interface{}{
		"lines": s.cart.Add(line),
		"total": s.cart.Total(),
	})
}

// addImagingStudy commits a view selection as a study line, plus the
// off-charge surcharge when flagged. Both lines land atomically.
func (s *Server) addImagingStudy(c echo.Context) error {
	var payload imagingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse study", err.Error())
	}
	item, err := s.engine.Item(payload.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Catalog item not found", payload.ItemID)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Item lookup failed", err.Error())
	}
	if !billing.IsImaging(*item) {
		return fail(c, http.StatusBadRequest, "NOT_IMAGING", "Item is not an imaging study", item.Name)
	}

	unitPrice := item.Price
	if payload.UnitPrice != nil {
		unitPrice = *payload.UnitPrice
	}
	lines, okLines := billing.StudyLines(*item, payload.Views, unitPrice, payload.OffCharge)
	if !okLines {
		return fail(c, http.StatusBadRequest, "NO_VIEWS", "At least one view must be selected", nil)
	}

	return ok(c, map[string]interface{}{
		"lines": s.cart.AddAll(lines...),
		"total": s.cart.Total(),
	})
}

func (s *Server) removeLine(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid line index", nil)
	}
	s.cart.Remove(index)
	return s.getBill(c)
}

func (s *Server) clearBill(c echo.Context) error {
	s.cart.Clear()
	return s.getBill(c)
}
