package adminapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/mchsuite/billingd/internal/domain"
)

// csvItem is one row of an uploaded price list. Missing ids are
// assigned at import so hand-edited sheets need not manage them.
type csvItem struct {
	ID       int64   `csv:"id"`
	Name     string  `csv:"name"`
	Price    float64 `csv:"price"`
	Type     string  `csv:"type"`
	Strength string  `csv:"strength"`
	Category string  `csv:"category"`
}

// importItemsCSV bulk-reseeds the registry from a CSV price list. The
// whole upload lands as one transactional rewrite or not at all.
func (s *Server) importItemsCSV(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "CSV file is required", err.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open upload", err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read upload", err.Error())
	}

	var rows []csvItem
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CSV", "CSV parse failed", err.Error())
	}

	// generated ids start past the highest explicit id so a mixed sheet
	// can never collide with itself
	var nextID int64
	for _, row := range rows {
		if row.ID > nextID {
			nextID = row.ID
		}
	}

	now := time.Now().UnixMilli()
	items := make([]domain.RegistryItem, 0, len(rows))
	for _, row := range rows {
		id := row.ID
		if id == 0 {
			nextID++
			id = nextID
		}
		items = append(items, domain.RegistryItem{
			ID:        id,
			Name:      row.Name,
			Price:     row.Price,
			Type:      row.Type,
			Strength:  row.Strength,
			Category:  row.Category,
			UpdatedAt: now,
		})
	}
	if err := s.engine.ReplaceItems(items); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Registry rewrite failed", err.Error())
	}
	s.resync()
	return ok(c, map[string]int{"count": len(items)})
}

// exportItemsXLSX downloads the full price list as a spreadsheet.
func (s *Server) exportItemsXLSX(c echo.Context) error {
	items, err := s.engine.Items()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list items", err.Error())
	}

	xlsx := excelize.NewFile()
	const sheet = "Sheet1"
	headers := []string{"ID", "Name", "Price", "Type", "Strength", "Category", "Updated"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, item := range items {
		row := i + 2
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.ID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.Name)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Price)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Type)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Strength)
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.Category)
		xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row),
			time.UnixMilli(item.UpdatedAt).Format("2006-01-02 15:04"))
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Spreadsheet build failed", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="price-list.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
