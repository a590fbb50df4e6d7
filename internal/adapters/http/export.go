package httpadapter

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/docufill/docufill/internal/core/domain"
)

var exportHeader = []string{"Field", "Type", "Description", "Context", "Value", "Filled"}

// exportPlaceholders streams the placeholder worksheet, one row per
// placeholder in document order. Used by reviewers who fill values offline.
func (rt *Router) exportPlaceholders(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.fetchDocument(w, r)
	if !ok {
		return
	}

	placeholders, err := rt.store.ListByDocument(r.Context(), doc.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	book, err := buildPlaceholderWorkbook(placeholders)
	if err != nil {
		writeError(w, err)
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="placeholders_`+doc.ID+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_ = book.Write(w)
}

func buildPlaceholderWorkbook(placeholders []domain.Placeholder) (*excelize.File, error) {
	book := excelize.NewFile()
	const sheet = "Placeholders"
	index, err := book.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := book.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, p := range placeholders {
		value := ""
		if p.FilledValue != nil {
			value = *p.FilledValue
		}
		cells := []any{p.StableName, string(p.Type), p.Description, p.Context, value, p.IsFilled}
		for col, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := book.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}
	return book, nil
}
