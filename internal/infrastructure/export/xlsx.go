package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

const (
	buildSheet        = "Build"
	requirementsSheet = "Requirements"
)

// FileName download name for a saved build
func FileName(b entity.SavedBuild) string {
	id := b.ID
	if id == "" {
		id = "draft"
	}
	return fmt.Sprintf("build_%s.xlsx", id)
}

// BuildXLSX renders a saved build as a workbook: parts on the first sheet,
// the original requirements on the second.
func BuildXLSX(b entity.SavedBuild) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), buildSheet); err != nil {
		return nil, err
	}
	if err := writeRows(f, buildSheet, buildRows(b.Build)); err != nil {
		return nil, err
	}

	if b.Build.Input != nil {
		if _, err := f.NewSheet(requirementsSheet); err != nil {
			return nil, err
		}
		if err := writeRows(f, requirementsSheet, requirementRows(*b.Build.Input)); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(buildSheet, "A", "A", 16); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(buildSheet, "B", "C", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(buildSheet, "D", "D", 80); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildRows(rec entity.BuildRecommendation) [][]interface{} {
	rows := [][]interface{}{{"Category", "Part", "Price (CAD)", "Justification"}}
	for _, cc := range rec.Components() {
		rows = append(rows, []interface{}{
			strings.ReplaceAll(cc.Category, "_", " "),
			cc.Component.Name,
			cc.Component.PriceCAD,
			cc.Component.Justification,
		})
	}
	total, _ := rec.TotalCAD()
	rows = append(rows, []interface{}{"Total", "", total, ""})
	return rows
}

func requirementRows(req entity.BuildRequest) [][]interface{} {
	rows := [][]interface{}{
		{"Field", "Value"},
		{"Budget (CAD)", req.Budget},
		{"Minimum FPS", req.MinFps},
		{"Games", strings.Join(req.GamesList, ", ")},
		{"Display resolution", req.DisplayResolution},
		{"Graphical quality", req.GraphicalQuality},
	}
	for _, part := range req.PreOwnedHardware {
		rows = append(rows, []interface{}{"Pre-owned " + part.Type, part.Name})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
