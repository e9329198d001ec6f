package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/partsviewer/backend/src/database"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/model"
	"github.com/username/partsviewer/backend/src/security/validation"
)

const (
	exportSheetName = "부품 목록"
	exportBlankSAP  = "-"
)

var (
	exportHeaders = []any{"부품명", "공급업체", "단가 (₩)", "SAP 코드", "등록일"}
	exportWidths  = []float64{20, 15, 15, 15, 12}
)

type exportServiceImpl struct {
	store     *database.Store
	exportDir string
	now       func() time.Time
}

// NewExportService writes saved exports under exportDir.
func NewExportService(store *database.Store, exportDir string) ExportService {
	return &exportServiceImpl{store: store, exportDir: exportDir, now: time.Now}
}

// Filename is the download name for today's export.
func (s *exportServiceImpl) Filename() string {
	return fmt.Sprintf("부품목록_%s.xlsx", s.now().Format("2006-01-02"))
}

func (s *exportServiceImpl) build(ctx context.Context) (*excelize.File, error) {
	parts, err := model.ListParts(ctx, s.store.DB())
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &exportHeaders); err != nil {
		f.Close()
		return nil, err
	}
	for i, p := range parts {
		sap := exportBlankSAP
		if p.SAPCode != nil && *p.SAPCode != "" {
			sap = validation.SanitizeForFormulaInjection(*p.SAPCode)
		}
		row := []any{
			validation.SanitizeForFormulaInjection(p.PartName),
			validation.SanitizeForFormulaInjection(p.Vendor),
			p.Price,
			sap,
			p.CreatedAt.Local().Format("2006-01-02"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	for i, width := range exportWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(exportSheetName, col, col, width); err != nil {
			f.Close()
			return nil, err
		}
	}
	logger.L.Debug("Export workbook built", "parts", len(parts))
	return f, nil
}

// WriteXLSX streams the catalog workbook to w.
func (s *exportServiceImpl) WriteXLSX(ctx context.Context, w io.Writer) error {
	f, err := s.build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build export workbook: %w", err)
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write export workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook into the export directory and returns its path.
func (s *exportServiceImpl) SaveXLSX(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", s.exportDir, err)
	}
	f, err := s.build(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build export workbook: %w", err)
	}
	defer f.Close()

	path := filepath.Join(s.exportDir, s.Filename())
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save export workbook: %w", err)
	}
	logger.L.Info("Catalog exported", "path", path)
	return path, nil
}
