package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/username/partsviewer/backend/src/database"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/model"
	"github.com/username/partsviewer/backend/src/models"
	"github.com/username/partsviewer/backend/src/processors"
)

const ErrMsgInvalidRow = "invalid row data"

// Reconciler applies import batches to the catalog.
type Reconciler struct {
	store      *database.Store
	newCatalog func(q model.DBTX) CatalogWriter
}

func NewReconciler(store *database.Store) *Reconciler {
	return &Reconciler{
		store:      store,
		newCatalog: func(q model.DBTX) CatalogWriter { return model.NewCatalog(q) },
	}
}

type rowOutcome struct {
	inserted bool
	change   *models.PriceChange
}

// BulkImport inserts or updates one part per row, matching existing parts on
// (partname, sap_code). The whole batch runs in a single transaction; a row
// that fails is rolled back to its own savepoint and reported as skipped
// while the other rows still apply. Only a transaction-level failure returns
// an error, in which case nothing is kept.
func (r *Reconciler) BulkImport(ctx context.Context, rows []models.ImportRow) (*models.BatchResult, error) {
	result := &models.BatchResult{Errors: []models.RowError{}}
	if len(rows) == 0 {
		return result, nil
	}

	start := time.Now()
	logger.L.Info("BulkImport START", "rows", len(rows))

	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		catalog := r.newCatalog(tx)
		dups := processors.NewDuplicateTracker()

		for i, row := range rows {
			if msg := rowProblem(row); msg != "" {
				result.Skip(i, msg)
				continue
			}
			row.PartName = strings.TrimSpace(row.PartName)
			row.Vendor = strings.TrimSpace(row.Vendor)
			row.Category = strings.TrimSpace(row.Category)
			row.SAPCode = normalizeSAPCode(row.SAPCode)

			if !dups.Claim(processors.DedupKey(row.PartName, row.SAPCode)) {
				result.Skip(i, processors.ErrMsgDuplicateInFile)
				continue
			}

			var outcome rowOutcome
			err := database.Savepoint(ctx, tx, fmt.Sprintf("import_row_%d", i), func() error {
				var err error
				outcome, err = applyRow(ctx, catalog, row)
				return err
			})
			if err != nil {
				logger.L.Warn("Skipping import row after storage error", "index", i, "partname", row.PartName, "error", err)
				result.Skip(i, err.Error())
				continue
			}

			if outcome.inserted {
				result.Inserted++
			} else {
				result.Updated++
			}
			if outcome.change != nil {
				result.PriceChanges = append(result.PriceChanges, *outcome.change)
			}
		}
		return nil
	})
	if err != nil {
		logger.L.Error("BulkImport failed, batch rolled back", "error", err)
		return nil, fmt.Errorf("bulk import failed: %w", err)
	}

	logger.L.Info("BulkImport END",
		"inserted", result.Inserted, "updated", result.Updated, "skipped", result.Skipped,
		"priceChanges", len(result.PriceChanges), "duration", time.Since(start))
	return result, nil
}

// rowProblem returns why a row cannot be applied, or "" when it can.
func rowProblem(row models.ImportRow) string {
	if len(row.Errors) > 0 {
		return strings.Join(row.Errors, "; ")
	}
	if strings.TrimSpace(row.PartName) == "" || strings.TrimSpace(row.Vendor) == "" {
		return ErrMsgInvalidRow
	}
	if row.Price == nil || math.IsNaN(*row.Price) || math.IsInf(*row.Price, 0) {
		return ErrMsgInvalidRow
	}
	return ""
}

// normalizeSAPCode trims the code; a blank code is stored as NULL.
func normalizeSAPCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func applyRow(ctx context.Context, catalog CatalogWriter, row models.ImportRow) (rowOutcome, error) {
	var categoryID, categoryRaw *string
	if row.Category != "" {
		category, err := catalog.FindCategoryByName(ctx, row.Category)
		if err != nil {
			return rowOutcome{}, fmt.Errorf("category lookup failed: %w", err)
		}
		if category != nil {
			categoryID = &category.ID
		}
		name := row.Category
		categoryRaw = &name
	}

	existing, err := catalog.FindPartByNameAndCode(ctx, row.PartName, row.SAPCode)
	if err != nil {
		return rowOutcome{}, fmt.Errorf("duplicate check failed: %w", err)
	}

	newPrice := *row.Price
	if existing == nil {
		part := &model.Part{
			PartName:        row.PartName,
			Vendor:          row.Vendor,
			Price:           newPrice,
			PriceUSD:        row.PriceUSD,
			PriceKRW:        row.PriceKRW,
			SAPCode:         row.SAPCode,
			CategoryID:      categoryID,
			CategoryNameRaw: categoryRaw,
		}
		if err := catalog.InsertPart(ctx, part); err != nil {
			return rowOutcome{}, err
		}
		return rowOutcome{inserted: true}, nil
	}

	oldPrice := existing.Price
	existing.PartName = row.PartName
	existing.Vendor = row.Vendor
	existing.Price = newPrice
	existing.PriceUSD = row.PriceUSD
	existing.PriceKRW = row.PriceKRW
	existing.SAPCode = row.SAPCode
	// Without a category in the row the part keeps its current linkage.
	if row.Category != "" {
		existing.CategoryID = categoryID
		existing.CategoryNameRaw = categoryRaw
	}
	if err := catalog.UpdatePart(ctx, existing); err != nil {
		return rowOutcome{}, fmt.Errorf("update failed: %w", err)
	}

	if oldPrice == newPrice {
		return rowOutcome{}, nil
	}
	if _, err := catalog.AppendHistory(ctx, existing.ID, oldPrice, newPrice); err != nil {
		return rowOutcome{}, err
	}
	if err := catalog.AddNotification(ctx, &model.Notification{
		PartID:      existing.ID,
		Type:        model.NotificationPriceChange,
		Message:     model.PriceChangeMessage(existing.PartName, oldPrice, newPrice),
		PriceBefore: &oldPrice,
		PriceAfter:  &newPrice,
	}); err != nil {
		return rowOutcome{}, err
	}
	return rowOutcome{change: &models.PriceChange{
		PartID:   existing.ID,
		PartName: existing.PartName,
		Before:   oldPrice,
		After:    newPrice,
	}}, nil
}
