package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/models"
	"github.com/username/partsviewer/backend/src/parsers"
	"github.com/username/partsviewer/backend/src/processors"
)

const (
	ckStagedUpload = "staged_upload_%s"

	DefaultUploadTTL     = 30 * time.Minute
	CacheCleanupInterval = 10 * time.Minute
)

type importServiceImpl struct {
	mapper       processors.ColumnMapper
	rowProcessor processors.ImportRowProcessor
	reconciler   *Reconciler
	notifier     Notifier
	uploadCache  *cache.Cache
}

// NewImportService wires the import pipeline. uploadCache holds parsed
// uploads between the stage and commit calls; when nil, a cache with
// DefaultUploadTTL is created. notifier may be nil.
func NewImportService(
	mapper processors.ColumnMapper,
	rowProcessor processors.ImportRowProcessor,
	reconciler *Reconciler,
	notifier Notifier,
	uploadCache *cache.Cache,
) ImportService {
	if uploadCache == nil {
		uploadCache = cache.New(DefaultUploadTTL, CacheCleanupInterval)
	}
	return &importServiceImpl{
		mapper:       mapper,
		rowProcessor: rowProcessor,
		reconciler:   reconciler,
		notifier:     notifier,
		uploadCache:  uploadCache,
	}
}

// Stage parses the upload completely and keeps it under a fresh token.
func (s *importServiceImpl) Stage(filename string, file io.Reader) (*StagedUpload, error) {
	parser, err := parsers.GetParser(filename)
	if err != nil {
		return nil, err
	}
	sheet, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	staged := &StagedUpload{
		Token:            uuid.NewString(),
		Filename:         filename,
		Headers:          sheet.Headers,
		RowCount:         len(sheet.Rows),
		SuggestedMapping: s.mapper.Suggest(sheet.Headers),
		sheet:            sheet,
	}
	s.uploadCache.Set(fmt.Sprintf(ckStagedUpload, staged.Token), staged, cache.DefaultExpiration)
	logger.L.Info("Upload staged", "token", staged.Token, "filename", filename, "rows", staged.RowCount, "columns", len(staged.Headers))
	return staged, nil
}

func (s *importServiceImpl) staged(token string) (*StagedUpload, error) {
	if cached, found := s.uploadCache.Get(fmt.Sprintf(ckStagedUpload, token)); found {
		if staged, ok := cached.(*StagedUpload); ok {
			return staged, nil
		}
	}
	return nil, ErrUploadNotFound
}

// Preview maps, classifies and validates every staged row without writing.
func (s *importServiceImpl) Preview(token string, mapping models.ColumnMapping) ([]models.ImportRow, error) {
	staged, err := s.staged(token)
	if err != nil {
		return nil, err
	}
	if missing := processors.MissingRequired(mapping); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrIncompleteMapping, missing)
	}
	return s.rowProcessor.Process(staged.sheet, mapping), nil
}

// Commit reconciles every staged row, invalid ones included so they are
// counted as skips, and drops the staged upload once the batch committed.
func (s *importServiceImpl) Commit(ctx context.Context, token string, mapping models.ColumnMapping) (*models.BatchResult, error) {
	rows, err := s.Preview(token, mapping)
	if err != nil {
		return nil, err
	}
	result, err := s.reconciler.BulkImport(ctx, rows)
	if err != nil {
		return nil, err
	}
	s.uploadCache.Delete(fmt.Sprintf(ckStagedUpload, token))
	s.notify(ctx, result)
	return result, nil
}

// BulkImport reconciles rows submitted directly as JSON.
func (s *importServiceImpl) BulkImport(ctx context.Context, rows []models.BulkRow) (*models.BatchResult, error) {
	if rows == nil {
		return nil, ErrMalformedBatch
	}
	result, err := s.reconciler.BulkImport(ctx, s.rowProcessor.FromBulk(rows))
	if err != nil {
		return nil, err
	}
	s.notify(ctx, result)
	return result, nil
}

func (s *importServiceImpl) notify(ctx context.Context, result *models.BatchResult) {
	if s.notifier == nil || len(result.PriceChanges) == 0 {
		return
	}
	if err := s.notifier.SendPriceChangeDigest(ctx, result.PriceChanges); err != nil {
		logger.L.Warn("Failed to send price change digest", "changes", len(result.PriceChanges), "error", err)
	}
}
