package services

import (
	"context"
	"io"

	"github.com/username/partsviewer/backend/src/model"
	"github.com/username/partsviewer/backend/src/models"
)

// CatalogWriter is the slice of the catalog the reconciler touches while a
// batch transaction is open.
type CatalogWriter interface {
	FindCategoryByName(ctx context.Context, name string) (*model.Category, error)
	FindPartByNameAndCode(ctx context.Context, name string, code *string) (*model.Part, error)
	InsertPart(ctx context.Context, p *model.Part) error
	UpdatePart(ctx context.Context, p *model.Part) error
	AppendHistory(ctx context.Context, partID string, before, after float64) (*model.HistoryEntry, error)
	AddNotification(ctx context.Context, n *model.Notification) error
}

// StagedUpload describes a parsed upload waiting for a mapping and commit.
type StagedUpload struct {
	Token            string               `json:"token"`
	Filename         string               `json:"filename"`
	Headers          []string             `json:"headers"`
	RowCount         int                  `json:"row_count"`
	SuggestedMapping models.ColumnMapping `json:"suggested_mapping"`

	sheet *models.Sheet
}

// ImportService drives the upload, preview and commit steps of an import.
type ImportService interface {
	Stage(filename string, file io.Reader) (*StagedUpload, error)
	Preview(token string, mapping models.ColumnMapping) ([]models.ImportRow, error)
	Commit(ctx context.Context, token string, mapping models.ColumnMapping) (*models.BatchResult, error)
	BulkImport(ctx context.Context, rows []models.BulkRow) (*models.BatchResult, error)
}

// PartInput is the payload for creating or editing a single part.
type PartInput struct {
	PartName   string   `json:"partname"`
	Vendor     string   `json:"vendor"`
	Price      *float64 `json:"price"`
	PriceUSD   *float64 `json:"price_usd"`
	PriceKRW   *float64 `json:"price_krw"`
	SAPCode    *string  `json:"sap_code"`
	CategoryID *string  `json:"category_id"`
}

// PartUpdateResult reports whether an edit recorded a price change.
type PartUpdateResult struct {
	Part    *model.Part `json:"part"`
	History bool        `json:"history"`
}

// CatalogService covers single-record catalog operations and read views.
type CatalogService interface {
	ListParts(ctx context.Context) ([]model.Part, error)
	SearchParts(ctx context.Context, keyword string) ([]model.Part, error)
	GetPart(ctx context.Context, id string) (*model.Part, error)
	AddPart(ctx context.Context, in PartInput) (*model.Part, error)
	UpdatePart(ctx context.Context, id string, in PartInput) (*PartUpdateResult, error)
	DeletePart(ctx context.Context, id string) error
	SetPartCategory(ctx context.Context, partID string, categoryID *string) error
	GetHistory(ctx context.Context, partID string) ([]model.HistoryEntry, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	AddCategory(ctx context.Context, c model.Category) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	GetStatistics(ctx context.Context) (*model.Statistics, error)

	ListNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	AddNotification(ctx context.Context, n model.Notification) (*model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// ExportService renders the catalog as a spreadsheet.
type ExportService interface {
	WriteXLSX(ctx context.Context, w io.Writer) error
	SaveXLSX(ctx context.Context) (string, error)
	Filename() string
}

// Notifier delivers a summary of committed price changes.
type Notifier interface {
	SendPriceChangeDigest(ctx context.Context, changes []models.PriceChange) error
}
