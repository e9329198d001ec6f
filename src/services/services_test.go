package services

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/partsviewer/backend/src/model"
	"github.com/username/partsviewer/backend/src/models"
	"github.com/username/partsviewer/backend/src/processors"
)

func newTestImportService(t *testing.T) (ImportService, *MockEmailService, *Reconciler) {
	t.Helper()
	store := openTestStore(t)
	mapper := processors.NewColumnMapper()
	notifier := &MockEmailService{Recipient: "buyer@example.com"}
	reconciler := NewReconciler(store)
	svc := NewImportService(mapper, processors.NewImportRowProcessor(mapper), reconciler, notifier,
		cache.New(time.Minute, time.Minute))
	return svc, notifier, reconciler
}

const sampleCSV = "partname,vendor,price,sap_code\n" +
	"R1,AJA,1200원,\n" +
	"C1,X,$5,S-1\n" +
	",X,$1,\n" +
	"R1,AJA,1300원,\n"

func TestImportServiceStagePreviewCommit(t *testing.T) {
	svc, notifier, _ := newTestImportService(t)
	ctx := context.Background()

	staged, err := svc.Stage("parts.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.NotEmpty(t, staged.Token)
	require.Equal(t, 4, staged.RowCount)
	require.Equal(t, "partname", staged.SuggestedMapping.PartName)
	require.Equal(t, "price", staged.SuggestedMapping.Price)
	require.Equal(t, "sap_code", staged.SuggestedMapping.SAPCode)

	preview, err := svc.Preview(staged.Token, staged.SuggestedMapping)
	require.NoError(t, err)
	require.Len(t, preview, 4)
	require.Empty(t, preview[0].Errors)
	require.Equal(t, []string{processors.ErrMsgPartNameMissing}, preview[2].Errors)
	require.Equal(t, []string{processors.ErrMsgDuplicateInFile}, preview[3].Errors)

	res, err := svc.Commit(ctx, staged.Token, staged.SuggestedMapping)
	require.NoError(t, err)
	require.Equal(t, 2, res.Inserted)
	require.Equal(t, 2, res.Skipped)
	require.Equal(t, 4, res.Inserted+res.Updated+res.Skipped)
	require.Empty(t, notifier.Sent(), "no price changed")

	_, err = svc.Preview(staged.Token, staged.SuggestedMapping)
	require.ErrorIs(t, err, ErrUploadNotFound, "committed uploads are dropped")
}

func TestImportServiceNotifiesOnPriceChange(t *testing.T) {
	svc, notifier, _ := newTestImportService(t)
	ctx := context.Background()

	_, err := svc.BulkImport(ctx, []models.BulkRow{{PartName: "C1", Vendor: "X", Price: "$5"}})
	require.NoError(t, err)
	res, err := svc.BulkImport(ctx, []models.BulkRow{{PartName: "C1", Vendor: "X", Price: "$7"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, 5.0, sent[0][0].Before)
	require.Equal(t, 7.0, sent[0][0].After)
}

func TestImportServiceErrors(t *testing.T) {
	svc, _, _ := newTestImportService(t)

	_, err := svc.Stage("parts.txt", strings.NewReader("x"))
	require.Error(t, err)

	_, err = svc.Stage("parts.csv", strings.NewReader("partname,vendor,price\n"))
	require.ErrorIs(t, err, ErrParsingFailed)

	_, err = svc.Preview("missing", models.ColumnMapping{})
	require.ErrorIs(t, err, ErrUploadNotFound)

	staged, err := svc.Stage("parts.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	_, err = svc.Preview(staged.Token, models.ColumnMapping{PartName: "partname"})
	require.ErrorIs(t, err, ErrIncompleteMapping)

	_, err = svc.BulkImport(context.Background(), nil)
	require.ErrorIs(t, err, ErrMalformedBatch)
}

func TestCatalogServiceUpdatePartHistory(t *testing.T) {
	store := openTestStore(t)
	svc := NewCatalogService(store)
	ctx := context.Background()
	price := func(v float64) *float64 { return &v }

	_, err := svc.AddPart(ctx, PartInput{PartName: " ", Vendor: "X", Price: price(1)})
	require.ErrorIs(t, err, ErrInvalidPart)

	p, err := svc.AddPart(ctx, PartInput{PartName: "C1", Vendor: "X", Price: price(5)})
	require.NoError(t, err)

	res, err := svc.UpdatePart(ctx, p.ID, PartInput{PartName: "C1", Vendor: "X", Price: price(5)})
	require.NoError(t, err)
	require.False(t, res.History)

	res, err = svc.UpdatePart(ctx, p.ID, PartInput{PartName: "C1", Vendor: "Y", Price: price(8)})
	require.NoError(t, err)
	require.True(t, res.History)
	require.Equal(t, "Y", res.Part.Vendor)

	history, err := svc.GetHistory(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 5.0, *history[0].PriceBefore)

	_, err = svc.UpdatePart(ctx, "nope", PartInput{PartName: "C1", Vendor: "X", Price: price(1)})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCatalogServiceCategories(t *testing.T) {
	store := openTestStore(t)
	svc := NewCatalogService(store)
	ctx := context.Background()
	price := 1.0

	_, err := svc.AddCategory(ctx, model.Category{Name: ""})
	require.ErrorIs(t, err, ErrInvalidCategory)

	cat, err := svc.AddCategory(ctx, model.Category{Name: "Diodes"})
	require.NoError(t, err)
	p, err := svc.AddPart(ctx, PartInput{PartName: "1N4148", Vendor: "X", Price: &price})
	require.NoError(t, err)

	require.NoError(t, svc.SetPartCategory(ctx, p.ID, &cat.ID))
	got, err := svc.GetPart(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Diodes", *got.CategoryName)

	found, err := svc.SearchParts(ctx, "diod")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Empty(t, cats)
}

func TestExportServiceWritesWorkbook(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	sap := "S-1"
	require.NoError(t, model.InsertPart(ctx, store.DB(), &model.Part{PartName: "R1", Vendor: "AJA", Price: 1200}))
	require.NoError(t, model.InsertPart(ctx, store.DB(), &model.Part{PartName: "C1", Vendor: "X", Price: 5, SAPCode: &sap}))
	formula := "-SUM(A1)"
	require.NoError(t, model.InsertPart(ctx, store.DB(), &model.Part{PartName: "F1", Vendor: "X", Price: 1, SAPCode: &formula}))

	svc := NewExportService(store, t.TempDir()).(*exportServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	require.Equal(t, "부품목록_2024-03-09.xlsx", svc.Filename())

	var buf bytes.Buffer
	require.NoError(t, svc.WriteXLSX(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, []string{"부품명", "공급업체", "단가 (₩)", "SAP 코드", "등록일"}, rows[0])

	bySAP := map[string]string{}
	for _, r := range rows[1:] {
		bySAP[r[0]] = r[3]
	}
	require.Equal(t, map[string]string{"R1": "-", "C1": "S-1", "F1": "'-SUM(A1)"}, bySAP,
		"blank codes export as a bare dash; real codes are still guarded")

	path, err := svc.SaveXLSX(ctx)
	require.NoError(t, err)
	require.Equal(t, "부품목록_2024-03-09.xlsx", filepath.Base(path))
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) SendPriceChangeDigest(context.Context, []models.PriceChange) error {
	f.calls++
	return errors.New("smtp down")
}

func TestImportServiceDefaultsUploadCache(t *testing.T) {
	mapper := processors.NewColumnMapper()
	svc := NewImportService(mapper, processors.NewImportRowProcessor(mapper), nil, nil, nil).(*importServiceImpl)
	require.NotNil(t, svc.uploadCache)

	svc.uploadCache.Set("k", 1, cache.DefaultExpiration)
	_, expires, found := svc.uploadCache.GetWithExpiration("k")
	require.True(t, found)
	require.WithinDuration(t, time.Now().Add(DefaultUploadTTL), expires, time.Minute)
}

func TestImportServiceIgnoresNotifierFailure(t *testing.T) {
	store := openTestStore(t)
	mapper := processors.NewColumnMapper()
	notifier := &failingNotifier{}
	svc := NewImportService(mapper, processors.NewImportRowProcessor(mapper), NewReconciler(store), notifier,
		cache.New(time.Minute, time.Minute))
	ctx := context.Background()

	_, err := svc.BulkImport(ctx, []models.BulkRow{{PartName: "C1", Vendor: "X", Price: "$5"}})
	require.NoError(t, err)
	res, err := svc.BulkImport(ctx, []models.BulkRow{{PartName: "C1", Vendor: "X", Price: "$6"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)
	require.Equal(t, 1, notifier.calls)
}
