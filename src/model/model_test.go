package model_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/username/partsviewer/backend/src/database"
	"github.com/username/partsviewer/backend/src/model"
)

func openStore(t *testing.T) *database.Store {
	t.Helper()
	s, err := database.Open(filepath.Join(t.TempDir(), "parts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestFindPartByNameAndCodeIsNullAware(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	db := s.DB()

	noCode := &model.Part{PartName: "R1", Vendor: "Acme", Price: 5}
	withCode := &model.Part{PartName: "R1", Vendor: "Acme", Price: 6, SAPCode: strPtr("S-1")}
	require.NoError(t, model.InsertPart(ctx, db, noCode))
	require.NoError(t, model.InsertPart(ctx, db, withCode))

	got, err := model.FindPartByNameAndCode(ctx, db, "R1", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, noCode.ID, got.ID)

	got, err = model.FindPartByNameAndCode(ctx, db, "R1", strPtr("S-1"))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, withCode.ID, got.ID)

	got, err = model.FindPartByNameAndCode(ctx, db, "R1", strPtr("S-2"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestListAndSearchJoinCategoryName(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	db := s.DB()

	cat := &model.Category{Name: "Resistors"}
	require.NoError(t, model.InsertCategory(ctx, db, cat))
	require.Equal(t, model.DefaultCategoryColor, cat.Color)

	linked := &model.Part{PartName: "R10K", Vendor: "Acme", Price: 0.1, CategoryID: &cat.ID}
	raw := &model.Part{PartName: "C100N", Vendor: "Murata", Price: 0.2, CategoryNameRaw: strPtr("Caps")}
	require.NoError(t, model.InsertPart(ctx, db, linked))
	require.NoError(t, model.InsertPart(ctx, db, raw))

	parts, err := model.ListParts(ctx, db)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, raw.ID, parts[0].ID, "newest first")
	require.Equal(t, "Caps", *parts[0].CategoryName)
	require.Equal(t, "Resistors", *parts[1].CategoryName)

	found, err := model.SearchParts(ctx, db, "resist")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, linked.ID, found[0].ID)

	found, err = model.SearchParts(ctx, db, "Murata")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, raw.ID, found[0].ID)
}

func TestDeleteCategoryUnlinksParts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	db := s.DB()

	cat := &model.Category{Name: "ICs"}
	require.NoError(t, model.InsertCategory(ctx, db, cat))
	p := &model.Part{PartName: "NE555", Vendor: "TI", Price: 0.3, CategoryID: &cat.ID}
	require.NoError(t, model.InsertPart(ctx, db, p))

	require.NoError(t, model.DeleteCategory(ctx, db, cat.ID))

	got, err := model.GetPart(ctx, db, p.ID)
	require.NoError(t, err)
	require.Nil(t, got.CategoryID)

	require.ErrorIs(t, model.DeleteCategory(ctx, db, cat.ID), model.ErrNotFound)
}

func TestHistoryAndNotifications(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	db := s.DB()

	p := &model.Part{PartName: "C1", Vendor: "Acme", Price: 5}
	require.NoError(t, model.InsertPart(ctx, db, p))

	_, err := model.AppendHistory(ctx, db, p.ID, 5, 7)
	require.NoError(t, err)
	_, err = model.AppendHistory(ctx, db, p.ID, 7, 9)
	require.NoError(t, err)

	history, err := model.ListHistory(ctx, db, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 9.0, *history[0].PriceAfter)
	require.Equal(t, 5.0, *history[1].PriceBefore)

	before, after := 5.0, 7.0
	n := &model.Notification{PartID: p.ID, Type: model.NotificationPriceChange, Message: "changed",
		PriceBefore: &before, PriceAfter: &after}
	require.NoError(t, model.InsertNotification(ctx, db, n))

	unread, err := model.ListUnreadNotifications(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.False(t, unread[0].Read)

	require.NoError(t, model.MarkNotificationRead(ctx, db, n.ID))
	unread, err = model.ListUnreadNotifications(ctx, db, 0)
	require.NoError(t, err)
	require.Empty(t, unread)

	require.NoError(t, model.DeletePart(ctx, db, p.ID))
	history, err = model.ListHistory(ctx, db, p.ID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestGetStatistics(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	db := s.DB()

	empty, err := model.GetStatistics(ctx, db)
	require.NoError(t, err)
	require.Zero(t, empty.TotalParts)
	require.Nil(t, empty.PriceStats.Min)

	cat := &model.Category{Name: "Resistors"}
	require.NoError(t, model.InsertCategory(ctx, db, cat))
	a := &model.Part{PartName: "A", Vendor: "Acme", Price: 2, CategoryID: &cat.ID}
	b := &model.Part{PartName: "B", Vendor: "Acme", Price: 4}
	c := &model.Part{PartName: "C", Vendor: "Bolt", Price: 6}
	for _, p := range []*model.Part{a, b, c} {
		require.NoError(t, model.InsertPart(ctx, db, p))
	}
	_, err = model.AppendHistory(ctx, db, a.ID, 1, 2)
	require.NoError(t, err)

	stats, err := model.GetStatistics(ctx, db)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalParts)
	require.Equal(t, 2.0, *stats.PriceStats.Min)
	require.Equal(t, 6.0, *stats.PriceStats.Max)
	require.InDelta(t, 4.0, *stats.PriceStats.Avg, 1e-9)
	require.Equal(t, []model.VendorCount{{Vendor: "Acme", Count: 2}, {Vendor: "Bolt", Count: 1}}, stats.VendorStats)
	require.Len(t, stats.CategoryStats, 1)
	require.Equal(t, 1, stats.CategoryStats[0].Count)
	require.Len(t, stats.RecentPriceChanges, 1)
	require.Equal(t, "A", stats.RecentPriceChanges[0].PartName)
}

func TestUsersAndSessions(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	db := s.DB()

	u := &model.User{Username: "kim"}
	require.NoError(t, u.HashPassword("secret-pass"))
	require.NoError(t, model.CreateUser(ctx, db, u))
	require.Equal(t, model.RoleViewer, u.Role)

	loaded, err := model.GetUserByUsername(ctx, db, "kim")
	require.NoError(t, err)
	require.NoError(t, loaded.CheckPassword("secret-pass"))
	require.Error(t, loaded.CheckPassword("wrong"))

	_, err = model.GetUserByUsername(ctx, db, "nobody")
	require.ErrorIs(t, err, model.ErrUserNotFound)

	n, err := model.CountUsers(ctx, db)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
