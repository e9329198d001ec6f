package services

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/username/partsviewer/backend/src/database"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/model"
)

type catalogServiceImpl struct {
	store *database.Store
}

func NewCatalogService(store *database.Store) CatalogService {
	return &catalogServiceImpl{store: store}
}

func (s *catalogServiceImpl) ListParts(ctx context.Context) ([]model.Part, error) {
	return model.ListParts(ctx, s.store.DB())
}

func (s *catalogServiceImpl) SearchParts(ctx context.Context, keyword string) ([]model.Part, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return model.ListParts(ctx, s.store.DB())
	}
	return model.SearchParts(ctx, s.store.DB(), keyword)
}

func (s *catalogServiceImpl) GetPart(ctx context.Context, id string) (*model.Part, error) {
	return model.GetPart(ctx, s.store.DB(), id)
}

func validatePartInput(in *PartInput) error {
	in.PartName = strings.TrimSpace(in.PartName)
	in.Vendor = strings.TrimSpace(in.Vendor)
	if in.Price == nil && (in.PriceUSD != nil || in.PriceKRW != nil) {
		if in.PriceUSD != nil {
			in.Price = in.PriceUSD
		} else {
			in.Price = in.PriceKRW
		}
	}
	if in.PartName == "" || in.Vendor == "" || in.Price == nil || math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) {
		return ErrInvalidPart
	}
	in.SAPCode = normalizeSAPCode(in.SAPCode)
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) == "" {
		in.CategoryID = nil
	}
	return nil
}

func (s *catalogServiceImpl) AddPart(ctx context.Context, in PartInput) (*model.Part, error) {
	if err := validatePartInput(&in); err != nil {
		return nil, err
	}
	p := &model.Part{
		PartName:   in.PartName,
		Vendor:     in.Vendor,
		Price:      *in.Price,
		PriceUSD:   in.PriceUSD,
		PriceKRW:   in.PriceKRW,
		SAPCode:    in.SAPCode,
		CategoryID: in.CategoryID,
	}
	if err := model.InsertPart(ctx, s.store.DB(), p); err != nil {
		return nil, err
	}
	logger.L.Info("Part added", "id", p.ID, "partname", p.PartName, "price", p.Price)
	return model.GetPart(ctx, s.store.DB(), p.ID)
}

// UpdatePart edits name, vendor, price and SAP code. A changed price appends
// a history entry and a price_change notification in the same transaction.
func (s *catalogServiceImpl) UpdatePart(ctx context.Context, id string, in PartInput) (*PartUpdateResult, error) {
	if err := validatePartInput(&in); err != nil {
		return nil, err
	}

	history := false
	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := model.GetPart(ctx, tx, id)
		if err != nil {
			return err
		}
		oldPrice := current.Price
		newPrice := *in.Price

		current.PartName = in.PartName
		current.Vendor = in.Vendor
		current.Price = newPrice
		current.PriceUSD = in.PriceUSD
		current.PriceKRW = in.PriceKRW
		current.SAPCode = in.SAPCode
		if in.CategoryID != nil {
			current.CategoryID = in.CategoryID
		}
		if err := model.UpdatePart(ctx, tx, current); err != nil {
			return err
		}

		if oldPrice == newPrice {
			logger.L.Debug("Part updated without price change", "id", id)
			return nil
		}
		if _, err := model.AppendHistory(ctx, tx, id, oldPrice, newPrice); err != nil {
			return err
		}
		history = true
		logger.L.Info("Part price change recorded", "id", id, "before", oldPrice, "after", newPrice)
		return model.InsertNotification(ctx, tx, &model.Notification{
			PartID:      id,
			Type:        model.NotificationPriceChange,
			Message:     model.PriceChangeMessage(current.PartName, oldPrice, newPrice),
			PriceBefore: &oldPrice,
			PriceAfter:  &newPrice,
		})
	})
	if err != nil {
		return nil, err
	}

	part, err := model.GetPart(ctx, s.store.DB(), id)
	if err != nil {
		return nil, err
	}
	return &PartUpdateResult{Part: part, History: history}, nil
}

func (s *catalogServiceImpl) DeletePart(ctx context.Context, id string) error {
	if err := model.DeletePart(ctx, s.store.DB(), id); err != nil {
		return err
	}
	logger.L.Info("Part deleted", "id", id)
	return nil
}

func (s *catalogServiceImpl) SetPartCategory(ctx context.Context, partID string, categoryID *string) error {
	if categoryID != nil && strings.TrimSpace(*categoryID) == "" {
		categoryID = nil
	}
	return model.UpdatePartCategory(ctx, s.store.DB(), partID, categoryID)
}

func (s *catalogServiceImpl) GetHistory(ctx context.Context, partID string) ([]model.HistoryEntry, error) {
	return model.ListHistory(ctx, s.store.DB(), partID)
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]model.Category, error) {
	return model.ListCategories(ctx, s.store.DB())
}

func (s *catalogServiceImpl) AddCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, ErrInvalidCategory
	}
	c.ID = ""
	if err := model.InsertCategory(ctx, s.store.DB(), &c); err != nil {
		return nil, err
	}
	logger.L.Info("Category added", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (s *catalogServiceImpl) DeleteCategory(ctx context.Context, id string) error {
	return model.DeleteCategory(ctx, s.store.DB(), id)
}

func (s *catalogServiceImpl) GetStatistics(ctx context.Context) (*model.Statistics, error) {
	return model.GetStatistics(ctx, s.store.DB())
}

func (s *catalogServiceImpl) ListNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	return model.ListUnreadNotifications(ctx, s.store.DB(), limit)
}

func (s *catalogServiceImpl) AddNotification(ctx context.Context, n model.Notification) (*model.Notification, error) {
	n.ID = ""
	if _, err := model.GetPart(ctx, s.store.DB(), n.PartID); err != nil {
		return nil, err
	}
	if n.Type == "" {
		n.Type = model.NotificationPriceChange
	}
	if err := model.InsertNotification(ctx, s.store.DB(), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *catalogServiceImpl) MarkNotificationRead(ctx context.Context, id string) error {
	return model.MarkNotificationRead(ctx, s.store.DB(), id)
}
