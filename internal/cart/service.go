package cart

import (
	"context"
	"fmt"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type stockReader interface {
	Availability(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// LineAvailability prices one cart line against the live catalog.
type LineAvailability struct {
	Item           models.CartItem `json:"item"`
	ProductName    string          `json:"product_name"`
	ImageURL       *string         `json:"image_url,omitempty"`
	UnitPriceCents int             `json:"unit_price_cents"`
	AvailableQty   int             `json:"available_qty"`
	Available      bool            `json:"available"`
	SubtotalCents  int             `json:"subtotal_cents"`
}

// Snapshot is the advisory priced view of a cart. It is never a
// reservation: placement re-checks stock atomically.
type Snapshot struct {
	Lines            []LineAvailability `json:"lines"`
	AllAvailable     bool               `json:"all_available"`
	TotalAmountCents int                `json:"total_amount_cents"`
	TotalQuantity    int                `json:"total_quantity"`
}

// Service exposes cart line management and the availability snapshot.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID, size string, quantity int) (*models.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	MoveToWishlist(ctx context.Context, userID, itemID uuid.UUID) error
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, userID, itemID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	BuildSnapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	products productLoader
	stock    stockReader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, products productLoader, stock stockReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock reader required")
	}
	return &service{repo: repo, tx: tx, products: products, stock: stock}, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID, size string, quantity int) (*models.CartItem, error) {
	if size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	catalog, err := s.products.FindByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	if _, ok := catalog[productID]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	}
	return s.repo.Upsert(ctx, &models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	})
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	return s.repo.UpdateQuantity(ctx, itemID, userID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.repo.Delete(ctx, itemID, userID)
}

// MoveToWishlist saves the line's product for later and drops the line,
// in one transaction so a crash cannot leave the item in both places.
func (s *service) MoveToWishlist(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.First(&item, "id = ? AND user_id = ?", itemID, userID).Error; err != nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cart line %s not found", itemID))
		}
		saved := models.WishlistItem{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: item.ProductID,
			Size:      item.Size,
		}
		if err := tx.Create(&saved).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to save wishlist item")
		}
		return s.repo.WithTx(tx).Delete(ctx, itemID, userID)
	})
}

func (s *service) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	return s.repo.ListWishlist(ctx, userID)
}

func (s *service) RemoveWishlistItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.repo.DeleteWishlistItem(ctx, itemID, userID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

// BuildSnapshot prices every line against the current catalog and stock.
// A line whose product has vanished from the catalog is reported
// unavailable rather than failing the whole snapshot.
func (s *service) BuildSnapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stock, err := s.stock.Availability(ctx, ids)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{Lines: make([]LineAvailability, 0, len(items)), AllAvailable: true}
	for _, item := range items {
		line := LineAvailability{Item: item}
		if product, ok := catalog[item.ProductID]; ok {
			line.ProductName = product.Name
			line.ImageURL = product.ImageURL
			line.UnitPriceCents = product.PriceCents
			line.AvailableQty = stock[item.ProductID]
			line.Available = line.AvailableQty >= item.Quantity
			line.SubtotalCents = product.PriceCents * item.Quantity
		}
		if !line.Available {
			snapshot.AllAvailable = false
		}
		snapshot.TotalAmountCents += line.SubtotalCents
		snapshot.TotalQuantity += item.Quantity
		snapshot.Lines = append(snapshot.Lines, line)
	}
	return snapshot, nil
}
