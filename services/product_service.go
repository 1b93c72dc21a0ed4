package services

import (
	"errors"
	"log"
	"strings"

	"loyalty-points-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// exchangeValidityDays is how long a redeemed product stays usable.
const exchangeValidityDays = 2

// ProductService manages the reward catalog and point redemptions.
type ProductService struct {
	DB     *gorm.DB
	Time   *TimeService
	Ledger *LedgerService

	titler cases.Caser
}

func NewProductService(db *gorm.DB, ts *TimeService, ledger *LedgerService) *ProductService {
	return &ProductService{
		DB:     db,
		Time:   ts,
		Ledger: ledger,
		titler: cases.Title(language.English),
	}
}

// ProductInput carries the admin-editable fields of a product.
type ProductInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Points      int                  `json:"points"`
	ImageURL    string               `json:"image_url"`
	Status      models.ProductStatus `json:"status"`
}

func (s *ProductService) normalizeName(name string) string {
	return s.titler.String(strings.TrimSpace(name))
}

// CreateProduct adds a catalog entry. The name is title-cased and the
// slug derived from it must be unique.
func (s *ProductService) CreateProduct(in ProductInput) (*models.Product, error) {
	name := s.normalizeName(in.Name)
	if name == "" {
		return nil, newError(KindValidation, "InvalidName", "product name is required")
	}
	if in.Points < 0 {
		return nil, newError(KindValidation, "InvalidPoints", "product points must not be negative")
	}
	status := in.Status
	if status == "" {
		status = models.ProductStatusExchangeable
	}

	product := models.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: in.Description,
		Points:      in.Points,
		ImageURL:    in.ImageURL,
		Status:      status,
	}
	if err := s.DB.Create(&product).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newError(KindConflict, "DuplicateProduct", "a product with this name already exists")
		}
		return nil, internalError("create product", err)
	}
	log.Printf("✅ [Product] created %q (%s)", product.Name, product.Slug)
	return &product, nil
}

// UpdateProduct edits a product in place, re-deriving the slug when the
// name changes.
func (s *ProductService) UpdateProduct(id string, in ProductInput) (*models.Product, error) {
	var product models.Product
	if err := s.DB.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, internalError("fetch product", err)
	}

	if in.Name != "" {
		product.Name = s.normalizeName(in.Name)
		product.Slug = slug.Make(product.Name)
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Points > 0 {
		product.Points = in.Points
	}
	if in.ImageURL != "" {
		product.ImageURL = in.ImageURL
	}
	if in.Status != "" {
		product.Status = in.Status
	}

	if err := s.DB.Save(&product).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newError(KindConflict, "DuplicateProduct", "a product with this name already exists")
		}
		return nil, internalError("update product", err)
	}
	return &product, nil
}

// DeleteProduct soft-deletes a product. Past exchanges keep their rows.
func (s *ProductService) DeleteProduct(id string) error {
	res := s.DB.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return internalError("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListProducts returns the full catalog, optionally filtered by status.
func (s *ProductService) ListProducts(status models.ProductStatus) ([]models.Product, error) {
	query := s.DB.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, internalError("list products", err)
	}
	return products, nil
}

// ListExchangeable returns products users can currently redeem.
func (s *ProductService) ListExchangeable() ([]models.Product, error) {
	return s.ListProducts(models.ProductStatusExchangeable)
}

// ExchangeResult reports a redemption.
type ExchangeResult struct {
	Exchange   *models.ProductExchange `json:"exchange"`
	OldBalance int                     `json:"old_balance"`
	NewBalance int                     `json:"new_balance"`
}

// Exchange redeems a product for the user. The ledger charge and the
// exchange row commit together.
func (s *ProductService) Exchange(userID, productID string) (*ExchangeResult, error) {
	var product models.Product
	if err := s.DB.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, internalError("fetch product", err)
	}
	if product.Status != models.ProductStatusExchangeable {
		return nil, ErrProductNotExchangeable
	}

	now := s.Time.Now()
	var result *ExchangeResult
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		post, err := s.Ledger.PostIn(tx, userID, models.PointCategoryRedemption, -product.Points, map[string]any{
			"kind":         "product_exchange",
			"product_id":   product.ID,
			"product_name": product.Name,
		})
		if err != nil {
			return err
		}

		exchange := models.ProductExchange{
			ID:           uuid.NewString(),
			UserID:       userID,
			ProductID:    product.ID,
			Points:       product.Points,
			Status:       models.ExchangeStatusExchanged,
			ExchangeTime: now,
			ExpireAt:     DateString(now.AddDate(0, 0, exchangeValidityDays)),
		}
		if err := tx.Create(&exchange).Error; err != nil {
			return internalError("create exchange", err)
		}

		exchange.Product = &product
		result = &ExchangeResult{
			Exchange:   &exchange,
			OldBalance: post.OldBalance,
			NewBalance: post.NewBalance,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Printf("✅ [Product] %s exchanged %q for %d points", userID, product.Name, product.Points)
	return result, nil
}

// MarkUsed transitions an exchange from exchanged to used.
func (s *ProductService) MarkUsed(exchangeID string) (*models.ProductExchange, error) {
	var exchange models.ProductExchange
	if err := s.DB.Preload("Product").First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "ExchangeNotFound", "exchange record not found")
		}
		return nil, internalError("fetch exchange", err)
	}
	if exchange.Status != models.ExchangeStatusExchanged {
		return nil, newError(KindConflict, "ExchangeNotUsable", "exchange is not in a usable state")
	}
	if exchange.ExpireAt < DateString(s.Time.Now()) {
		return nil, newError(KindConflict, "ExchangeExpired", "exchange validity window has passed")
	}

	if err := s.DB.Model(&exchange).Update("status", models.ExchangeStatusUsed).Error; err != nil {
		return nil, internalError("mark exchange used", err)
	}
	exchange.Status = models.ExchangeStatusUsed
	return &exchange, nil
}

// ExpireOverdueExchanges marks unused exchanges past their validity
// window as expired. Runs daily.
func (s *ProductService) ExpireOverdueExchanges() (int64, error) {
	today := DateString(s.Time.Now())
	res := s.DB.Model(&models.ProductExchange{}).
		Where("status = ? AND expire_at < ?", models.ExchangeStatusExchanged, today).
		Update("status", models.ExchangeStatusExpired)
	if res.Error != nil {
		return 0, internalError("expire overdue exchanges", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Printf("⚠️ [Product] expired %d overdue exchanges", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// ExchangePage is one page of a user's redemption history.
type ExchangePage struct {
	Exchanges  []models.ProductExchange `json:"exchanges"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int64                    `json:"total_pages"`
}

// GetUserExchanges lists the user's redemptions newest first.
func (s *ProductService) GetUserExchanges(userID string, page, limit int) (*ExchangePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.DB.Model(&models.ProductExchange{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, internalError("count exchanges", err)
	}

	var exchanges []models.ProductExchange
	if err := query.Preload("Product").
		Order("exchange_time DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&exchanges).Error; err != nil {
		return nil, internalError("list exchanges", err)
	}

	return &ExchangePage{
		Exchanges:  exchanges,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}
