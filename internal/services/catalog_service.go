// internal/services/catalog_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mediakart/mediakart-backend/internal/apperror"
	"github.com/mediakart/mediakart-backend/internal/database"
	"github.com/mediakart/mediakart-backend/internal/models"
	"github.com/mediakart/mediakart-backend/internal/utils"
)

// CatalogService owns the product lifecycle: creation, listing/search,
// purchases, downloads, and ratings.
type CatalogService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CreateProductRequest struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Description string             `json:"description" validate:"required"`
	Author      string             `json:"author" validate:"required,max=255"`
	Genre       string             `json:"genre" validate:"max=100"`
	PreviewLink string             `json:"preview_link" validate:"omitempty,url"`
	ProductType models.ProductType `json:"product_type" validate:"required"`
	Price       float64            `json:"price" validate:"gte=0"`
	FilePath    string             `json:"file_path"`
	ImagePath   string             `json:"image_path"`
}

// ProductView is a catalog entry annotated with the computed average rating
// and the seller's username resolved through the back-reference.
type ProductView struct {
	models.Product
	AverageRating  string `json:"average_rating"`
	SellerUsername string `json:"seller_username"`
}

type RatingSummary struct {
	AverageRating string `json:"average_rating"`
	RatingCount   int64  `json:"rating_count"`
}

type DownloadInfo struct {
	Path     string
	Filename string
}

func NewCatalogService(db *gorm.DB, storageService *StorageService) *CatalogService {
	return &CatalogService{
		db:             db,
		storageService: storageService,
	}
}

// CreateProduct persists a new product and appends its id to the seller's
// uploaded list. Both writes happen in one transaction so the caller never
// observes partial state.
func (s *CatalogService) CreateProduct(sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.New(apperror.ValidationError, "validation failed", err)
	}

	if !req.ProductType.Valid() {
		return nil, apperror.NewValidation("product type must be ebook or music")
	}

	if req.FilePath == "" || req.ImagePath == "" {
		return nil, apperror.NewMissingFile("both a product file and an image file are required")
	}

	product := &models.Product{
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Genre:       req.Genre,
		PreviewLink: req.PreviewLink,
		ProductType: req.ProductType,
		Price:       req.Price,
		FilePath:    req.FilePath,
		ImagePath:   req.ImagePath,
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var seller models.User
		if err := tx.First(&seller, "id = ?", sellerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFound("seller not found")
			}
			return apperror.NewDatabase("failed to look up seller", err)
		}

		if err := tx.Create(product).Error; err != nil {
			return apperror.NewDatabase("failed to create product", err)
		}

		seller.UploadedProducts = append(seller.UploadedProducts, product.ID.String())
		if err := tx.Model(&seller).Update("uploaded_products", seller.UploadedProducts).Error; err != nil {
			return apperror.NewDatabase("failed to record upload on seller", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"seller_id":  sellerID,
		"type":       product.ProductType,
	}).Info("Product created")

	return product, nil
}

// ListProducts returns the catalog in insertion order, optionally filtered by
// a case-insensitive substring match on author or genre.
func (s *CatalogService) ListProducts(search string) ([]ProductView, error) {
	query := s.db.Model(&models.Product{}).Preload("Seller").Order("created_at ASC")

	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(author) LIKE ? OR LOWER(genre) LIKE ?", term, term)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, apperror.NewDatabase("failed to fetch products", err)
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{
			Product:        p,
			AverageRating:  p.FormattedAverageRating(),
			SellerUsername: p.Seller.Username,
		})
	}

	return views, nil
}

// Purchase appends the product to the buyer's purchased set. The backing
// column is an ordered list, so idempotency comes from the explicit duplicate
// check, not from the container.
func (s *CatalogService) Purchase(userID, productID uuid.UUID) ([]string, error) {
	var product models.Product
	if err := s.db.Select("id").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("product not found")
		}
		return nil, apperror.NewDatabase("failed to look up product", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("user not found")
		}
		return nil, apperror.NewDatabase("failed to look up user", err)
	}

	if user.HasPurchased(productID.String()) {
		return nil, apperror.NewAlreadyPurchased("product already purchased")
	}

	user.PurchasedProducts = append(user.PurchasedProducts, productID.String())
	if err := s.db.Model(&user).Update("purchased_products", user.PurchasedProducts).Error; err != nil {
		return nil, apperror.NewDatabase("failed to record purchase", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
	}).Info("Product purchased")

	return user.PurchasedProducts, nil
}

// Download resolves the stored file for a product the user has purchased.
func (s *CatalogService) Download(userID, productID uuid.UUID) (*DownloadInfo, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("product not found")
		}
		return nil, apperror.NewDatabase("failed to look up product", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("user not found")
		}
		return nil, apperror.NewDatabase("failed to look up user", err)
	}

	if !user.HasPurchased(productID.String()) {
		return nil, apperror.NewForbidden("purchase required to download this product")
	}

	absPath, baseName, err := s.storageService.Resolve(product.FilePath)
	if err != nil {
		return nil, err
	}

	return &DownloadInfo{
		Path:     absPath,
		Filename: baseName,
	}, nil
}

// Rate records a 1-5 rating. Both accumulators are bumped in a single UPDATE
// with SQL expressions so concurrent ratings never lose updates.
func (s *CatalogService) Rate(productID uuid.UUID, rating int) (*RatingSummary, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.NewValidation("rating must be an integer between 1 and 5")
	}

	result := s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"total_rating_score": gorm.Expr("total_rating_score + ?", rating),
			"rating_count":       gorm.Expr("rating_count + ?", 1),
		})
	if result.Error != nil {
		return nil, apperror.NewDatabase("failed to record rating", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NewNotFound("product not found")
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		return nil, apperror.NewDatabase("failed to reload product", err)
	}

	return &RatingSummary{
		AverageRating: product.FormattedAverageRating(),
		RatingCount:   product.RatingCount,
	}, nil
}
