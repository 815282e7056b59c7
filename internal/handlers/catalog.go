// internal/handlers/catalog.go
package handlers

import (
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediakart/mediakart-backend/internal/apperror"
	"github.com/mediakart/mediakart-backend/internal/models"
	"github.com/mediakart/mediakart-backend/internal/services"
	"github.com/mediakart/mediakart-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	storageService *services.StorageService
}

func NewCatalogHandler(catalogService *services.CatalogService, storageService *services.StorageService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		storageService: storageService,
	}
}

// GET /api/products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Query("search"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
	})
}

// POST /api/products/upload
func (h *CatalogHandler) UploadProduct(c *gin.Context) {
	sellerID, ok := principalFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productFile, productErr := c.FormFile("productFile")
	imageFile, imageErr := c.FormFile("imageFile")
	if productErr != nil || imageErr != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "MISSING_FILE",
			"Please upload both a product file and an image file", nil)
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Price must be a number", nil)
		return
	}

	req := services.CreateProductRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Author:      c.PostForm("author"),
		Genre:       c.PostForm("genre"),
		PreviewLink: c.PostForm("previewLink"),
		ProductType: models.ProductType(c.PostForm("productType")),
		Price:       price,
	}

	storedProduct, storedImage, err := h.storeUploads(productFile, imageFile)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	req.FilePath = storedProduct.Path
	req.ImagePath = storedImage.Path

	product, err := h.catalogService.CreateProduct(sellerID, &req)
	if err != nil {
		// The product record never existed; drop the orphaned files.
		os.Remove(storedProduct.Path)
		os.Remove(storedImage.Path)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"product": product,
	})
}

// POST /api/products/:id/buy
func (h *CatalogHandler) BuyProduct(c *gin.Context) {
	userID, ok := principalFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	purchased, err := h.catalogService.Purchase(userID, productID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"purchased_products": purchased,
	})
}

// GET /api/products/:id/download
func (h *CatalogHandler) DownloadProduct(c *gin.Context) {
	userID, ok := principalFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	info, err := h.catalogService.Download(userID, productID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.FileAttachment(info.Path, info.Filename)
}

// POST /api/products/:id/rate
func (h *CatalogHandler) RateProduct(c *gin.Context) {
	if _, ok := principalFromContext(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req struct {
		Rating int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Please provide a rating between 1 and 5", nil)
		return
	}

	summary, err := h.catalogService.Rate(productID, req.Rating)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"average_rating": summary.AverageRating,
		"rating_count":   summary.RatingCount,
	})
}

// storeUploads validates the cover image and writes both uploads to storage.
// If the second write fails the first file is removed so no unpaired upload
// is left behind.
func (h *CatalogHandler) storeUploads(productHeader, imageHeader *multipart.FileHeader) (*services.StoredFile, *services.StoredFile, error) {
	image, err := imageHeader.Open()
	if err != nil {
		return nil, nil, apperror.NewInternal("failed to open image file", err)
	}
	defer image.Close()

	if err := h.storageService.ValidateImage(image); err != nil {
		return nil, nil, err
	}

	product, err := productHeader.Open()
	if err != nil {
		return nil, nil, apperror.NewInternal("failed to open product file", err)
	}
	defer product.Close()

	storedProduct, err := h.storageService.SaveUpload(product, productHeader, "productFile")
	if err != nil {
		return nil, nil, err
	}

	storedImage, err := h.storageService.SaveUpload(image, imageHeader, "imageFile")
	if err != nil {
		os.Remove(storedProduct.Path)
		return nil, nil, err
	}

	return storedProduct, storedImage, nil
}
