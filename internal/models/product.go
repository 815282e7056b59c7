// internal/models/product.go
package models

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	SellerID    uuid.UUID   `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title       string      `json:"title" gorm:"size:255;not null"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Author      string      `json:"author" gorm:"size:255;not null;index"`
	Genre       string      `json:"genre" gorm:"size:100;index"`
	PreviewLink string      `json:"preview_link" gorm:"size:512"`
	ProductType ProductType `json:"product_type" gorm:"type:varchar(20);not null"`
	Price       float64     `json:"price" gorm:"type:decimal(10,2);not null"`
	FilePath    string      `json:"file_path" gorm:"size:512;not null"`
	ImagePath   string      `json:"image_path" gorm:"size:512;not null"`

	// Rating accumulators: running sum and count instead of per-rating history.
	TotalRatingScore int64 `json:"total_rating_score" gorm:"default:0"`
	RatingCount      int64 `json:"rating_count" gorm:"default:0"`

	// Relationships. The seller record is never serialized; catalog responses
	// expose only the username through the view layer.
	Seller User `json:"-" gorm:"foreignKey:SellerID"`
}

// AverageRating reports the running average rounded to one decimal place,
// or 0 when the product has no ratings yet.
func (p *Product) AverageRating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	avg := float64(p.TotalRatingScore) / float64(p.RatingCount)
	return math.Round(avg*10) / 10
}

// FormattedAverageRating mirrors the catalog payload: "0" when unrated,
// otherwise a one-decimal string like "4.5".
func (p *Product) FormattedAverageRating() string {
	if p.RatingCount == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", p.AverageRating())
}
