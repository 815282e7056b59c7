// internal/models/user.go
package models

import (
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string `json:"username" gorm:"size:50;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`

	// PurchasedProducts is a set of product ids emulated by an ordered list;
	// uniqueness is enforced by the purchase precondition check, not the column.
	PurchasedProducts pq.StringArray `json:"purchased_products" gorm:"type:text[]"`

	// UploadedProducts keeps insertion order for display.
	UploadedProducts pq.StringArray `json:"uploaded_products" gorm:"type:text[]"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:SellerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) HasPurchased(productID string) bool {
	for _, id := range u.PurchasedProducts {
		if id == productID {
			return true
		}
	}
	return false
}
