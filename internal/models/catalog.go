// internal/models/catalog.go
package models

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	ImageURL    string `json:"image_url,omitempty" gorm:"size:512"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	Title       string      `json:"title" gorm:"size:255;not null;index"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Price       float64     `json:"price" gorm:"not null"`
	// Never negative; the checkout engine validates under a row lock before
	// decrementing.
	StockQuantity int         `json:"stock_quantity" gorm:"default:0;not null"`
	ImageURL      string      `json:"image_url,omitempty" gorm:"size:512"`
	ProductType   ProductType `json:"product_type" gorm:"type:varchar(20);default:'PHYSICAL';not null"`
	// Only meaningful for DIGITAL products.
	DownloadURL string `json:"download_url,omitempty" gorm:"size:512"`
	CategoryID  uint   `json:"category_id" gorm:"not null;index"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
