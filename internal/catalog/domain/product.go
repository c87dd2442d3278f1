package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

type Product struct {
	ID            string
	Name          string
	Description   string
	Price         Money
	Stock         int32
	ImageURL      string
	Categories    []Category
	Images        []ProductImage
	AverageRating float64
	ReviewCount   int32
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductImage struct {
	ID        string
	ProductID string
	URL       string
	Position  int32
}
