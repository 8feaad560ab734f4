package gormdb

import (
	"time"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

// Timestamps are owned by the services, so GORM's auto time tracking is off.

type userRecord struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Email          string    `gorm:"size:255;uniqueIndex;not null"`
	Username       string    `gorm:"size:50;uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	IsActive       bool      `gorm:"not null"`
	IsAdmin        bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
}

func (userRecord) TableName() string { return "users" }

type categoryRecord struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:100;uniqueIndex;not null"`
	Description *string `gorm:"type:text"`
}

func (categoryRecord) TableName() string { return "categories" }

type productRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:100;index;not null"`
	Description *string         `gorm:"type:text"`
	Price       float64         `gorm:"not null"`
	Stock       int             `gorm:"not null"`
	SKU         string          `gorm:"column:stock_keeping_unit;size:50;uniqueIndex;not null"`
	CategoryID  *int64          `gorm:"index"`
	Category    *categoryRecord `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	ImageURL    *string         `gorm:"size:2048"`
	IsActive    bool            `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime:false"`
}

func (productRecord) TableName() string { return "products" }

func newUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:             r.ID,
		Email:          r.Email,
		Username:       r.Username,
		HashedPassword: r.HashedPassword,
		IsActive:       r.IsActive,
		IsAdmin:        r.IsAdmin,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

func (r *categoryRecord) toDomain() *domain.Category {
	return &domain.Category{ID: r.ID, Name: r.Name, Description: r.Description}
}

func newProductRecord(p *domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		SKU:         p.SKU,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		SKU:         r.SKU,
		CategoryID:  r.CategoryID,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}
