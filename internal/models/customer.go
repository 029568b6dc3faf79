package models

import "gorm.io/gorm"

type Customer struct {
	gorm.Model
	Name         string `gorm:"size:255;not null" json:"name"`
	City         string `gorm:"size:100" json:"city"`
	ContactName  string `gorm:"size:255" json:"contactName"`
	ContactEmail string `gorm:"size:255" json:"contactEmail"`
	ContactPhone string `gorm:"size:50" json:"contactPhone"`
	Notes        string `gorm:"type:text" json:"notes"`

	Projects []Project `json:"-"`
}
