package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device is a payment terminal model
type Device struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UUID         string    `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	Model        string    `json:"model" gorm:"size:100;uniqueIndex;not null"`
	Manufacturer string    `json:"manufacturer" gorm:"size:100"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Device) TableName() string {
	return "devices"
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
	return nil
}

// MerchantDevice records that a device has been provisioned to a merchant.
// Rows are written by provisioning and only read by feedback submission.
type MerchantDevice struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	MerchantID uint      `json:"merchant_id" gorm:"not null;uniqueIndex:idx_merchant_device"`
	DeviceID   uint      `json:"device_id" gorm:"not null;uniqueIndex:idx_merchant_device"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Merchant *Merchant `json:"merchant,omitempty" gorm:"foreignKey:MerchantID"`
	Device   *Device   `json:"device,omitempty" gorm:"foreignKey:DeviceID"`
}

func (MerchantDevice) TableName() string {
	return "merchant_devices"
}
