package repository

import (
	"context"

	"gorm.io/gorm"

	"device-feedback-server/models"
)

// MerchantDeviceRepo reads the device provisioning links
type MerchantDeviceRepo struct {
	db *gorm.DB
}

func NewMerchantDeviceRepo(db *gorm.DB) *MerchantDeviceRepo {
	return &MerchantDeviceRepo{db: db}
}

// Exists reports whether deviceID has been provisioned to merchantID
func (r *MerchantDeviceRepo) Exists(ctx context.Context, merchantID, deviceID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MerchantDevice{}).
		Where("merchant_id = ? AND device_id = ?", merchantID, deviceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
