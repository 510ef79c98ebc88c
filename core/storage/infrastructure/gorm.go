package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StorageItemModel struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StorageItemModel) TableName() string {
	return "local_storage"
}

type StorageGormRepository struct {
	db *gorm.DB
}

func NewStorageGormRepository(db *gorm.DB) *StorageGormRepository {
	return &StorageGormRepository{db: db}
}

func (r *StorageGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&StorageItemModel{})
}

func (r *StorageGormRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var m StorageItemModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Value, true, nil
}

func (r *StorageGormRepository) Set(ctx context.Context, key string, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&StorageItemModel{
		Key:   key,
		Value: value,
	}).Error
}

func (r *StorageGormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&StorageItemModel{}, "key = ?", key).Error
}
