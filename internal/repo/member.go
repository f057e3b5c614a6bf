package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aryabov/movify/internal/models"
)

func (r *GormRepo) ListMembers(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *GormRepo) GetMemberByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := r.DB.WithContext(ctx).First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *GormRepo) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *GormRepo) CreateMember(ctx context.Context, m *models.Member) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) UpdateMemberFields(ctx context.Context, id uint, fields map[string]any) (*models.Member, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetMemberByID(ctx, id)
}

func (r *GormRepo) DeleteMember(ctx context.Context, id uint) error {
	tx := r.DB.WithContext(ctx).Delete(&models.Member{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
