package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aryabov/movify/internal/models"
)

func (r *GormRepo) subscriptionQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Member").
		Preload("Movies").
		Preload("Movies.Movie")
}

func (r *GormRepo) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.subscriptionQuery(ctx).Order("id ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *GormRepo) GetSubscriptionByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.subscriptionQuery(ctx).First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *GormRepo) ListMemberSubscriptions(ctx context.Context, memberID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.subscriptionQuery(ctx).Where("member_id = ?", memberID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *GormRepo) ListSubscriptionsByMovie(ctx context.Context, movieID uint) ([]models.Subscription, error) {
	var ids []uint
	if err := r.DB.WithContext(ctx).Model(&models.SubscriptionMovie{}).
		Where("movie_id = ?", movieID).
		Distinct("subscription_id").
		Pluck("subscription_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Subscription{}, nil
	}
	var subs []models.Subscription
	if err := r.subscriptionQuery(ctx).Where("id IN ?", ids).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *GormRepo) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.DB.WithContext(ctx).Create(sub).Error
}

func (r *GormRepo) AddSubscriptionMovie(ctx context.Context, subID, movieID uint, date time.Time) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.DB.WithContext(ctx).First(&sub, subID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	entry := models.SubscriptionMovie{SubscriptionID: subID, MovieID: movieID, Date: date}
	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return r.GetSubscriptionByID(ctx, subID)
}

func (r *GormRepo) RemoveSubscriptionMovie(ctx context.Context, subID, movieID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.DB.WithContext(ctx).First(&sub, subID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.DB.WithContext(ctx).
		Where("subscription_id = ? AND movie_id = ?", subID, movieID).
		Delete(&models.SubscriptionMovie{}).Error; err != nil {
		return nil, err
	}
	return r.GetSubscriptionByID(ctx, subID)
}
