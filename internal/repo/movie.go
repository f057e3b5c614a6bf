package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aryabov/movify/internal/models"
)

func (r *GormRepo) ListMovies(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *GormRepo) GetMovieByID(ctx context.Context, id uint) (*models.Movie, error) {
	var movie models.Movie
	if err := r.DB.WithContext(ctx).First(&movie, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &movie, nil
}

func (r *GormRepo) GetMovieByName(ctx context.Context, name string) (*models.Movie, error) {
	var movie models.Movie
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &movie, nil
}

func (r *GormRepo) CreateMovie(ctx context.Context, m *models.Movie) error {
	tx := r.DB.WithContext(ctx).Where("name = ?", m.Name).FirstOrCreate(m)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrMovieExists
	}
	return nil
}

func (r *GormRepo) UpdateMovieFields(ctx context.Context, id uint, fields map[string]any) (*models.Movie, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Movie{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetMovieByID(ctx, id)
}

func (r *GormRepo) DeleteMovie(ctx context.Context, id uint) error {
	tx := r.DB.WithContext(ctx).Delete(&models.Movie{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
