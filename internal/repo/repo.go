// Package repo is the persistence layer. All mutable state lives here;
// handlers and services only hold transient copies for the request.
package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrUserExists  = errors.New("username already taken")
	ErrMovieExists = errors.New("movie already exists")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
