package models

import "time"

type User struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Username           string    `gorm:"unique;not null"                 json:"username"`
	PasswordHash       string    `gorm:"not null"                        json:"-"`
	FullName           string    `gorm:"default:''"                      json:"fullName"`
	Role               string    `gorm:"not null;default:user"           json:"role"`
	MustChangePassword bool      `gorm:"default:true"                    json:"mustChangePassword"`
	PasswordVersion    int       `gorm:"not null;default:1"              json:"-"`
	PasswordUpdatedAt  time.Time `json:"-"`
	Perms              []string  `gorm:"serializer:json"                 json:"perms"`
	CreatedAt          time.Time `json:"-"`
	UpdatedAt          time.Time `json:"-"`
}

type Movie struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"unique;not null"          json:"name"`
	Genres    []string  `gorm:"serializer:json"          json:"genres"`
	Image     string    `gorm:"default:''"               json:"image"`
	Premiered string    `gorm:"default:''"               json:"premiered"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Member struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"index"                    json:"email"`
	City      string    `gorm:"default:''"               json:"city"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Subscription struct {
	ID        uint                `gorm:"primaryKey;autoIncrement"                        json:"id"`
	MemberID  uint                `gorm:"index;not null"                                  json:"memberId"`
	Member    *Member             `gorm:"foreignKey:MemberID"                             json:"member,omitempty"`
	Movies    []SubscriptionMovie `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE" json:"movies"`
	CreatedAt time.Time           `json:"-"`
	UpdatedAt time.Time           `json:"-"`
}

type SubscriptionMovie struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SubscriptionID uint      `gorm:"index;not null"           json:"-"`
	MovieID        uint      `gorm:"index;not null"           json:"movieId"`
	Movie          *Movie    `gorm:"foreignKey:MovieID"       json:"movie,omitempty"`
	Date           time.Time `json:"date"`
}

// PublicUser is the user view returned over HTTP; it never carries the
// password hash or the fencing counter.
type PublicUser struct {
	ID                 uint     `json:"id"`
	Username           string   `json:"username"`
	FullName           string   `json:"fullName"`
	Role               string   `json:"role"`
	IsAdmin            bool     `json:"isAdmin"`
	IsModerator        bool     `json:"isModerator"`
	MustChangePassword bool     `json:"mustChangePassword"`
	Perms              []string `json:"perms"`
}
