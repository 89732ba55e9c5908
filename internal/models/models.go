package models

import "time"

const RoleAdmin = "Admin"

type User struct {
	ID                 uint       `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserName           string     `gorm:"uniqueIndex;not null"        json:"userName"`
	Email              string     `gorm:"uniqueIndex;not null"        json:"email"`
	PasswordHash       string     `gorm:"not null"                    json:"-"`
	Roles              []Role     `gorm:"many2many:user_roles;"       json:"roles,omitempty"`
	RefreshToken       *string    `                                   json:"-"`
	RefreshTokenExpiry *time.Time `                                   json:"-"`
	CreatedAt          time.Time  `                                   json:"createdAt"`
	UpdatedAt          time.Time  `                                   json:"updatedAt"`
}

type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null"     json:"name"`
}

type Client struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name      string    `gorm:"uniqueIndex;not null"        json:"name"`
	Email     string    `gorm:"uniqueIndex;not null"        json:"email"`
	Balance   float64   `gorm:"not null;default:0"          json:"balance"`
	Tags      []Tag     `gorm:"many2many:client_tags;"      json:"tags"`
	CreatedAt time.Time `                                   json:"createdAt"`
	UpdatedAt time.Time `                                   json:"updatedAt"`
}

type Tag struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"uniqueIndex;not null"     json:"name"`
	Color string `gorm:"not null;default:''"      json:"color"`
}

type Payment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID  uint      `gorm:"index;not null"           json:"clientId"`
	Client    *Client   `gorm:"constraint:OnDelete:CASCADE;" json:"client,omitempty"`
	Amount    float64   `gorm:"not null"                 json:"amount"`
	CreatedAt time.Time `gorm:"index"                    json:"createdAt"`
}

type Rate struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Value     float64   `gorm:"not null"                 json:"value"`
	UpdatedAt time.Time `gorm:"index"                    json:"updatedAt"`
}

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{&Role{}, &User{}, &Tag{}, &Client{}, &Payment{}, &Rate{}}
}
