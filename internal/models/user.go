package models

type User struct {
	ID           int    `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"` // don’t expose hash
}
