package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel mirrors the 'users' table. Identifier uniqueness is enforced on the normalized columns.
type UserModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserName           string    `gorm:"type:varchar(256);not null"`
	NormalizedUserName string    `gorm:"type:varchar(256);uniqueIndex:idx_users_normalized_user_name;not null"`
	Email              string    `gorm:"type:varchar(256);not null"`
	NormalizedEmail    string    `gorm:"type:varchar(256);uniqueIndex:idx_users_normalized_email;not null"`
	PasswordHash       string    `gorm:"type:varchar(255);not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`

	Roles []RoleModel `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// RoleModel mirrors the 'roles' table. A row is created the first time a role is granted.
type RoleModel struct {
	ID             int    `gorm:"primaryKey"`
	Name           string `gorm:"type:varchar(256);not null"`
	NormalizedName string `gorm:"type:varchar(256);uniqueIndex:idx_roles_normalized_name;not null"`
}

// TableName explicitly sets the table name for GORM.
func (RoleModel) TableName() string {
	return "roles"
}

// UserRoleModel mirrors the 'user_roles' join table.
type UserRoleModel struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID int       `gorm:"primaryKey"`
}

// TableName explicitly sets the table name for GORM.
func (UserRoleModel) TableName() string {
	return "user_roles"
}
