package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteDirectory is a Directory backed by a SQLite database via GORM.
type SQLiteDirectory struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the schema.
func OpenSQLite(path string) (*SQLiteDirectory, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite directory: %w", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrate user schema: %w", err)
	}
	return &SQLiteDirectory{db: db}, nil
}

func (d *SQLiteDirectory) Create(ctx context.Context, name, email, location string) (User, error) {
	if name == "" || email == "" || location == "" {
		return User{}, ErrInvalid
	}

	u := User{Name: name, Email: email, Location: location}
	if err := d.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (d *SQLiteDirectory) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := d.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (d *SQLiteDirectory) UpdateLocation(ctx context.Context, id uint, location string) (User, error) {
	if location == "" {
		return User{}, ErrInvalid
	}

	var u User
	err := d.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}

	u.Location = location
	if err := d.db.WithContext(ctx).Save(&u).Error; err != nil {
		return User{}, fmt.Errorf("update location: %w", err)
	}
	return u, nil
}

func (d *SQLiteDirectory) ListAll(ctx context.Context) ([]User, error) {
	var users []User
	if err := d.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
