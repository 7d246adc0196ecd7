package todo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("todo not found")
	ErrInvalidPage = errors.New("skip and limit must be non-negative")
)

// Todo is a row of the todos table.
type Todo struct {
	ID       int64  `gorm:"primaryKey;index" json:"id"`
	Label    string `gorm:"type:varchar(255);index" json:"label"`
	Quantity int    `gorm:"index" json:"quantity"`
}

func (Todo) TableName() string {
	return "todos"
}

// Store persists todos through gorm. Every call runs on its own session
// bound to ctx, so nothing is shared between requests.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the todos table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Todo{})
}

// List returns one page of todos in id order together with the count of all
// rows, independent of skip and limit.
func (s *Store) List(ctx context.Context, skip, limit int) (int64, []Todo, error) {
	if skip < 0 || limit < 0 {
		return 0, nil, ErrInvalidPage
	}

	db := s.db.WithContext(ctx)

	todos := make([]Todo, 0)
	if err := db.Order("id").Offset(skip).Limit(limit).Find(&todos).Error; err != nil {
		return 0, nil, err
	}

	var total int64
	if err := db.Model(&Todo{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	return total, todos, nil
}

func (s *Store) Create(ctx context.Context, label string, quantity int) (Todo, error) {
	t := Todo{Label: label, Quantity: quantity}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return Todo{}, err
	}
	return t, nil
}

// Delete removes the todo with the given id and returns it as it was before
// removal. It returns ErrNotFound when no such row exists.
func (s *Store) Delete(ctx context.Context, id int64) (Todo, error) {
	var deleted Todo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Todo
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&t).Error; err != nil {
			return err
		}
		deleted = t
		return nil
	})
	if err != nil {
		return Todo{}, err
	}
	return deleted, nil
}
