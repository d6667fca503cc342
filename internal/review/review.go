package review

import (
	"context"
	"time"
)

// Review is a persisted, completed review. Rows are only ever inserted and read.
type Review struct {
	ID          int64
	Contact     string
	UserName    string
	ProductName string
	Text        string
	CreatedAt   time.Time
}

type Repository interface {
	Insert(ctx context.Context, r Review) error
	// FindLatest returns the creation time of the most recent review matching the
	// exact (contact, product, text) triple, or found=false when none exists.
	FindLatest(ctx context.Context, contact, productName, text string) (createdAt time.Time, found bool, err error)
	List(ctx context.Context, limit, offset int) ([]Review, error)
}
