package employee

import "context"

type Repository interface {
	// Get the directory record linked to an authenticated user
	GetByUserID(ctx context.Context, userID string) (*Employee, error)
}
