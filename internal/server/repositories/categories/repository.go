package categories

import (
	"context"

	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, q models.ListQuery) (*models.ListResult[models.Category], error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, id int64, p models.CategoryPatch) error
	Delete(ctx context.Context, id int64) error
}
