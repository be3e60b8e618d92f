package plants

import (
	"context"

	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, q models.ListQuery) (*models.ListResult[models.Plant], error)
	// PublishedStats counts all plants and the published ones, ignoring filters.
	PublishedStats(ctx context.Context) (total int, published int, err error)
	Get(ctx context.Context, id int64) (*models.Plant, error)
	Create(ctx context.Context, p *models.Plant) (*models.Plant, error)
	Update(ctx context.Context, id int64, p models.PlantPatch) error
	Delete(ctx context.Context, id int64) error
}
