package systems

import (
	"context"

	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.System, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
