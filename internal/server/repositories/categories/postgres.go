// Package categories stores catalog categories in PostgreSQL.
package categories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns one page of categories ordered by display order, then name.
// The query is expected to be normalized by the caller.
func (r *PostgresRepository) List(ctx context.Context, q models.ListQuery) (*models.ListResult[models.Category], error) {
	var args dbx.Args
	var conds []string
	if q.Search != "" {
		p := args.Add(dbx.Like(q.Search))
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR type ILIKE %s)", p, p))
	}
	where := dbx.Where(conds)
	filterArgs := args.Len()

	query := `SELECT id, name, type, icon_url, display_order, created_at, updated_at FROM categories` +
		where +
		` ORDER BY display_order ASC, name ASC LIMIT ` + args.Add(q.Limit) + ` OFFSET ` + args.Add(q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args.Values()...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	res := &models.ListResult[models.Category]{Items: []models.Category{}}
	for rows.Next() {
		var c models.Category
		var icon sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &icon, &c.DisplayOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if icon.Valid {
			c.IconURL = &icon.String
		}
		res.Items = append(res.Items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !q.WantCount {
		return res, nil
	}

	var total int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`+where, args.Values()[:filterArgs]...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	res.Count = &total
	return res, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query :=
		`INSERT INTO categories (name, type, icon_url, display_order)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Type, c.IconURL, c.DisplayOrder).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Update applies the non-nil fields of p. An empty icon URL clears it.
func (r *PostgresRepository) Update(ctx context.Context, id int64, p models.CategoryPatch) error {
	var args dbx.Args
	var sets []string
	if p.Name != nil {
		sets = append(sets, "name = "+args.Add(*p.Name))
	}
	if p.Type != nil {
		sets = append(sets, "type = "+args.Add(*p.Type))
	}
	if p.IconURL != nil {
		var icon *string
		if *p.IconURL != "" {
			icon = p.IconURL
		}
		sets = append(sets, "icon_url = "+args.Add(icon))
	}
	if p.DisplayOrder != nil {
		sets = append(sets, "display_order = "+args.Add(*p.DisplayOrder))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE categories SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + args.Add(id)
	return r.execOne(ctx, query, args.Values()...)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM categories WHERE id = $1`, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
