// Package plants stores catalog plants in PostgreSQL. Tags and benefits are
// kept as JSON arrays in text columns.
package plants

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

const slugConstraint = "plants_slug_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectPlant = `SELECT p.id, p.name, p.slug, p.scientific_name, p.aliases, p.system_id, s.name,
	p.parts_used, p.indications, p.description, p.tags, p.benefits, p.status, p.featured,
	p.image_url, p.model_url, p.video_url, p.created_at, p.updated_at
	FROM plants p LEFT JOIN systems s ON p.system_id = s.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlant(row scanner) (*models.Plant, error) {
	var p models.Plant
	var systemID sql.NullInt64
	var systemName sql.NullString
	var tags, benefits string

	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.ScientificName, &p.Aliases, &systemID, &systemName,
		&p.PartsUsed, &p.Indications, &p.Description, &tags, &benefits, &p.Status, &p.Featured,
		&p.ImageURL, &p.ModelURL, &p.VideoURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if systemID.Valid {
		p.SystemID = &systemID.Int64
	}
	if systemName.Valid {
		p.SystemName = &systemName.String
	}
	if p.Tags, err = decodeList(tags); err != nil {
		return nil, fmt.Errorf("decode tags of plant %d: %w", p.ID, err)
	}
	if p.Benefits, err = decodeList(benefits); err != nil {
		return nil, fmt.Errorf("decode benefits of plant %d: %w", p.ID, err)
	}
	return &p, nil
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func encodeList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// List returns one page of plants, most recently updated first.
func (r *PostgresRepository) List(ctx context.Context, q models.ListQuery) (*models.ListResult[models.Plant], error) {
	var args dbx.Args
	var conds []string
	if q.Search != "" {
		p := args.Add(dbx.Like(q.Search))
		conds = append(conds, fmt.Sprintf("(p.name ILIKE %s OR p.scientific_name ILIKE %s OR p.aliases ILIKE %s)", p, p, p))
	}
	if q.SystemID != nil {
		conds = append(conds, "p.system_id = "+args.Add(*q.SystemID))
	}
	if q.Status != "" {
		conds = append(conds, "p.status = "+args.Add(q.Status))
	}
	where := dbx.Where(conds)
	filterArgs := args.Len()

	query := selectPlant + where +
		` ORDER BY p.updated_at DESC, p.id DESC LIMIT ` + args.Add(q.Limit) + ` OFFSET ` + args.Add(q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args.Values()...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	res := &models.ListResult[models.Plant]{Items: []models.Plant{}}
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res.Items = append(res.Items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !q.WantCount {
		return res, nil
	}

	var total int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plants p`+where, args.Values()[:filterArgs]...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	res.Count = &total
	return res, nil
}

func (r *PostgresRepository) PublishedStats(ctx context.Context) (int, int, error) {
	var total, published int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'published') FROM plants`).Scan(&total, &published)
	if err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, published, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Plant, error) {
	p, err := scanPlant(r.db.QueryRowContext(ctx, selectPlant+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Plant) (*models.Plant, error) {
	query :=
		`INSERT INTO plants (name, slug, scientific_name, aliases, system_id, parts_used, indications,
		 description, tags, benefits, status, featured, image_url, model_url, video_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.ScientificName, p.Aliases, p.SystemID, p.PartsUsed, p.Indications,
		p.Description, encodeList(p.Tags), encodeList(p.Benefits), p.Status, p.Featured,
		p.ImageURL, p.ModelURL, p.VideoURL).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return p, nil
}

// Update applies the non-nil fields of p and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id int64, p models.PlantPatch) error {
	var args dbx.Args
	var sets []string
	set := func(col string, v any) {
		sets = append(sets, col+" = "+args.Add(v))
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Slug != nil {
		set("slug", *p.Slug)
	}
	if p.ScientificName != nil {
		set("scientific_name", *p.ScientificName)
	}
	if p.Aliases != nil {
		set("aliases", *p.Aliases)
	}
	if p.SystemID != nil {
		set("system_id", *p.SystemID)
	}
	if p.PartsUsed != nil {
		set("parts_used", *p.PartsUsed)
	}
	if p.Indications != nil {
		set("indications", *p.Indications)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Tags != nil {
		set("tags", encodeList(*p.Tags))
	}
	if p.Benefits != nil {
		set("benefits", encodeList(*p.Benefits))
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.Featured != nil {
		set("featured", *p.Featured)
	}
	if p.ImageURL != nil {
		set("image_url", *p.ImageURL)
	}
	if p.ModelURL != nil {
		set("model_url", *p.ModelURL)
	}
	if p.VideoURL != nil {
		set("video_url", *p.VideoURL)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE plants SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + args.Add(id)
	res, err := r.db.ExecContext(ctx, query, args.Values()...)
	if err != nil {
		return mapWriteErr(err)
	}
	return oneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res)
}

func mapWriteErr(err error) error {
	if c, ok := dbx.UniqueViolation(err); ok && c == slugConstraint {
		return fmt.Errorf("slug: %w", common.ErrAlreadyExists)
	}
	if dbx.ForeignKeyViolation(err) {
		return common.NewValidationError("Invalid system_id")
	}
	return fmt.Errorf("db error: %w", err)
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
