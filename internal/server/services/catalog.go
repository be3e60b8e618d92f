package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/server/config"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/repomanager"
)

// CatalogService backs the admin endpoints for categories, plants and systems.
type CatalogService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	mediaHost    string
	queryTimeout time.Duration
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *CatalogService {
	return &CatalogService{
		db:           db,
		repomanager:  m,
		mediaHost:    strings.ToLower(cfg.MediaHost),
		queryTimeout: cfg.DatabaseQueryTimeout,
	}
}

// PlantList is a page of plants; PublishedPct is set together with Count.
type PlantList struct {
	models.ListResult[models.Plant]
	PublishedPct *int
}

func (s *CatalogService) ListCategories(ctx context.Context, q models.ListQuery) (*models.ListResult[models.Category], error) {
	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	res, err := s.repomanager.Categories(s.db).List(ctx, q.Normalize())
	if err != nil {
		return nil, storageErr(err)
	}
	return res, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, common.NewValidationError("Name is required")
	}
	c.Type = models.NormalizeCategoryType(c.Type)
	if c.IconURL != nil && strings.TrimSpace(*c.IconURL) == "" {
		c.IconURL = nil
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	out, err := s.repomanager.Categories(s.db).Create(ctx, &c)
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// UpdateCategory applies p and reports whether there was anything to apply.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, p models.CategoryPatch) (bool, error) {
	if p.Empty() {
		return false, nil
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return false, common.NewValidationError("Name cannot be empty")
		}
		p.Name = &name
	}
	if p.Type != nil {
		t := models.NormalizeCategoryType(*p.Type)
		p.Type = &t
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.repomanager.Categories(s.db).Update(ctx, id, p); err != nil {
		return false, passNotFound(err)
	}
	return true, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return passNotFound(s.repomanager.Categories(s.db).Delete(ctx, id))
}

func (s *CatalogService) ListPlants(ctx context.Context, q models.ListQuery) (*PlantList, error) {
	q = q.Normalize()
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if q.Status != "" && !models.IsPlantStatus(q.Status) {
		return nil, common.NewValidationError("Invalid status")
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	repo := s.repomanager.Plants(s.db)
	res, err := repo.List(ctx, q)
	if err != nil {
		return nil, storageErr(err)
	}
	out := &PlantList{ListResult: *res}
	if !q.WantCount {
		return out, nil
	}

	total, published, err := repo.PublishedStats(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	pct := publishedPct(total, published)
	out.PublishedPct = &pct
	return out, nil
}

func publishedPct(total, published int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(published) * 100 / float64(total)))
}

func (s *CatalogService) GetPlant(ctx context.Context, id int64) (*models.Plant, error) {
	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	p, err := s.repomanager.Plants(s.db).Get(ctx, id)
	if err != nil {
		return nil, passNotFound(err)
	}
	return p, nil
}

func (s *CatalogService) CreatePlant(ctx context.Context, p models.Plant) (*models.Plant, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, common.NewValidationError("Name is required")
	}
	p.Slug = Slugify(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	if p.Status == "" {
		p.Status = "draft"
	}
	if !models.IsPlantStatus(p.Status) {
		return nil, common.NewValidationError("Invalid status")
	}
	p.ScientificName = strings.TrimSpace(p.ScientificName)
	p.Tags = cleanList(p.Tags)
	p.Benefits = cleanList(p.Benefits)

	var err error
	if p.ImageURL, err = s.mediaURL("image_url", p.ImageURL); err != nil {
		return nil, err
	}
	if p.ModelURL, err = s.mediaURL("model_url", p.ModelURL); err != nil {
		return nil, err
	}
	if p.VideoURL, err = videoURL(p.VideoURL); err != nil {
		return nil, err
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var out *models.Plant
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkSystem(ctx, tx, p.SystemID); err != nil {
			return err
		}
		var err error
		out, err = s.repomanager.Plants(tx).Create(ctx, &p)
		return err
	})
	if err != nil {
		return nil, plantWriteErr(err)
	}
	return out, nil
}

// UpdatePlant applies p and reports whether there was anything to apply.
func (s *CatalogService) UpdatePlant(ctx context.Context, id int64, p models.PlantPatch) (bool, error) {
	if p.Empty() {
		return false, nil
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return false, common.NewValidationError("Name cannot be empty")
		}
		p.Name = &name
	}
	if p.Slug != nil {
		slug := Slugify(*p.Slug)
		if slug == "" {
			return false, common.NewValidationError("Slug cannot be empty")
		}
		p.Slug = &slug
	}
	if p.Status != nil {
		st := strings.ToLower(strings.TrimSpace(*p.Status))
		if !models.IsPlantStatus(st) {
			return false, common.NewValidationError("Invalid status")
		}
		p.Status = &st
	}
	if p.Tags != nil {
		tags := cleanList(*p.Tags)
		p.Tags = &tags
	}
	if p.Benefits != nil {
		benefits := cleanList(*p.Benefits)
		p.Benefits = &benefits
	}
	if p.ImageURL != nil {
		u, err := s.mediaURL("image_url", *p.ImageURL)
		if err != nil {
			return false, err
		}
		p.ImageURL = &u
	}
	if p.ModelURL != nil {
		u, err := s.mediaURL("model_url", *p.ModelURL)
		if err != nil {
			return false, err
		}
		p.ModelURL = &u
	}
	if p.VideoURL != nil {
		u, err := videoURL(*p.VideoURL)
		if err != nil {
			return false, err
		}
		p.VideoURL = &u
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkSystem(ctx, tx, p.SystemID); err != nil {
			return err
		}
		return s.repomanager.Plants(tx).Update(ctx, id, p)
	})
	if err != nil {
		return false, plantWriteErr(err)
	}
	return true, nil
}

func (s *CatalogService) DeletePlant(ctx context.Context, id int64) error {
	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return passNotFound(s.repomanager.Plants(s.db).Delete(ctx, id))
}

func (s *CatalogService) ListSystems(ctx context.Context) ([]models.System, error) {
	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	res, err := s.repomanager.Systems(s.db).List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return res, nil
}

func (s *CatalogService) checkSystem(ctx context.Context, tx dbx.DBTX, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := s.repomanager.Systems(tx).Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewValidationError("Invalid system_id")
	}
	return nil
}

// mediaURL accepts "" or an absolute http(s) URL whose host is the media host
// or one of its subdomains.
func (s *CatalogService) mediaURL(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", common.NewValidationError(field + " must be a valid URL")
	}
	host := strings.ToLower(u.Hostname())
	if s.mediaHost != "" && host != s.mediaHost && !strings.HasSuffix(host, "."+s.mediaHost) {
		return "", common.NewValidationError(fmt.Sprintf("%s must be hosted on %s", field, s.mediaHost))
	}
	return raw, nil
}

var youTubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

func videoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") ||
		!youTubeHosts[strings.ToLower(u.Hostname())] || strings.Trim(u.Path, "/") == "" {
		return "", common.NewValidationError("video_url must be a valid YouTube URL")
	}
	return raw, nil
}

// Slugify trims, lower-cases and joins whitespace-separated words with "-".
func Slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func passNotFound(err error) error {
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return storageErr(err)
}

func plantWriteErr(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrorValidation):
		return err
	}
	return storageErr(err)
}
