package rest

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

type categoryRequest struct {
	Name         *string `json:"name"`
	Type         *string `json:"type"`
	IconURL      *string `json:"icon_url"`
	DisplayOrder *int    `json:"display_order"`
}

type plantRequest struct {
	Name           *string   `json:"name"`
	Slug           *string   `json:"slug"`
	ScientificName *string   `json:"scientific_name"`
	Aliases        *string   `json:"aliases"`
	SystemID       *int64    `json:"system_id"`
	PartsUsed      *string   `json:"parts_used"`
	Indications    *string   `json:"indications"`
	Description    *string   `json:"description"`
	Tags           *[]string `json:"tags"`
	Benefits       *[]string `json:"benefits"`
	Status         *string   `json:"status"`
	Featured       *bool     `json:"featured"`
	ImageURL       *string   `json:"image_url"`
	ModelURL       *string   `json:"model_url"`
	VideoURL       *string   `json:"video_url"`
}

func (r plantRequest) patch() models.PlantPatch {
	return models.PlantPatch{
		Name:           r.Name,
		Slug:           r.Slug,
		ScientificName: r.ScientificName,
		Aliases:        r.Aliases,
		SystemID:       r.SystemID,
		PartsUsed:      r.PartsUsed,
		Indications:    r.Indications,
		Description:    r.Description,
		Tags:           r.Tags,
		Benefits:       r.Benefits,
		Status:         r.Status,
		Featured:       r.Featured,
		ImageURL:       r.ImageURL,
		ModelURL:       r.ModelURL,
		VideoURL:       r.VideoURL,
	}
}

func (r plantRequest) plant() models.Plant {
	p := models.Plant{
		Name:           deref(r.Name),
		Slug:           deref(r.Slug),
		ScientificName: deref(r.ScientificName),
		Aliases:        deref(r.Aliases),
		SystemID:       r.SystemID,
		PartsUsed:      deref(r.PartsUsed),
		Indications:    deref(r.Indications),
		Description:    deref(r.Description),
		Status:         deref(r.Status),
		Featured:       r.Featured != nil && *r.Featured,
		ImageURL:       deref(r.ImageURL),
		ModelURL:       deref(r.ModelURL),
		VideoURL:       deref(r.VideoURL),
	}
	if r.Tags != nil {
		p.Tags = *r.Tags
	}
	if r.Benefits != nil {
		p.Benefits = *r.Benefits
	}
	return p
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func pathID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// listQuery reads q/page/limit/count; count defaults to true.
func listQuery(c *fiber.Ctx) models.ListQuery {
	search := c.Query("q")
	if search == "" {
		search = c.Query("search")
	}
	return models.ListQuery{
		Search:    strings.TrimSpace(search),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 0),
		WantCount: c.Query("count") != "false",
	}
}

func (s *HTTPServer) listCategories(c *fiber.Ctx) error {
	res, err := s.catalog.ListCategories(c.UserContext(), listQuery(c))
	if err != nil {
		return s.adminFailure(c, err, "")
	}
	body := fiber.Map{"items": res.Items}
	if res.Count != nil {
		body["count"] = *res.Count
	}
	return c.JSON(body)
}

func (s *HTTPServer) createCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return message(c, fiber.StatusBadRequest, msgBadBody)
	}

	out, err := s.catalog.CreateCategory(c.UserContext(), models.Category{
		Name:         deref(req.Name),
		Type:         deref(req.Type),
		IconURL:      req.IconURL,
		DisplayOrder: deref(req.DisplayOrder),
	})
	if err != nil {
		return s.adminFailure(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": out.ID, "message": "Category created"})
}

func (s *HTTPServer) updateCategory(c *fiber.Ctx) error {
	id, valid := pathID(c)
	if !valid {
		return message(c, fiber.StatusBadRequest, msgInvalidID)
	}
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return message(c, fiber.StatusBadRequest, msgBadBody)
	}

	changed, err := s.catalog.UpdateCategory(c.UserContext(), id, models.CategoryPatch{
		Name:         req.Name,
		Type:         req.Type,
		IconURL:      req.IconURL,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		return s.adminFailure(c, err, "Category not found")
	}
	if !changed {
		return message(c, fiber.StatusOK, "No changes")
	}
	return message(c, fiber.StatusOK, "Category updated")
}

func (s *HTTPServer) deleteCategory(c *fiber.Ctx) error {
	id, valid := pathID(c)
	if !valid {
		return message(c, fiber.StatusBadRequest, msgInvalidID)
	}
	if err := s.catalog.DeleteCategory(c.UserContext(), id); err != nil {
		return s.adminFailure(c, err, "Category not found")
	}
	return message(c, fiber.StatusOK, "Category deleted")
}

func (s *HTTPServer) listPlants(c *fiber.Ctx) error {
	q := listQuery(c)
	q.Status = c.Query("status")
	if raw := c.Query("system"); raw != "" {
		sys, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || sys <= 0 {
			return message(c, fiber.StatusBadRequest, "Invalid system")
		}
		q.SystemID = &sys
	}

	res, err := s.catalog.ListPlants(c.UserContext(), q)
	if err != nil {
		return s.adminFailure(c, err, "")
	}
	body := fiber.Map{"items": res.Items}
	if res.Count != nil {
		body["count"] = *res.Count
	}
	if res.PublishedPct != nil {
		body["publishedPct"] = *res.PublishedPct
	}
	return c.JSON(body)
}

func (s *HTTPServer) getPlant(c *fiber.Ctx) error {
	id, valid := pathID(c)
	if !valid {
		return message(c, fiber.StatusBadRequest, msgInvalidID)
	}
	p, err := s.catalog.GetPlant(c.UserContext(), id)
	if err != nil {
		return s.adminFailure(c, err, "Plant not found")
	}
	return c.JSON(p)
}

func (s *HTTPServer) createPlant(c *fiber.Ctx) error {
	var req plantRequest
	if err := parseBody(c, &req); err != nil {
		return message(c, fiber.StatusBadRequest, msgBadBody)
	}

	out, err := s.catalog.CreatePlant(c.UserContext(), req.plant())
	if err != nil {
		return s.adminFailure(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": out.ID, "slug": out.Slug, "message": "Plant created"})
}

func (s *HTTPServer) updatePlant(c *fiber.Ctx) error {
	id, valid := pathID(c)
	if !valid {
		return message(c, fiber.StatusBadRequest, msgInvalidID)
	}
	var req plantRequest
	if err := parseBody(c, &req); err != nil {
		return message(c, fiber.StatusBadRequest, msgBadBody)
	}

	changed, err := s.catalog.UpdatePlant(c.UserContext(), id, req.patch())
	if err != nil {
		return s.adminFailure(c, err, "Plant not found")
	}
	if !changed {
		return message(c, fiber.StatusOK, "No changes")
	}
	return message(c, fiber.StatusOK, "Plant updated")
}

func (s *HTTPServer) deletePlant(c *fiber.Ctx) error {
	id, valid := pathID(c)
	if !valid {
		return message(c, fiber.StatusBadRequest, msgInvalidID)
	}
	if err := s.catalog.DeletePlant(c.UserContext(), id); err != nil {
		return s.adminFailure(c, err, "Plant not found")
	}
	return message(c, fiber.StatusOK, "Plant deleted")
}

func (s *HTTPServer) listSystems(c *fiber.Ctx) error {
	res, err := s.catalog.ListSystems(c.UserContext())
	if err != nil {
		return s.adminFailure(c, err, "")
	}
	return c.JSON(res)
}
