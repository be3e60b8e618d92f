package models

import (
	"slices"
	"time"
)

var CategoryTypes = []string{"AYUSH", "Ailment", "UseCase"}

// NormalizeCategoryType maps unknown category types to AYUSH.
func NormalizeCategoryType(t string) string {
	if slices.Contains(CategoryTypes, t) {
		return t
	}
	return "AYUSH"
}

var PlantStatuses = []string{"draft", "published", "archived"}

func IsPlantStatus(s string) bool {
	return slices.Contains(PlantStatuses, s)
}

// System is a traditional medicine system (Ayurveda, Unani, ...).
type System struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	IconURL      *string   `json:"icon_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryPatch carries a partial update; nil fields are left untouched.
type CategoryPatch struct {
	Name         *string
	Type         *string
	IconURL      *string
	DisplayOrder *int
}

func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.IconURL == nil && p.DisplayOrder == nil
}

type Plant struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	ScientificName string    `json:"scientific_name"`
	Aliases        string    `json:"aliases"`
	SystemID       *int64    `json:"system_id"`
	SystemName     *string   `json:"system_name"`
	PartsUsed      string    `json:"parts_used"`
	Indications    string    `json:"indications"`
	Description    string    `json:"description"`
	Tags           []string  `json:"tags"`
	Benefits       []string  `json:"benefits"`
	Status         string    `json:"status"`
	Featured       bool      `json:"featured"`
	ImageURL       string    `json:"image_url"`
	ModelURL       string    `json:"model_url"`
	VideoURL       string    `json:"video_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PlantPatch carries a partial update; nil fields are left untouched.
type PlantPatch struct {
	Name           *string
	Slug           *string
	ScientificName *string
	Aliases        *string
	SystemID       *int64
	PartsUsed      *string
	Indications    *string
	Description    *string
	Tags           *[]string
	Benefits       *[]string
	Status         *string
	Featured       *bool
	ImageURL       *string
	ModelURL       *string
	VideoURL       *string
}

func (p PlantPatch) Empty() bool {
	return p == PlantPatch{}
}
