package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups products and may be nested under a parent category
type Category struct {
	ID          string    `json:"id" db:"id" validate:"required,uuid"`
	Name        string    `json:"name" db:"name" validate:"required,min=2,max=100"`
	Description *string   `json:"description,omitempty" db:"description"`
	Slug        string    `json:"slug" db:"slug"`
	ParentID    *string   `json:"parent_id,omitempty" db:"parent_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	Image       *string   `json:"image,omitempty" db:"image"`
	TaxRate     float64   `json:"tax_rate" db:"tax_rate" validate:"min=0,max=100"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewCategory creates a new active category with generated ID, slug and timestamps
func NewCategory(name string) *Category {
	now := Now()
	trimmed := strings.TrimSpace(name)
	return &Category{
		ID:        uuid.New().String(),
		Name:      trimmed,
		Slug:      Slugify(trimmed),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the category data
func (c *Category) Validate() error {
	var errs []ValidationError

	if c.ID == "" {
		errs = append(errs, ValidationError{Field: "id", Message: "category ID is required"})
	}

	if v := ValidateRequired(c.Name, "name"); v != nil {
		errs = append(errs, *v)
	} else {
		errs = collect(errs, ValidateStringLength(c.Name, "name", 2, 100))
	}

	if c.Description != nil {
		errs = collect(errs, ValidateStringLength(*c.Description, "description", 0, 500))
	}

	errs = collect(errs, ValidatePercentage(c.TaxRate, "tax_rate"))

	if c.ParentID != nil && *c.ParentID == c.ID {
		errs = append(errs, ValidationError{Field: "parent_id", Message: "Category cannot be its own parent"})
	}

	return NewValidationErrors("category", errs)
}

// SlugWithSuffix returns the slug with a numeric suffix used when the plain slug is taken
func (c *Category) SlugWithSuffix(suffix int) string {
	return fmt.Sprintf("%s-%04d", Slugify(c.Name), suffix%10000)
}

// IsRoot reports a category without a parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// SetDescription sets or clears the description
func (c *Category) SetDescription(description string) {
	if strings.TrimSpace(description) == "" {
		c.Description = nil
		return
	}
	trimmed := strings.TrimSpace(description)
	c.Description = &trimmed
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (c *Category) UpdateTimestamp() {
	c.UpdatedAt = Now()
}

// CategoryNode is a category with its nested children
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree nests categories under their parents starting from the
// roots, down to depth levels of children. Categories whose parent is not in
// the list are dropped.
func BuildCategoryTree(categories []*Category, depth int) []*CategoryNode {
	byParent := make(map[string][]*Category)
	var roots []*Category
	for _, c := range categories {
		if c.IsRoot() {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	var build func(c *Category, level int) *CategoryNode
	build = func(c *Category, level int) *CategoryNode {
		node := &CategoryNode{Category: *c, Children: []*CategoryNode{}}
		if level >= depth {
			return node
		}
		for _, child := range byParent[c.ID] {
			node.Children = append(node.Children, build(child, level+1))
		}
		return node
	}

	tree := make([]*CategoryNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root, 0))
	}
	return tree
}
