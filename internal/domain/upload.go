package domain

import "fmt"

// Location tags which root an upload was routed to
type Location string

const (
	LocationPrimary   Location = "primary"
	LocationSecondary Location = "secondary"
)

// Category is a logical grouping of uploaded content
type Category string

// Upload categories, one per content kind the platform manages
const (
	CategoryCompetitions Category = "competitions"
	CategoryWorks        Category = "works"
	CategoryHonors       Category = "honors"
	CategoryCourses      Category = "courses"
	CategoryAvatars      Category = "avatars"
	CategoryAttachments  Category = "attachments"
)

var categorySubdirs = map[Category]string{
	CategoryCompetitions: "competitions",
	CategoryWorks:        "works",
	CategoryHonors:       "honors",
	CategoryCourses:      "courses",
	CategoryAvatars:      "avatars",
	CategoryAttachments:  "attachments",
}

// ParseCategory validates a category identifier
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categorySubdirs[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Subdir returns the fixed subdirectory name for the category
func (c Category) Subdir() string {
	return categorySubdirs[c]
}

// Categories returns every known category
func Categories() []Category {
	return []Category{
		CategoryCompetitions,
		CategoryWorks,
		CategoryHonors,
		CategoryCourses,
		CategoryAvatars,
		CategoryAttachments,
	}
}

// UploadTarget is the allocator's answer for one upload. It is never persisted.
type UploadTarget struct {
	Dir       string   `json:"dir"`
	URLPrefix string   `json:"urlPrefix"`
	Location  Location `json:"location"`
}
