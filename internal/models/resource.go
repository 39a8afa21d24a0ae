// internal/models/resource.go
package models

import (
	"github.com/google/uuid"
)

// EducationalResource carries bilingual content written by admins.
type EducationalResource struct {
	BaseModel
	AuthorID     *uuid.UUID `json:"author_id" gorm:"type:uuid;index"`
	Title        string     `json:"title" gorm:"size:255;not null" validate:"required"`
	TitleLocal   string     `json:"title_local,omitempty" gorm:"size:255"`
	Content      string     `json:"content" gorm:"type:text;not null" validate:"required"`
	ContentLocal string     `json:"content_local,omitempty" gorm:"type:text"`
	Category     string     `json:"category,omitempty" gorm:"size:100;index"`
	MediaURL     string     `json:"media_url,omitempty" gorm:"type:text"`
	IsPublished  bool       `json:"is_published" gorm:"not null;index"`
	ViewCount    int64      `json:"view_count" gorm:"not null;check:chk_resources_views,view_count >= 0" validate:"gte=0"`
}

func (EducationalResource) TableName() string {
	return "educational_resources"
}

func (r *EducationalResource) AuthoredBy(accountID uuid.UUID) bool {
	return r.AuthorID != nil && *r.AuthorID == accountID
}

type ResourceBookmark struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_resource" validate:"required"`
	ResourceID uuid.UUID `json:"resource_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_bookmarks_user_resource" validate:"required"`
}

func (ResourceBookmark) TableName() string {
	return "resource_bookmarks"
}
