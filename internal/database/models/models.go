// Package models contains the database model definitions.
// These models map directly to the SQLite database tables
// and mirror the relational schema the web client was built against.
package models

import (
	"time"
)

// Job status values.
const (
	JobStatusPlanned  = "planned"
	JobStatusPrinting = "printing"
	JobStatusPrinted  = "printed"
)

// Guide type values.
const (
	GuideTypeLayering = "layering"
	GuideTypeContrast = "contrast"
)

// Access token status values.
const (
	TokenStatusActive  = "active"
	TokenStatusUsed    = "used"
	TokenStatusRevoked = "revoked"
)

// User represents a user in the system.
// Table: users
type User struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;uniqueIndex" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (User) TableName() string { return "users" }

// Session maps an opaque bearer token to a user.
// Table: sessions
type Session struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Token     string    `gorm:"column:token;uniqueIndex" json:"-"`
	UserID    string    `gorm:"column:user_id;index" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	ExpiresAt time.Time `gorm:"column:expires_at" json:"expiresAt"`
}

func (Session) TableName() string { return "sessions" }

// Batch represents a batch of print jobs grouped by project/due date.
// Table: batches
type Batch struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	UserID     string    `gorm:"column:user_id;index" json:"userId"`
	Name       string    `gorm:"column:name" json:"name"`
	Tag        *string   `gorm:"column:tag" json:"tag"` // "Resin" or "FDM"
	DueDate    *string   `gorm:"column:due_date" json:"dueDate"`
	IsArchived bool      `gorm:"column:is_archived;default:false" json:"isArchived"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// Relations (loaded separately)
	PrintJobs []PrintJob     `gorm:"foreignKey:BatchID" json:"printJobs"`
	Reprints  []BatchReprint `gorm:"foreignKey:BatchID" json:"reprints"`

	// Progress is recomputed from job statuses on every fetch, never stored.
	Progress int `gorm:"-" json:"progress"`
}

func (Batch) TableName() string { return "batches" }

// PrintJob represents one printer run containing multiple named items.
// Table: print_jobs
type PrintJob struct {
	ID              string     `gorm:"column:id;primaryKey" json:"id"`
	BatchID         string     `gorm:"column:batch_id;index" json:"batchId"`
	Name            *string    `gorm:"column:name" json:"name"`
	Status          string     `gorm:"column:status;default:planned" json:"status"`
	ProgressPercent int        `gorm:"column:progress_percent;default:0" json:"progressPercent"`
	StartedAt       *time.Time `gorm:"column:started_at" json:"startedAt"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// Relations
	Items []PrintJobItem `gorm:"foreignKey:PrintJobID" json:"items"`

	// DisplayNumber is 1-based by list position, assigned at fetch time.
	DisplayNumber int `gorm:"-" json:"displayNumber"`
}

func (PrintJob) TableName() string { return "print_jobs" }

// PrintJobItem represents a single item in a print job.
// Table: print_job_items
type PrintJobItem struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	PrintJobID string `gorm:"column:print_job_id;index" json:"printJobId"`
	Name       string `gorm:"column:name" json:"name"`
	LinkURL    string `gorm:"column:link_url;default:''" json:"linkUrl"`
	Quantity   int    `gorm:"column:quantity" json:"quantity"`
}

func (PrintJobItem) TableName() string { return "print_job_items" }

// BatchReprint represents outstanding rework for items that failed a print
// run. It keeps only a name/quantity snapshot, not a link to the item.
// Table: batch_reprints
type BatchReprint struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	BatchID   string    `gorm:"column:batch_id;index" json:"batchId"`
	Name      string    `gorm:"column:name" json:"name"`
	Quantity  int       `gorm:"column:quantity" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (BatchReprint) TableName() string { return "batch_reprints" }

// PaintingGuide represents a structured painting recipe.
// Table: painting_guides
type PaintingGuide struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	UserID        string    `gorm:"column:user_id;index" json:"userId"`
	Name          string    `gorm:"column:name" json:"name"`
	Note          *string   `gorm:"column:note" json:"note"`
	GuideType     string    `gorm:"column:guide_type;default:layering" json:"guideType"`
	PrimerPaintID *string   `gorm:"column:primer_paint_id" json:"primerPaintId"`
	IsAirbrush    bool      `gorm:"column:is_airbrush;default:false" json:"isAirbrush"`
	IsSlapchop    bool      `gorm:"column:is_slapchop;default:false" json:"isSlapchop"`
	SlapchopNote  *string   `gorm:"column:slapchop_note" json:"slapchopNote"`
	ImageRef      *string   `gorm:"column:image_ref" json:"imageRef"` // Opaque file-storage id
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// Relations
	Details []GuideDetail `gorm:"foreignKey:GuideID" json:"details"`
}

func (PaintingGuide) TableName() string { return "painting_guides" }

// GuideDetail represents a step in a painting guide.
// Table: guide_details
type GuideDetail struct {
	ID          string  `gorm:"column:id;primaryKey" json:"id"`
	GuideID     string  `gorm:"column:guide_id;index" json:"guideId"`
	Name        string  `gorm:"column:name" json:"name"`
	Description *string `gorm:"column:description" json:"description"`
	Category    *string `gorm:"column:category" json:"category"`
	OrderIndex  int     `gorm:"column:order_index" json:"orderIndex"`

	// Relations
	Paints []GuidePaint `gorm:"foreignKey:DetailID" json:"paints"`

	// UI-only fields derived at load time, never persisted.
	LayerRoles  []string `gorm:"-" json:"layerRoles"`
	IsCollapsed bool     `gorm:"-" json:"isCollapsed"`
}

func (GuideDetail) TableName() string { return "guide_details" }

// GuidePaint represents a paint assigned to a role slot within a guide step.
// Table: guide_paints
type GuidePaint struct {
	ID            string  `gorm:"column:id;primaryKey" json:"id"`
	DetailID      string  `gorm:"column:detail_id;index" json:"detailId"`
	PaintName     string  `gorm:"column:paint_name" json:"paintName"`
	PaintColorHex string  `gorm:"column:paint_color_hex" json:"paintColorHex"`
	PaintID       *string `gorm:"column:paint_id" json:"paintId"` // Optional link to catalog
	Role          *string `gorm:"column:role" json:"role"`        // base, layer_N, highlight, contrast, edge, shade, drybrush
	Ratio         int     `gorm:"column:ratio;default:1" json:"ratio"`
	Note          *string `gorm:"column:note" json:"note"`
	OrderIndex    int     `gorm:"column:order_index" json:"orderIndex"`
}

func (GuidePaint) TableName() string { return "guide_paints" }

// Brand represents a paint manufacturer in the shared catalog.
// Table: paint_brands
type Brand struct {
	ID   string `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;uniqueIndex" json:"name"`
}

func (Brand) TableName() string { return "paint_brands" }

// PaintSet represents a product line within a brand.
// Table: paint_sets
type PaintSet struct {
	ID      string `gorm:"column:id;primaryKey" json:"id"`
	BrandID string `gorm:"column:brand_id;index" json:"brandId"`
	Name    string `gorm:"column:name" json:"name"`
}

func (PaintSet) TableName() string { return "paint_sets" }

// CatalogPaint represents a paint in the shared catalog.
// Table: catalog_paints
type CatalogPaint struct {
	ID          string  `gorm:"column:id;primaryKey" json:"id"`
	BrandID     string  `gorm:"column:brand_id;index" json:"brandId"`
	SetID       *string `gorm:"column:set_id;index" json:"setId"`
	Name        string  `gorm:"column:name" json:"name"`
	ProductCode string  `gorm:"column:product_code" json:"productCode"`
	ColorHex    string  `gorm:"column:color_hex" json:"colorHex"`

	// Relations
	Brand *Brand    `gorm:"foreignKey:BrandID" json:"brand"`
	Set   *PaintSet `gorm:"foreignKey:SetID" json:"set"`
}

func (CatalogPaint) TableName() string { return "catalog_paints" }

// OwnedPaint links a user to a catalog paint they own.
// Table: user_paints
type OwnedPaint struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;index:idx_user_paint,unique" json:"userId"`
	PaintID   string    `gorm:"column:paint_id;index:idx_user_paint,unique" json:"paintId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// Relations
	Paint *CatalogPaint `gorm:"foreignKey:PaintID" json:"paint"`
}

func (OwnedPaint) TableName() string { return "user_paints" }

// CustomPaint represents a user-defined paint outside the shared catalog.
// Table: custom_paints
type CustomPaint struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;index" json:"userId"`
	Name        string    `gorm:"column:name" json:"name"`
	BrandName   string    `gorm:"column:brand_name" json:"brandName"`
	SetName     string    `gorm:"column:set_name" json:"setName"`
	ProductCode string    `gorm:"column:product_code" json:"productCode"`
	ColorHex    string    `gorm:"column:color_hex" json:"colorHex"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (CustomPaint) TableName() string { return "custom_paints" }

// WishlistPaint represents a paint on a user's shopping list. Exactly one
// of PaintID/CustomPaintID is set.
// Table: paint_wishlist
type WishlistPaint struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	UserID        string    `gorm:"column:user_id;index:idx_user_wishlist,unique" json:"userId"`
	PaintID       *string   `gorm:"column:paint_id;index:idx_user_wishlist,unique" json:"paintId"`
	CustomPaintID *string   `gorm:"column:custom_paint_id" json:"customPaintId"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// Relations
	Paint       *CatalogPaint `gorm:"foreignKey:PaintID" json:"paint"`
	CustomPaint *CustomPaint  `gorm:"foreignKey:CustomPaintID" json:"customPaint"`
}

func (WishlistPaint) TableName() string { return "paint_wishlist" }

// UserSetting holds per-user integration state (Drive connection).
// Table: user_settings
type UserSetting struct {
	ID                string  `gorm:"column:id;primaryKey" json:"id"`
	UserID            string  `gorm:"column:user_id;uniqueIndex" json:"userId"`
	DriveRefreshToken *string `gorm:"column:drive_refresh_token" json:"-"`
	DriveFolderID     *string `gorm:"column:drive_folder_id" json:"driveFolderId"`
}

func (UserSetting) TableName() string { return "user_settings" }

// AccessToken is an invite token required for registration.
// Table: access_tokens
type AccessToken struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	TokenCode   string     `gorm:"column:token_code;uniqueIndex" json:"tokenCode"`
	Status      string     `gorm:"column:status;default:active" json:"status"`
	UsedByEmail *string    `gorm:"column:used_by_email" json:"usedByEmail"`
	UsedAt      *time.Time `gorm:"column:used_at" json:"usedAt"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (AccessToken) TableName() string { return "access_tokens" }

// BannedUser records an email refused at session resolution.
// Table: banned_users
type BannedUser struct {
	ID       string    `gorm:"column:id;primaryKey" json:"id"`
	Email    string    `gorm:"column:email;uniqueIndex" json:"email"`
	Reason   string    `gorm:"column:reason" json:"reason"`
	BannedBy string    `gorm:"column:banned_by" json:"bannedBy"`
	BannedAt time.Time `gorm:"column:banned_at;autoCreateTime" json:"bannedAt"`
}

func (BannedUser) TableName() string { return "banned_users" }

// All returns every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Batch{},
		&PrintJob{},
		&PrintJobItem{},
		&BatchReprint{},
		&PaintingGuide{},
		&GuideDetail{},
		&GuidePaint{},
		&Brand{},
		&PaintSet{},
		&CatalogPaint{},
		&OwnedPaint{},
		&CustomPaint{},
		&WishlistPaint{},
		&UserSetting{},
		&AccessToken{},
		&BannedUser{},
	}
}
