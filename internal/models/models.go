package models

import "time"

// RoleName enumerates the account roles.
type RoleName string

const (
	RoleAdmin  RoleName = "admin"
	RoleEditor RoleName = "editor"
)

// User represents an authenticated account.
type User struct {
	ID           string   `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string   `json:"name"`
	Email        string   `gorm:"uniqueIndex" json:"email"`
	PasswordHash string   `json:"-"`
	Role         RoleName `gorm:"type:varchar(16)" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Channel is a broadcast channel carrying a schedule.
type Channel struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `json:"name"`
	Slug            string    `gorm:"uniqueIndex" json:"slug"`
	Description     string    `gorm:"type:text" json:"description,omitempty"`
	DefaultEmbedURL string    `json:"default_embed_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ContentType enumerates program content kinds.
type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentLive     ContentType = "live"
	ContentPlaylist ContentType = "playlist"
)

// Program is a piece of content that can be assigned to schedule slots.
type Program struct {
	ID              string      `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID       string      `gorm:"type:uuid;index" json:"channel_id"`
	Title           string      `gorm:"index" json:"title"`
	Description     string      `gorm:"type:text" json:"description,omitempty"`
	Tags            string      `json:"tags,omitempty"`
	ContentType     ContentType `gorm:"type:varchar(16)" json:"content_type"`
	MediaURL        string      `json:"media_url,omitempty"`
	UploadedPath    string      `json:"uploaded_path,omitempty"`
	DurationSeconds int         `json:"duration_seconds,omitempty"`
	CreatedBy       string      `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ItemStatus tracks the schedule item lifecycle. Transitions only move
// forward: scheduled -> running -> completed, with cancelled as an
// externally-set sink state.
type ItemStatus string

const (
	StatusScheduled ItemStatus = "scheduled"
	StatusRunning   ItemStatus = "running"
	StatusCompleted ItemStatus = "completed"
	StatusCancelled ItemStatus = "cancelled"
)

// ActiveStatuses are the statuses that occupy a time slot for conflict
// purposes. Cancelled and completed items are exempt.
func ActiveStatuses() []ItemStatus {
	return []ItemStatus{StatusScheduled, StatusRunning}
}

// ScheduleItem is a time-bound assignment of a program to a channel.
// EndTime is exclusive: items touching at a boundary do not conflict.
type ScheduleItem struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID string     `gorm:"type:uuid;index" json:"program_id"`
	ChannelID string     `gorm:"type:uuid;index" json:"channel_id"`
	StartTime time.Time  `gorm:"index" json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	IsLive    bool       `json:"is_live"`
	Status    ItemStatus `gorm:"type:varchar(16);index" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Ticker is an independent news-ticker entry. Lower priority sorts first.
type Ticker struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Text      string    `gorm:"type:text" json:"text"`
	Priority  int       `json:"priority"`
	Active    bool      `gorm:"index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Ad is a banner advertisement shown alongside the player.
type Ad struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	ClickURL  string    `json:"click_url,omitempty"`
	Priority  int       `json:"priority"`
	Active    bool      `gorm:"index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactMessage stores contact form submissions.
type ContactMessage struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
