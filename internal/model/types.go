package model

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// MediaKind is the closed set of clip content kinds.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaImage MediaKind = "image"
	MediaText  MediaKind = "text"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaVideo, MediaAudio, MediaImage, MediaText:
		return true
	}
	return false
}

// TrackKind is the closed set of timeline lane kinds. Track order within a
// project is the z-order for overlay layering.
type TrackKind string

const (
	TrackVideo   TrackKind = "video"
	TrackAudio   TrackKind = "audio"
	TrackOverlay TrackKind = "overlay"
)

func (k TrackKind) Valid() bool {
	switch k {
	case TrackVideo, TrackAudio, TrackOverlay:
		return true
	}
	return false
}

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type TextPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TextStyle carries the payload of a text clip. Present only when the clip
// kind is MediaText.
type TextStyle struct {
	Content  string       `json:"content"`
	Font     string       `json:"font"`
	Size     float64      `json:"size"`
	Color    string       `json:"color"`
	Position TextPosition `json:"position"`
}

// Effects are sparse per-clip adjustment knobs; a nil field means "not set".
type Effects struct {
	Brightness *float64 `json:"brightness,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty"`
	Saturation *float64 `json:"saturation,omitempty"`
	Blur       *float64 `json:"blur,omitempty"`
}

// Clip is a placed, time-bounded reference to a media source. Its effective
// timeline interval is [Position, Position+Duration). StartTime is the trim
// offset into the source media, not a timeline coordinate.
type Clip struct {
	ID         string     `json:"id"`
	Kind       MediaKind  `json:"type"`
	Source     string     `json:"source"`
	StartTime  float64    `json:"startTime"`
	Duration   float64    `json:"duration"`
	TrackIndex int        `json:"track"`
	Position   float64    `json:"position"`
	Volume     *float64   `json:"volume,omitempty"`
	Effects    *Effects   `json:"effects,omitempty"`
	Text       *TextStyle `json:"text,omitempty"`
}

type Track struct {
	ID     string    `json:"id"`
	Kind   TrackKind `json:"type"`
	Name   string    `json:"name"`
	Clips  []Clip    `json:"clips"`
	Muted  bool      `json:"muted"`
	Volume float64   `json:"volume"`
}

// Project is the aggregate root of the editor. Timestamps are Unix millis so
// the serialized form round-trips losslessly.
type Project struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Tracks     []Track    `json:"tracks"`
	Duration   float64    `json:"duration"`
	Resolution Resolution `json:"resolution"`
	FPS        float64    `json:"fps"`
	CreatedAt  int64      `json:"createdAt"`
	UpdatedAt  int64      `json:"updatedAt"`
}

type AITool string

const (
	ToolTextToImage       AITool = "text-to-image"
	ToolImageToVideo      AITool = "image-to-video"
	ToolBackgroundRemoval AITool = "background-removal"
	ToolSpeechToText      AITool = "speech-to-text"
)

func (t AITool) Valid() bool {
	switch t {
	case ToolTextToImage, ToolImageToVideo, ToolBackgroundRemoval, ToolSpeechToText:
		return true
	}
	return false
}

type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "pending"
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationError      GenerationStatus = "error"
)

// AIGeneration is the record of one AI request; it lives in the generation
// history, not inside any project.
type AIGeneration struct {
	ID        string           `json:"id"`
	Tool      AITool           `json:"type"`
	Prompt    string           `json:"prompt"`
	Status    GenerationStatus `json:"status"`
	Result    string           `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// MediaItem is a reusable library asset, independent of any clip placement.
// Clips copy its fields at drop time; there is no live link back.
type MediaItem struct {
	ID        string    `json:"id"`
	Kind      MediaKind `json:"type"`
	Source    string    `json:"source"`
	Name      string    `json:"name"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt int64     `json:"createdAt"`
	Tags      []string  `json:"tags"`
}

type StateEventType string

const (
	EventProjectCreated  StateEventType = "project_created"
	EventProjectReplaced StateEventType = "project_replaced"
	EventProjectUpdated  StateEventType = "project_updated"
	EventProjectDeleted  StateEventType = "project_deleted"
	EventTrackAdded      StateEventType = "track_added"
	EventTrackRemoved    StateEventType = "track_removed"
	EventTrackUpdated    StateEventType = "track_updated"
	EventClipAdded       StateEventType = "clip_added"
	EventClipRemoved     StateEventType = "clip_removed"
	EventClipUpdated     StateEventType = "clip_updated"
	EventClipMoved       StateEventType = "clip_moved"
	EventClipPasted      StateEventType = "clip_pasted"
	EventMediaAdded      StateEventType = "media_added"
	EventMediaRemoved    StateEventType = "media_removed"
	EventGeneration      StateEventType = "generation_updated"
	EventTransportTime   StateEventType = "transport_time"
	EventPlaybackStarted StateEventType = "playback_started"
	EventPlaybackStopped StateEventType = "playback_stopped"
)

// StateEvent is what store mutations and transport transitions publish to
// subscribers (UI clients over the websocket, mostly).
type StateEvent struct {
	EventID string         `json:"event_id"`
	Type    StateEventType `json:"type"`
	TS      int64          `json:"ts"`
	Payload map[string]any `json:"payload,omitempty"`
}
