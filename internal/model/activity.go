package model

import "time"

const (
	DefaultActivityIcon  = "circle"
	DefaultActivityColor = "#6366f1"
)

// Activity is a node in a per-user tree. ParentID nil means root.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ParentID  *string   `json:"parentId"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivityDisplay is the denormalized subset carried on session views
// and cached client-side.
type ActivityDisplay struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (a Activity) Display() ActivityDisplay {
	return ActivityDisplay{ID: a.ID, Name: a.Name, Icon: a.Icon, Color: a.Color}
}
