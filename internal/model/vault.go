package model

import "time"

// Folder groups files inside a user's vault. Files reference it through an
// optional FolderID; a folder with files in it cannot be deleted.
type Folder struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// File represents an uploaded blob's metadata record. The blob itself lives
// in object storage under StoragePath; DownloadURL is derived at read time
// (presigned) and never persisted.
type File struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	FolderID    *string   `json:"folder_id,omitempty"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	StoragePath string    `json:"storage_path"`
	DownloadURL string    `json:"download_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Note is a free-form text entry in a user's vault.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is a member's access level inside a vault.
type Role string

const (
	RoleViewer Role = "Viewer"
	RoleEditor Role = "Editor"
	RoleAdmin  Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Member is a named teammate on a user's vault with an assigned role.
type Member struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
