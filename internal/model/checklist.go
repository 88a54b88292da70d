package model

import "time"

// Mode selects which backend is authoritative for a checklist.
type Mode string

const (
	// ModeLocal stores the checklist in the local durable key-value store.
	ModeLocal Mode = "local"

	// ModeAPI stores the checklist behind the remote checklist API.
	ModeAPI Mode = "api"
)

// Valid reports whether m is a recognized mode.
func (m Mode) Valid() bool {
	return m == ModeLocal || m == ModeAPI
}

// Checklist is a named, ordered collection of items.
//
// The Slug is derived from Name once at creation time and never changes
// afterwards, even when the checklist is renamed; it is the lookup key
// for both local storage and remote API paths.
type Checklist struct {
	ID        string          `json:"id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Mode      Mode            `json:"mode"`
	Items     []ChecklistItem `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ChecklistItem is a single entry within a checklist. Its lifecycle is
// bound to the parent checklist; deleting the checklist discards all items.
type ChecklistItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemIndex returns the position of the item with the given ID in the
// ordered item sequence, or -1 if it is absent.
func (c *Checklist) ItemIndex(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// StorageKey returns the local key-value storage key for the given slug.
func StorageKey(slug string) string {
	return "checklist_" + slug
}
