package model

// Prefs holds per-identity UI preferences: the sidebar flag, recent search
// terms (most recent first), and recently viewed question ids. OwnerKey is
// the user id for authenticated users or the guest key for guests.
type Prefs struct {
	ID             int64    `json:"id"`
	OwnerKey       string   `json:"owner_key"`
	SidebarOpen    bool     `json:"sidebar_open"`
	SearchHistory  []string `json:"search_history,omitempty"`
	RecentlyViewed []int64  `json:"recently_viewed,omitempty"`
}

func (p Prefs) RecordID() int64 { return p.ID }
