package domain

import "time"

// ShiftSlot describes one recurring shift a site wants covered.
type ShiftSlot struct {
	Day      string `json:"day"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Capacity int    `json:"capacity"`
}

// Site is a workplace managed by a director.
type Site struct {
	ID         string
	DirectorID string
	Name       string
	Shifts     []ShiftSlot
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SiteSummary is the listing row shown to a director.
type SiteSummary struct {
	ID           string
	Name         string
	WorkersCount int
}

// AvailabilitySlot marks a window a worker can take shifts in.
type AvailabilitySlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// SiteWorker is a worker enrolled on a site through the public
// registration form, together with their scheduling constraints.
type SiteWorker struct {
	ID           string
	SiteID       string
	Name         string
	MaxShifts    int
	Roles        []string
	Availability []AvailabilitySlot
	CreatedAt    time.Time
}
