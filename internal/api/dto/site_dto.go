package dto

import "github.com/joey603/sidour-avoda/internal/domain"

// SiteCreateRequest payload for a director adding a site.
type SiteCreateRequest struct {
	Name   string             `json:"name"`
	Shifts []domain.ShiftSlot `json:"shifts"`
}

// SiteSummaryResponse is one row of the director's site list.
type SiteSummaryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	WorkersCount int    `json:"workers_count"`
}

// SiteInfoResponse is the public registration-page view.
type SiteInfoResponse struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Shifts []domain.ShiftSlot `json:"shifts"`
}

// WorkerRegisterRequest payload for the public enrollment form.
type WorkerRegisterRequest struct {
	Name         string                    `json:"name"`
	MaxShifts    int                       `json:"max_shifts"`
	Roles        []string                  `json:"roles"`
	Availability []domain.AvailabilitySlot `json:"availability"`
}
