package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/joey603/sidour-avoda/internal/domain"
)

// SiteSummary is one row of the director's site list.
type SiteSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	WorkersCount int    `json:"workers_count"`
}

// SiteInfo is the public registration-page view of a site.
type SiteInfo struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Shifts []domain.ShiftSlot `json:"shifts"`
}

// WorkerRegistration carries the public enrollment form fields.
type WorkerRegistration struct {
	Name         string                    `json:"name"`
	MaxShifts    int                       `json:"max_shifts"`
	Roles        []string                  `json:"roles"`
	Availability []domain.AvailabilitySlot `json:"availability"`
}

// Registration carries the account sign-up fields.
type Registration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates with an email or phone identifier and stores
// the returned bearer token.
func (c *Client) Login(ctx context.Context, login, password string) error {
	body := map[string]string{"password": password}
	if strings.Contains(login, "@") {
		body["email"] = login
	} else {
		body["phone"] = login
	}

	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: body}, RetryPolicy{})
	if err != nil {
		return err
	}

	var out tokenResponse
	if err := resp.Decode(&out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return errors.New("login response missing access token")
	}
	return c.store.Set(out.AccessToken)
}

// Register creates an account and stores the returned bearer token.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: reg}, RetryPolicy{})
	if err != nil {
		return err
	}

	var out tokenResponse
	if err := resp.Decode(&out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return errors.New("register response missing access token")
	}
	return c.store.Set(out.AccessToken)
}

// Logout discards the stored credential.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Sites fetches the director's site list.
func (c *Client) Sites(ctx context.Context) ([]SiteSummary, error) {
	return c.sites(ctx, RetryPolicy{})
}

func (c *Client) sites(ctx context.Context, policy RetryPolicy) ([]SiteSummary, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/director/sites/"}, policy)
	if err != nil {
		return nil, err
	}
	var out []SiteSummary
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSite removes one of the director's sites.
func (c *Client) DeleteSite(ctx context.Context, id string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/director/sites/" + id}, RetryPolicy{})
	return err
}

// SiteInfo fetches the public view of a site.
func (c *Client) SiteInfo(ctx context.Context, id string) (*SiteInfo, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/public/sites/" + id + "/info"}, RetryPolicy{})
	if err != nil {
		return nil, err
	}
	var out SiteInfo
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterWorker enrolls a worker on a site through the public form.
func (c *Client) RegisterWorker(ctx context.Context, siteID string, reg WorkerRegistration) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/public/sites/" + siteID + "/register", Body: reg}, RetryPolicy{})
	return err
}

// FilterSites returns the sites whose name contains the query,
// case-insensitively. An empty query returns the input unchanged.
func FilterSites(sites []SiteSummary, query string) []SiteSummary {
	if query == "" {
		return sites
	}
	needle := strings.ToLower(query)
	filtered := make([]SiteSummary, 0, len(sites))
	for _, site := range sites {
		if strings.Contains(strings.ToLower(site.Name), needle) {
			filtered = append(filtered, site)
		}
	}
	return filtered
}
