package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/joey603/sidour-avoda/internal/api/dto"
	"github.com/joey603/sidour-avoda/internal/auth"
	"github.com/joey603/sidour-avoda/internal/service"
	apperrors "github.com/joey603/sidour-avoda/pkg/util/errorutil"
)

// SitesHandler exposes the director-facing site endpoints.
type SitesHandler struct {
	sites *service.SiteService
}

// NewSitesHandler constructs handler.
func NewSitesHandler(sites *service.SiteService) *SitesHandler {
	return &SitesHandler{sites: sites}
}

// List handles GET /director/sites/.
func (h *SitesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	summaries, err := h.sites.ListForDirector(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	out := make([]dto.SiteSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, dto.SiteSummaryResponse{
			ID:           s.ID,
			Name:         s.Name,
			WorkersCount: s.WorkersCount,
		})
	}
	return c.JSON(out)
}

// Create handles POST /director/sites/.
func (h *SitesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SiteCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	site, err := h.sites.Create(c.Context(), principal.User.ID, req.Name, req.Shifts)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.SiteSummaryResponse{
		ID:   site.ID,
		Name: site.Name,
	})
}

// Delete handles DELETE /director/sites/:id.
func (h *SitesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.sites.Delete(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}
