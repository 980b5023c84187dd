package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/joey603/sidour-avoda/internal/api/dto"
	"github.com/joey603/sidour-avoda/internal/service"
	apperrors "github.com/joey603/sidour-avoda/pkg/util/errorutil"
)

// PublicHandler exposes the unauthenticated site endpoints used by the
// worker enrollment page.
type PublicHandler struct {
	sites *service.SiteService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(sites *service.SiteService) *PublicHandler {
	return &PublicHandler{sites: sites}
}

// SiteInfo handles GET /public/sites/:id/info.
func (h *PublicHandler) SiteInfo(c *fiber.Ctx) error {
	info, err := h.sites.PublicInfo(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.SiteInfoResponse{ID: info.ID, Name: info.Name, Shifts: info.Shifts})
}

// RegisterWorker handles POST /public/sites/:id/register.
func (h *PublicHandler) RegisterWorker(c *fiber.Ctx) error {
	var req dto.WorkerRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	_, err := h.sites.RegisterWorker(c.Context(), c.Params("id"), service.WorkerRegistration{
		Name:         req.Name,
		MaxShifts:    req.MaxShifts,
		Roles:        req.Roles,
		Availability: req.Availability,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"ok": true})
}
