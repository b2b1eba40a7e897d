package delivery

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/middleware"
)

type diagnosticHandler struct {
	duc domain.DiagnosticUseCase
}

func NewDiagnosticDelivery(app *fiber.App, uc domain.DiagnosticUseCase) {
	handler := &diagnosticHandler{
		duc: uc,
	}

	route := app.Group("/diagnostic", middleware.AuthRequired(), middleware.RoleRequired(domain.RoleAdmin))

	route.Get("/analysis", handler.deliveryAnalysis)
	route.Post("/repair", handler.deliveryRepair)
	route.Get("/readiness", handler.deliveryReadiness)
}

func (h *diagnosticHandler) deliveryAnalysis(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	analysis, err := h.duc.Analyze(c.Context(), claims.TenantID)
	if err != nil {
		config.PrintLogInfo(&claims.Email, fiber.StatusInternalServerError, "DiagnosticAnalysis")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to analyze parent relationships",
		})
	}

	config.PrintLogInfo(&claims.Email, fiber.StatusOK, "DiagnosticAnalysis")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "analysis complete",
		"data":    analysis,
	})
}

func (h *diagnosticHandler) deliveryRepair(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	repairLog, err := h.duc.Repair(c.Context(), claims.TenantID)
	if err != nil {
		config.PrintLogInfo(&claims.Email, fiber.StatusInternalServerError, "DiagnosticRepair")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to repair parent relationships",
		})
	}

	config.PrintLogInfo(&claims.Email, fiber.StatusOK, "DiagnosticRepair")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "repair complete",
		"data":    repairLog,
	})
}

func (h *diagnosticHandler) deliveryReadiness(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	summary, err := h.duc.ReadinessSummary(c.Context(), claims.TenantID)
	if err != nil {
		config.PrintLogInfo(&claims.Email, fiber.StatusInternalServerError, "DiagnosticReadiness")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to build readiness summary",
		})
	}

	config.PrintLogInfo(&claims.Email, fiber.StatusOK, "DiagnosticReadiness")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "readiness summary",
		"data":    summary,
	})
}
