package delivery

import (
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/middleware"
)

type coordinatorHandler struct {
	duc domain.CoordinatorUseCase
}

func NewCoordinatorDelivery(app *fiber.App, uc domain.CoordinatorUseCase) {
	handler := &coordinatorHandler{
		duc: uc,
	}

	route := app.Group("/delivery", middleware.AuthRequired())

	route.Post("/mark-sent", handler.deliveryMarkSent)
	route.Post("/mark-failed", handler.deliveryMarkFailed)
}

type markSentRequest struct {
	NotificationID string `json:"notification_id" valid:"required~Notification ID is required,uuid~Invalid notification ID"`
	RecipientID    string `json:"recipient_id" valid:"uuid~Invalid recipient ID,optional"`
}

type markFailedRequest struct {
	NotificationID string `json:"notification_id" valid:"required~Notification ID is required,uuid~Invalid notification ID"`
	RecipientID    string `json:"recipient_id" valid:"required~Recipient ID is required,uuid~Invalid recipient ID"`
	Reason         string `json:"reason" valid:"required~Reason is required"`
}

func (h *coordinatorHandler) deliveryMarkSent(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	var req markSentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var recipientID *uuid.UUID
	if req.RecipientID != "" {
		parsed := uuid.MustParse(req.RecipientID)
		recipientID = &parsed
	}

	result := h.duc.Deliver(c.Context(), claims.TenantID, uuid.MustParse(req.NotificationID), recipientID)
	if !result.Success {
		status := fiber.StatusInternalServerError
		if strings.Contains(result.Error, "no recipients matched") {
			status = fiber.StatusNotFound
		}
		config.PrintLogInfo(&claims.Email, status, "MarkSent")
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": result.Error,
			"data":    result,
		})
	}

	config.PrintLogInfo(&claims.Email, fiber.StatusOK, "MarkSent")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "delivery status updated",
		"data":    result,
	})
}

func (h *coordinatorHandler) deliveryMarkFailed(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	var req markFailedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	result := h.duc.MarkFailed(c.Context(), claims.TenantID, uuid.MustParse(req.NotificationID), uuid.MustParse(req.RecipientID), req.Reason)
	if !result.Success {
		status := fiber.StatusInternalServerError
		if strings.Contains(result.Error, "not found") {
			status = fiber.StatusNotFound
		}
		config.PrintLogInfo(&claims.Email, status, "MarkFailed")
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": result.Error,
			"data":    result,
		})
	}

	config.PrintLogInfo(&claims.Email, fiber.StatusOK, "MarkFailed")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "recipient marked failed",
		"data":    result,
	})
}
