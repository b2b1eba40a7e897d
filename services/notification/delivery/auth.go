package delivery

import (
	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

type authHandler struct {
	auc domain.AuthUseCase
}

func NewAuthDelivery(app *fiber.App, uc domain.AuthUseCase) {
	handler := &authHandler{
		auc: uc,
	}

	route := app.Group("/login")
	route.Post("/user", handler.deliveryLogin)
}

func (h *authHandler) deliveryLogin(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if _, err := govalidator.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resp, err := h.auc.Login(c.Context(), &req)
	if err != nil {
		config.PrintLogInfo(&req.Email, fiber.StatusUnauthorized, "Login")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid email or password",
		})
	}

	config.PrintLogInfo(&req.Email, fiber.StatusOK, "Login")
	return c.Status(fiber.StatusOK).JSON(resp)
}
