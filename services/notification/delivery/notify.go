package delivery

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/middleware"
)

const requestDateFormat = "2006-01-02"

type notifyHandler struct {
	cuc domain.ComposerUseCase
}

func NewNotifyDelivery(app *fiber.App, uc domain.ComposerUseCase) {
	handler := &notifyHandler{
		cuc: uc,
	}

	route := app.Group("/notify", middleware.AuthRequired())

	route.Post("/absence", handler.deliveryAbsence)
	route.Get("/absence-sent", handler.deliveryAbsenceSent)
	route.Post("/leave-request", handler.deliveryLeaveRequest)
	route.Post("/leave-status", middleware.RoleRequired(domain.RoleAdmin), handler.deliveryLeaveStatus)
	route.Post("/test", middleware.RoleRequired(domain.RoleAdmin), handler.deliveryTest)
}

type absenceRequest struct {
	StudentID string `json:"student_id" valid:"required~Student ID is required,uuid~Invalid student ID"`
	Date      string `json:"date" valid:"optional"`
}

type leaveRequestRequest struct {
	TeacherName string `json:"teacher_name" valid:"required~Teacher name is required"`
	LeaveType   string `json:"leave_type" valid:"required~Leave type is required"`
	StartDate   string `json:"start_date" valid:"required~Start date is required"`
	EndDate     string `json:"end_date" valid:"required~End date is required"`
	Reason      string `json:"reason" valid:"required~Reason is required"`
}

type leaveStatusRequest struct {
	TeacherID    string `json:"teacher_id" valid:"required~Teacher ID is required,uuid~Invalid teacher ID"`
	LeaveType    string `json:"leave_type" valid:"required~Leave type is required"`
	Approved     bool   `json:"approved"`
	AdminRemarks string `json:"admin_remarks" valid:"optional"`
}

type testRequest struct {
	StudentID string `json:"student_id" valid:"required~Student ID is required,uuid~Invalid student ID"`
}

// composeResponse maps a ComposeResult onto the tri-state summary the
// triggering screens show: full success, partial ("saved; could not be
// sent"), or a plain failure. Business failures are normal outcomes and
// answer with 200, not 5xx.
func composeResponse(c *fiber.Ctx, claims *domain.Claims, functionName string, result *domain.ComposeResult) error {
	if result.Success {
		config.PrintLogInfo(&claims.Email, fiber.StatusOK, functionName)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("notifications sent to %d recipient(s)", result.SentCount),
			"data":    result,
		})
	}

	if strings.Contains(result.Error, "no resolvable recipient") {
		config.PrintLogInfo(&claims.Email, fiber.StatusOK, functionName)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "saved; notification could not be sent - no recipient mapping found",
			"data":    result,
		})
	}

	config.PrintLogInfo(&claims.Email, fiber.StatusInternalServerError, functionName)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": result.Error,
		"data":    result,
	})
}

func (h *notifyHandler) deliveryAbsence(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	var req absenceRequest
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

	payload := &domain.EventPayload{
		StudentID: uuid.MustParse(req.StudentID),
		SentBy:    claims.UserID,
	}
	if req.Date != "" {
		date, err := time.Parse(requestDateFormat, req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "invalid date, expected YYYY-MM-DD",
			})
		}
		payload.AbsenceDate = date
	}

	result := h.cuc.ComposeAndPersist(c.Context(), claims.TenantID, domain.EventAbsence, payload)
	return composeResponse(c, claims, "NotifyAbsence", result)
}

func (h *notifyHandler) deliveryAbsenceSent(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	studentID, err := uuid.Parse(c.Query("student_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid student_id",
		})
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse(requestDateFormat, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "invalid date, expected YYYY-MM-DD",
			})
		}
	}

	alreadySent, err := h.cuc.AbsenceAlreadyNotified(c.Context(), claims.TenantID, studentID, date)
	if err != nil {
		config.PrintLogInfo(&claims.Email, fiber.StatusInternalServerError, "AbsenceAlreadyNotified")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to check absence notification history",
		})
	}

	config.PrintLogInfo(&claims.Email, fiber.StatusOK, "AbsenceAlreadyNotified")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"already_sent": alreadySent},
	})
}

func (h *notifyHandler) deliveryLeaveRequest(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	var req leaveRequestRequest
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

	payload := &domain.EventPayload{
		SentBy:      claims.UserID,
		TeacherName: req.TeacherName,
		LeaveType:   req.LeaveType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Reason:      req.Reason,
	}

	result := h.cuc.ComposeAndPersist(c.Context(), claims.TenantID, domain.EventLeaveRequestForAdmins, payload)
	return composeResponse(c, claims, "NotifyLeaveRequest", result)
}

func (h *notifyHandler) deliveryLeaveStatus(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	var req leaveStatusRequest
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

	payload := &domain.EventPayload{
		SentBy:       claims.UserID,
		TeacherID:    uuid.MustParse(req.TeacherID),
		LeaveType:    req.LeaveType,
		Approved:     req.Approved,
		AdminRemarks: req.AdminRemarks,
	}

	result := h.cuc.ComposeAndPersist(c.Context(), claims.TenantID, domain.EventLeaveStatusForTeacher, payload)
	return composeResponse(c, claims, "NotifyLeaveStatus", result)
}

func (h *notifyHandler) deliveryTest(c *fiber.Ctx) error {
	claims := c.Locals("user").(*domain.Claims)

	var req testRequest
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

	payload := &domain.EventPayload{
		StudentID: uuid.MustParse(req.StudentID),
		SentBy:    claims.UserID,
	}

	result := h.cuc.ComposeAndPersist(c.Context(), claims.TenantID, domain.EventTest, payload)
	return composeResponse(c, claims, "NotifyTest", result)
}
