package handlers

import (
	"log"
	"strings"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/middleware"
	businessflow "github.com/amirphl/orochi-admin/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AdminAuthHandlerInterface defines the contract for admin auth handlers
type AdminAuthHandlerInterface interface {
	Login(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
}

// AdminAuthHandler implements AdminAuthHandlerInterface
type AdminAuthHandler struct {
	baseHandler
	flow businessflow.AdminAuthFlow
}

func NewAdminAuthHandler(flow businessflow.AdminAuthFlow) *AdminAuthHandler {
	return &AdminAuthHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// Login authenticates an admin with username and password
// @Summary Admin login
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Incorrect credentials or admin not found"
// @Failure 403 {object} dto.APIResponse "Admin inactive"
// @Router /api/v1/admin/auth/login [post]
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/auth/login")
	defer cancel()

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))
	result, err := h.flow.Login(ctx, &req, metadata)
	if err != nil {
		// unknown usernames and wrong passwords look the same to the client
		if businessflow.IsAdminNotFound(err) || businessflow.IsIncorrectPassword(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid username or password", "INVALID_CREDENTIALS", nil)
		}
		return h.flowError(c, err, "Login failed", "LOGIN_FAILED",
			errorStatus{businessflow.IsAdminInactive, fiber.StatusForbidden},
		)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Admin token refresh
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminRefreshRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.AdminSessionDTO} "Token refreshed"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Router /api/v1/admin/auth/refresh [post]
func (h *AdminAuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.AdminRefreshRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/auth/refresh")
	defer cancel()

	session, err := h.flow.Refresh(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Token refresh failed", "REFRESH_FAILED",
			errorStatus{businessflow.IsInvalidToken, fiber.StatusUnauthorized},
			errorStatus{businessflow.IsAdminNotFound, fiber.StatusUnauthorized},
			errorStatus{businessflow.IsAdminInactive, fiber.StatusForbidden},
		)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Token refreshed", session)
}

// Logout revokes the access token of the current request
// @Summary Admin logout
// @Tags Admin Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /api/v1/admin/auth/logout [post]
func (h *AdminAuthHandler) Logout(c fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/auth/logout")
	defer cancel()

	if err := h.flow.Logout(ctx, token); err != nil {
		return h.flowError(c, err, "Logout failed", "LOGOUT_FAILED",
			errorStatus{businessflow.IsInvalidToken, fiber.StatusUnauthorized},
		)
	}
	if adminID, ok := middleware.GetAdminIDFromContext(c); ok {
		log.Printf("admin %d logged out (request %s)", adminID, c.Get("X-Request-ID"))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}
