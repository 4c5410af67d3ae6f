package approval

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func actorRoleLevel(c *gin.Context) int {
	level, err := strconv.Atoi(c.GetString("role_level"))
	if err != nil {
		return 0
	}
	return level
}

func (h *Handler) ListPending(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	resp, err := h.service.ListPending(ctx, companyID, actorRoleLevel(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Decide(c *gin.Context) {
	ctx := c.Request.Context()
	requestID := c.Param("id")
	companyID := c.GetString("company_id")
	actorID := c.GetString("employee_id")

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.MapValidationError(err)
		h.writeServiceError(c, mapped)
		return
	}

	resp, err := h.service.Decide(ctx, companyID, requestID, actorID, actorRoleLevel(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
