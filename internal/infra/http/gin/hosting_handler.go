package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	hostingapp "homestay/internal/app/handlers/hosting"
	domainhosting "homestay/internal/domain/hosting"
)

type HostingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type hostApplicationRequest struct {
	FullName    string `json:"full_name"`
	ContactInfo string `json:"contact_info"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
}

func (h HostingHandler) Apply(c *gin.Context) {
	principal, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req hostApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := hostingapp.ApplyForHostingCommand{
		UserID:      principal.ID,
		FullName:    req.FullName,
		ContactInfo: req.ContactInfo,
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
	}
	result, err := commands.Dispatch[hostingapp.ApplyForHostingCommand, *dto.HostApplicationDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondHostingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostingHandler) Approve(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	h.review(c, true)
}

func (h HostingHandler) Reject(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	h.review(c, false)
}

func (h HostingHandler) review(c *gin.Context, approve bool) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	applicationID := strings.TrimSpace(c.Param("id"))
	if applicationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application id is required"})
		return
	}

	var result *dto.HostApplicationDTO
	var err error
	if approve {
		cmd := hostingapp.ApproveApplicationCommand{ApplicationID: applicationID}
		result, err = commands.Dispatch[hostingapp.ApproveApplicationCommand, *dto.HostApplicationDTO](c.Request.Context(), h.Commands, cmd)
	} else {
		cmd := hostingapp.RejectApplicationCommand{ApplicationID: applicationID}
		result, err = commands.Dispatch[hostingapp.RejectApplicationCommand, *dto.HostApplicationDTO](c.Request.Context(), h.Commands, cmd)
	}
	if err != nil {
		h.respondHostingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostingHandler) respondHostingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainhosting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainhosting.ErrAlreadyApplied),
		errors.Is(err, domainhosting.ErrAlreadyHost),
		errors.Is(err, domainhosting.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainhosting.ErrDetailsRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("hosting request failed", "error", err, "path", c.FullPath())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ HostingHTTP = HostingHandler{}
