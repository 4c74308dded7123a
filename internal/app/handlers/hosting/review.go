package hosting

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/uow"
	domainhosting "homestay/internal/domain/hosting"
)

const (
	approveApplicationKey = "host.applications.approve"
	rejectApplicationKey  = "host.applications.reject"
)

type ApproveApplicationCommand struct {
	ApplicationID string
}

func (c ApproveApplicationCommand) Key() string { return approveApplicationKey }

type ApproveApplicationHandler struct {
	Logger *slog.Logger
}

func (h *ApproveApplicationHandler) Handle(ctx context.Context, cmd ApproveApplicationCommand) (*dto.HostApplicationDTO, error) {
	if strings.TrimSpace(cmd.ApplicationID) == "" {
		return nil, errors.New("application id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	application, err := unit.Applications().ByID(ctx, domainhosting.ApplicationID(cmd.ApplicationID))
	if err != nil {
		return nil, err
	}
	applicant, err := unit.Users().ByID(ctx, application.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := application.Approve(applicant, now); err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, applicant); err != nil {
		return nil, err
	}
	if err := unit.Applications().Save(ctx, application); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host application approved", "application_id", application.ID, "user_id", application.UserID)
	}

	result := dto.MapHostApplication(application)
	return &result, nil
}

type RejectApplicationCommand struct {
	ApplicationID string
}

func (c RejectApplicationCommand) Key() string { return rejectApplicationKey }

type RejectApplicationHandler struct {
	Logger *slog.Logger
}

func (h *RejectApplicationHandler) Handle(ctx context.Context, cmd RejectApplicationCommand) (*dto.HostApplicationDTO, error) {
	if strings.TrimSpace(cmd.ApplicationID) == "" {
		return nil, errors.New("application id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	application, err := unit.Applications().ByID(ctx, domainhosting.ApplicationID(cmd.ApplicationID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := application.Reject(now); err != nil {
		return nil, err
	}
	if err := unit.Applications().Save(ctx, application); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host application rejected", "application_id", application.ID, "user_id", application.UserID)
	}

	result := dto.MapHostApplication(application)
	return &result, nil
}

var (
	_ commands.Handler[ApproveApplicationCommand, *dto.HostApplicationDTO] = (*ApproveApplicationHandler)(nil)
	_ commands.Handler[RejectApplicationCommand, *dto.HostApplicationDTO]  = (*RejectApplicationHandler)(nil)
)
