package hosting

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/uow"
	domainhosting "homestay/internal/domain/hosting"
	domainuser "homestay/internal/domain/user"
)

const applyForHostingKey = "host.apply"

type ApplyForHostingCommand struct {
	UserID      string
	FullName    string
	ContactInfo string
	BankName    string
	BankAccount string
}

func (c ApplyForHostingCommand) Key() string { return applyForHostingKey }

type ApplyForHostingHandler struct {
	Logger *slog.Logger
}

func (h *ApplyForHostingHandler) Handle(ctx context.Context, cmd ApplyForHostingCommand) (*dto.HostApplicationDTO, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return nil, errors.New("user id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	applicant, err := unit.Users().ByID(ctx, domainuser.ID(cmd.UserID))
	if err != nil {
		return nil, err
	}
	if applicant.IsHost() {
		return nil, domainhosting.ErrAlreadyHost
	}

	existing, err := unit.Applications().ByUser(ctx, applicant.ID)
	if err != nil && !errors.Is(err, domainhosting.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainhosting.ErrAlreadyApplied
	}

	application, err := domainhosting.NewApplication(domainhosting.ApplyParams{
		ID:          domainhosting.ApplicationID(uuid.NewString()),
		UserID:      applicant.ID,
		FullName:    cmd.FullName,
		ContactInfo: cmd.ContactInfo,
		BankName:    cmd.BankName,
		BankAccount: cmd.BankAccount,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Applications().Save(ctx, application); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host application submitted", "application_id", application.ID, "user_id", cmd.UserID)
	}

	result := dto.MapHostApplication(application)
	return &result, nil
}

var _ commands.Handler[ApplyForHostingCommand, *dto.HostApplicationDTO] = (*ApplyForHostingHandler)(nil)
