package hosting_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	hostinghandlers "homestay/internal/app/handlers/hosting"
	"homestay/internal/app/middleware"
	domainhosting "homestay/internal/domain/hosting"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

type hostingEnv struct {
	bus   commands.Bus
	users *memory.UserRepository
	apps  *memory.ApplicationRepository
}

func newHostingEnv(t *testing.T) *hostingEnv {
	t.Helper()
	users := memory.NewUserRepository()
	apps := memory.NewApplicationRepository()
	availability := memory.NewAvailabilityRepository()
	factory := &memory.Factory{
		ListingsRepo:     memory.NewListingRepository(availability),
		AvailabilityRepo: availability,
		BookingRepo:      memory.NewBookingRepository(),
		UsersRepo:        users,
		SessionsStore:    memory.NewSessionStore(),
		ApplicationsRepo: apps,
	}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, hostinghandlers.ApplyForHostingCommand{}.Key(), &hostinghandlers.ApplyForHostingHandler{})
	commands.RegisterHandler(base, hostinghandlers.ApproveApplicationCommand{}.Key(), &hostinghandlers.ApproveApplicationHandler{})
	commands.RegisterHandler(base, hostinghandlers.RejectApplicationCommand{}.Key(), &hostinghandlers.RejectApplicationHandler{})

	bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))
	return &hostingEnv{bus: bus, users: users, apps: apps}
}

func (e *hostingEnv) seedUser(t *testing.T, id string, roles ...domainuser.Role) *domainuser.User {
	t.Helper()
	u, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Name:         "User " + id,
		PasswordHash: "x",
		Roles:        roles,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, e.users.Save(context.Background(), u))
	return u
}

func applyCmd(userID string) hostinghandlers.ApplyForHostingCommand {
	return hostinghandlers.ApplyForHostingCommand{
		UserID:      userID,
		FullName:    "Jordan Smith",
		ContactInfo: "+1 555 0100",
		BankName:    "First Bank",
		BankAccount: "0001112223",
	}
}

func TestApplyForHosting(t *testing.T) {
	env := newHostingEnv(t)
	env.seedUser(t, "user-1")
	ctx := context.Background()

	app, err := commands.Dispatch[hostinghandlers.ApplyForHostingCommand, *dto.HostApplicationDTO](
		ctx, env.bus, applyCmd("user-1"))
	require.NoError(t, err)
	assert.Equal(t, string(domainhosting.StatusPending), app.Status)
	assert.Equal(t, "user-1", app.UserID)

	_, err = commands.Dispatch[hostinghandlers.ApplyForHostingCommand, *dto.HostApplicationDTO](
		ctx, env.bus, applyCmd("user-1"))
	assert.ErrorIs(t, err, domainhosting.ErrAlreadyApplied)
}

func TestApplyRejectsExistingHost(t *testing.T) {
	env := newHostingEnv(t)
	env.seedUser(t, "host-1", domainuser.RoleGuest, domainuser.RoleHost)

	_, err := commands.Dispatch[hostinghandlers.ApplyForHostingCommand, *dto.HostApplicationDTO](
		context.Background(), env.bus, applyCmd("host-1"))
	assert.ErrorIs(t, err, domainhosting.ErrAlreadyHost)
}

func TestApplyRejectsMissingDetails(t *testing.T) {
	env := newHostingEnv(t)
	env.seedUser(t, "user-1")

	cmd := applyCmd("user-1")
	cmd.BankAccount = "  "
	_, err := commands.Dispatch[hostinghandlers.ApplyForHostingCommand, *dto.HostApplicationDTO](
		context.Background(), env.bus, cmd)
	assert.ErrorIs(t, err, domainhosting.ErrDetailsRequired)
}

func TestApproveGrantsHostRole(t *testing.T) {
	env := newHostingEnv(t)
	env.seedUser(t, "user-1")
	ctx := context.Background()

	app, err := commands.Dispatch[hostinghandlers.ApplyForHostingCommand, *dto.HostApplicationDTO](
		ctx, env.bus, applyCmd("user-1"))
	require.NoError(t, err)

	approved, err := commands.Dispatch[hostinghandlers.ApproveApplicationCommand, *dto.HostApplicationDTO](
		ctx, env.bus, hostinghandlers.ApproveApplicationCommand{ApplicationID: app.ID})
	require.NoError(t, err)
	assert.Equal(t, string(domainhosting.StatusApproved), approved.Status)

	u, err := env.users.ByID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, u.IsHost())

	// A decided application cannot be approved again.
	_, err = commands.Dispatch[hostinghandlers.ApproveApplicationCommand, *dto.HostApplicationDTO](
		ctx, env.bus, hostinghandlers.ApproveApplicationCommand{ApplicationID: app.ID})
	assert.ErrorIs(t, err, domainhosting.ErrNotPending)
}

func TestRejectLeavesUserAsGuest(t *testing.T) {
	env := newHostingEnv(t)
	env.seedUser(t, "user-1")
	ctx := context.Background()

	app, err := commands.Dispatch[hostinghandlers.ApplyForHostingCommand, *dto.HostApplicationDTO](
		ctx, env.bus, applyCmd("user-1"))
	require.NoError(t, err)

	rejected, err := commands.Dispatch[hostinghandlers.RejectApplicationCommand, *dto.HostApplicationDTO](
		ctx, env.bus, hostinghandlers.RejectApplicationCommand{ApplicationID: app.ID})
	require.NoError(t, err)
	assert.Equal(t, string(domainhosting.StatusRejected), rejected.Status)

	u, err := env.users.ByID(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, u.IsHost())
}
