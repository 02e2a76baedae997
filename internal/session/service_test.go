package session

import (
	"context"
	"errors"
	"testing"

	"github.com/chakri8826/Student-Interview-App/internal/config"
	"github.com/chakri8826/Student-Interview-App/internal/conversation"
	"github.com/chakri8826/Student-Interview-App/internal/role"
	"github.com/chakri8826/Student-Interview-App/internal/user"
	"github.com/chakri8826/Student-Interview-App/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repositories and collaborators
type MockSessionRepo struct{ mock.Mock }
type MockWalletRepo struct{ mock.Mock }
type MockRoleRepo struct{ mock.Mock }
type MockUserRepo struct{ mock.Mock }
type MockVendor struct{ mock.Mock }
type MockNotifier struct{ mock.Mock }

func (m *MockSessionRepo) Create(ctx context.Context, s *Session) (*Session, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) FindByID(ctx context.Context, id int) (*Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) FindByIDForUser(ctx context.Context, id, userID int) (*Session, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) FindByRef(ctx context.Context, ref string) (*Session, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) FindByExternalID(ctx context.Context, externalID string) (*Session, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) ListByUser(ctx context.Context, userID int, kind string) ([]Session, error) {
	args := m.Called(ctx, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}

func (m *MockSessionRepo) MarkActive(ctx context.Context, id int, externalSessionID, joinURL string) (bool, error) {
	args := m.Called(ctx, id, externalSessionID, joinURL)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepo) MarkReversed(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepo) Resolve(ctx context.Context, id int, terminal string) (bool, error) {
	args := m.Called(ctx, id, terminal)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepo) SetAnalysis(ctx context.Context, id int, analysis string) error {
	return m.Called(ctx, id, analysis).Error(0)
}

func (m *MockWalletRepo) GetOrCreateWallet(ctx context.Context, userID int) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) Reserve(ctx context.Context, userID, credits int, externalRef string) (*wallet.Reservation, error) {
	args := m.Called(ctx, userID, credits, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Reservation), args.Error(1)
}

func (m *MockWalletRepo) Reverse(ctx context.Context, res *wallet.Reservation) error {
	return m.Called(ctx, res).Error(0)
}

func (m *MockWalletRepo) Purchase(ctx context.Context, userID int, pack wallet.CreditPack, orderID string) (*wallet.Transaction, error) {
	args := m.Called(ctx, userID, pack, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockWalletRepo) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]wallet.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wallet.Transaction), args.Error(1)
}

func (m *MockWalletRepo) CountTransactions(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRoleRepo) ListActive(ctx context.Context) ([]role.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]role.Role), args.Error(1)
}

func (m *MockRoleRepo) GetByID(ctx context.Context, id int) (*role.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*role.Role), args.Error(1)
}

func (m *MockRoleRepo) SeedDefaults(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRoleRepo) AddSelections(ctx context.Context, userID int, roleIDs []int) ([]int, []int, error) {
	args := m.Called(ctx, userID, roleIDs)
	var added, skipped []int
	if args.Get(0) != nil {
		added = args.Get(0).([]int)
	}
	if args.Get(1) != nil {
		skipped = args.Get(1).([]int)
	}
	return added, skipped, args.Error(2)
}

func (m *MockRoleRepo) ReplaceSelections(ctx context.Context, userID int, roleIDs []int) error {
	return m.Called(ctx, userID, roleIDs).Error(0)
}

func (m *MockRoleRepo) ListSelections(ctx context.Context, userID int) ([]role.SelectionWithRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]role.SelectionWithRole), args.Error(1)
}

func (m *MockRoleRepo) ListSelectedTitles(ctx context.Context, userID int) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRoleRepo) CountActiveByIDs(ctx context.Context, ids []int) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash, roleName string) (*user.User, error) {
	args := m.Called(ctx, name, email, passwordHash, roleName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockVendor) CreateConversation(ctx context.Context, req conversation.CreateRequest, instructions string) (*conversation.Conversation, error) {
	args := m.Called(ctx, req, instructions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conversation.Conversation), args.Error(1)
}

func (m *MockVendor) SendMessage(ctx context.Context, conversationID, role, content string) {
	m.Called(ctx, conversationID, role, content)
}

func (m *MockNotifier) Send(ctx context.Context, to, name, subject, body string) error {
	return m.Called(ctx, to, name, subject, body).Error(0)
}

type serviceFixture struct {
	sessions *MockSessionRepo
	wallets  *MockWalletRepo
	roles    *MockRoleRepo
	users    *MockUserRepo
	vendor   *MockVendor
	notifier *MockNotifier
	svc      Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		sessions: new(MockSessionRepo),
		wallets:  new(MockWalletRepo),
		roles:    new(MockRoleRepo),
		users:    new(MockUserRepo),
		vendor:   new(MockVendor),
		notifier: new(MockNotifier),
	}
	cfg := &config.Config{
		TavusAPIKey:    "key",
		ProfileDefault: config.ReplicaProfile{ReplicaID: "r-default", PersonaID: "p-default"},
	}
	f.svc = NewService(f.sessions, f.wallets, f.roles, f.users, f.vendor, f.notifier, cfg)
	return f
}

func softwareRole() *role.Role {
	return &role.Role{ID: 1, Title: "Software Engineer"}
}

func TestStartInterview_Success(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.roles.On("GetByID", ctx, 1).Return(softwareRole(), nil)
	f.wallets.On("Reserve", ctx, 42, InterviewCost, mock.AnythingOfType("string")).
		Return(&wallet.Reservation{UserID: 42, Credits: InterviewCost}, nil)
	f.sessions.On("Create", ctx, mock.AnythingOfType("*session.Session")).
		Return(&Session{ID: 9, UserID: 42, Kind: KindInterview, Status: StatusCreated}, nil)
	f.roles.On("ListSelectedTitles", ctx, 42).Return([]string{"Software Engineer"}, nil)
	f.vendor.On("CreateConversation", ctx, mock.Anything, mock.AnythingOfType("string")).
		Return(&conversation.Conversation{ID: "c_1", JoinURL: "https://join/c_1"}, nil)
	f.sessions.On("MarkActive", ctx, 9, "c_1", "https://join/c_1").Return(true, nil)
	f.vendor.On("SendMessage", ctx, "c_1", "user", mock.AnythingOfType("string")).Return()
	f.users.On("FindByID", ctx, 42).Return(&user.User{ID: 42, Email: "a@b.c", Name: "A"}, nil)
	f.notifier.On("Send", ctx, "a@b.c", "A", mock.Anything, mock.Anything).Return(nil)

	sess, err := f.svc.StartInterview(ctx, 42, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sess.Status)
	require.NotNil(t, sess.JoinURL)
	assert.Equal(t, "https://join/c_1", *sess.JoinURL)

	f.wallets.AssertNotCalled(t, "Reverse", mock.Anything, mock.Anything)
	f.wallets.AssertNumberOfCalls(t, "Reserve", 1)
	f.sessions.AssertExpectations(t)
}

func TestStartInterview_VendorFailureReversesReservation(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	res := &wallet.Reservation{UserID: 42, Credits: InterviewCost}

	f.roles.On("GetByID", ctx, 1).Return(softwareRole(), nil)
	f.wallets.On("Reserve", ctx, 42, InterviewCost, mock.AnythingOfType("string")).Return(res, nil)
	f.sessions.On("Create", ctx, mock.Anything).
		Return(&Session{ID: 9, UserID: 42, Kind: KindInterview, Status: StatusCreated}, nil)
	f.roles.On("ListSelectedTitles", ctx, 42).Return([]string{}, nil)
	f.vendor.On("CreateConversation", ctx, mock.Anything, mock.Anything).
		Return(nil, conversation.ErrExternalService)
	f.wallets.On("Reverse", ctx, res).Return(nil)
	f.sessions.On("MarkReversed", ctx, 9).Return(true, nil)

	_, err := f.svc.StartInterview(ctx, 42, 1, nil)
	require.ErrorIs(t, err, conversation.ErrExternalService)

	f.wallets.AssertCalled(t, "Reverse", ctx, res)
	f.sessions.AssertCalled(t, "MarkReversed", ctx, 9)
	f.sessions.AssertNotCalled(t, "MarkActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartInterview_TimeoutKeepsCreditsHeld(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.roles.On("GetByID", ctx, 1).Return(softwareRole(), nil)
	f.wallets.On("Reserve", ctx, 42, InterviewCost, mock.AnythingOfType("string")).
		Return(&wallet.Reservation{UserID: 42, Credits: InterviewCost}, nil)
	f.sessions.On("Create", ctx, mock.Anything).
		Return(&Session{ID: 9, UserID: 42, Kind: KindInterview, Status: StatusCreated}, nil)
	f.roles.On("ListSelectedTitles", ctx, 42).Return([]string{}, nil)
	f.vendor.On("CreateConversation", ctx, mock.Anything, mock.Anything).
		Return(nil, context.DeadlineExceeded)

	sess, err := f.svc.StartInterview(ctx, 42, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, sess.Status)

	f.wallets.AssertNotCalled(t, "Reverse", mock.Anything, mock.Anything)
	f.sessions.AssertNotCalled(t, "MarkReversed", mock.Anything, mock.Anything)
}

func TestStartInterview_NotConfiguredBlocksBeforeReserve(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	cfg := &config.Config{}
	f.svc = NewService(f.sessions, f.wallets, f.roles, f.users, f.vendor, f.notifier, cfg)

	f.roles.On("GetByID", ctx, 1).Return(softwareRole(), nil)

	_, err := f.svc.StartInterview(ctx, 42, 1, nil)
	require.ErrorIs(t, err, conversation.ErrNotConfigured)

	f.wallets.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartInterview_InsufficientCredits(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.roles.On("GetByID", ctx, 1).Return(softwareRole(), nil)
	f.wallets.On("Reserve", ctx, 42, InterviewCost, mock.AnythingOfType("string")).
		Return(nil, wallet.ErrInsufficientCredits)

	_, err := f.svc.StartInterview(ctx, 42, 1, nil)
	require.ErrorIs(t, err, wallet.ErrInsufficientCredits)

	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.vendor.AssertNotCalled(t, "CreateConversation", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartInterview_SessionRowFailureReverses(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	res := &wallet.Reservation{UserID: 42, Credits: InterviewCost}

	f.roles.On("GetByID", ctx, 1).Return(softwareRole(), nil)
	f.wallets.On("Reserve", ctx, 42, InterviewCost, mock.AnythingOfType("string")).Return(res, nil)
	f.sessions.On("Create", ctx, mock.Anything).Return(nil, errors.New("insert failed"))
	f.wallets.On("Reverse", ctx, res).Return(nil)

	_, err := f.svc.StartInterview(ctx, 42, 1, nil)
	require.Error(t, err)

	f.wallets.AssertCalled(t, "Reverse", ctx, res)
	f.vendor.AssertNotCalled(t, "CreateConversation", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartInterview_ActivationFailureNeverReverses(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.roles.On("GetByID", ctx, 1).Return(softwareRole(), nil)
	f.wallets.On("Reserve", ctx, 42, InterviewCost, mock.AnythingOfType("string")).
		Return(&wallet.Reservation{UserID: 42, Credits: InterviewCost}, nil)
	f.sessions.On("Create", ctx, mock.Anything).
		Return(&Session{ID: 9, UserID: 42, Kind: KindInterview, Status: StatusCreated}, nil)
	f.roles.On("ListSelectedTitles", ctx, 42).Return([]string{}, nil)
	f.vendor.On("CreateConversation", ctx, mock.Anything, mock.Anything).
		Return(&conversation.Conversation{ID: "c_1", JoinURL: "https://join/c_1"}, nil)
	f.sessions.On("MarkActive", ctx, 9, "c_1", "https://join/c_1").
		Return(false, errors.New("db down"))
	f.users.On("FindByID", ctx, 42).Return(&user.User{ID: 42, Email: "a@b.c", Name: "A"}, nil)
	f.notifier.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sess, err := f.svc.StartInterview(ctx, 42, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, sess.Status)
	require.NotNil(t, sess.ExternalSessionID)
	assert.Equal(t, "c_1", *sess.ExternalSessionID)

	f.wallets.AssertNotCalled(t, "Reverse", mock.Anything, mock.Anything)
}

func TestNewRef(t *testing.T) {
	ref := NewRef(KindInterview)
	assert.Regexp(t, `^interview_[0-9a-f]{12}$`, ref)

	other := NewRef(KindScreening)
	assert.Regexp(t, `^screening_[0-9a-f]{12}$`, other)
	assert.NotEqual(t, ref, other)
}
