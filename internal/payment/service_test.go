package payment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"treasury/internal/approval"
	"treasury/internal/domain"
	"treasury/internal/pain001"
	"treasury/internal/sanctions"
	pkgerrors "treasury/pkg/errors"
	"treasury/pkg/logger"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockRepository) UpdateGuarded(ctx context.Context, p *domain.Payment, expected domain.PaymentStatus) error {
	args := m.Called(ctx, p, expected)
	return args.Error(0)
}

type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) CreateAlert(ctx context.Context, alert *domain.SanctionsAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockScreener struct {
	mock.Mock
}

func (m *MockScreener) Screen(ctx context.Context, p *domain.Payment) (*sanctions.Match, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sanctions.Match), args.Error(1)
}

type MockFundsChecker struct {
	mock.Mock
}

func (m *MockFundsChecker) Check(ctx context.Context, accountID uuid.UUID, requested decimal.Decimal) error {
	args := m.Called(ctx, accountID, requested)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PaymentSent(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type testEnv struct {
	svc      *Service
	repo     *MockRepository
	alerts   *MockAlertRepository
	audit    *MockAuditRepository
	screener *MockScreener
	funds    *MockFundsChecker
	events   *MockEventPublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:     new(MockRepository),
		alerts:   new(MockAlertRepository),
		audit:    new(MockAuditRepository),
		screener: new(MockScreener),
		funds:    new(MockFundsChecker),
		events:   new(MockEventPublisher),
	}
	env.svc = NewService(
		env.repo, env.alerts, env.audit, env.screener, env.funds, env.events,
		pain001.NewBuilder("NexusTreasury", "NEXUSGB2L"),
		logger.NewNop(),
	)
	return env
}

func validRequest() *Request {
	return &Request{
		DebtorAccountID:    uuid.New(),
		DebtorIBAN:         "GB29NWBK60161331926819",
		BeneficiaryName:    "Acme Industrial NV",
		BeneficiaryBIC:     "ABNANL2A",
		BeneficiaryIBAN:    "NL91ABNA0417164300",
		BeneficiaryCountry: "NL",
		Amount:             decimal.RequireFromString("1250.50"),
		Currency:           "EUR",
		ExecutionDate:      "2026-09-01",
	}
}

func pendingPayment() *domain.Payment {
	return &domain.Payment{
		ID:                 uuid.New(),
		EndToEndID:         "E2E-A1B2C3D4E5F60718",
		MakerUserID:        "maker-1",
		DebtorAccountID:    uuid.New(),
		DebtorIBAN:         "GB29NWBK60161331926819",
		BeneficiaryName:    "Acme Industrial NV",
		BeneficiaryBIC:     "ABNANL2A",
		BeneficiaryIBAN:    "NL91ABNA0417164300",
		BeneficiaryCountry: "NL",
		Amount:             decimal.RequireFromString("1250.50"),
		Currency:           "EUR",
		ExecutionDate:      "2026-09-01",
		Status:             domain.StatusPendingApproval,
		CreatedAt:          time.Now().UTC(),
	}
}

// --- Initiate ---

func TestInitiate_Success(t *testing.T) {
	env := newTestEnv()
	env.funds.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.screener.On("Screen", mock.Anything, mock.Anything).Return(nil, nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.Anything, domain.StatusDraft).Return(nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditPaymentInitiated
	})).Return(nil)

	p, err := env.svc.Initiate(context.Background(), validRequest(), "maker-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingApproval, p.Status)
	assert.Equal(t, "maker-1", p.MakerUserID)
	assert.Nil(t, p.CheckerUserID)
	assert.Regexp(t, `^E2E-[0-9A-F]{16}$`, p.EndToEndID)

	env.repo.AssertExpectations(t)
	env.audit.AssertExpectations(t)
}

func TestInitiate_KeepsCallerEndToEndID(t *testing.T) {
	env := newTestEnv()
	env.funds.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.screener.On("Screen", mock.Anything, mock.Anything).Return(nil, nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.EndToEndID = "INV-2026-000118"
	p, err := env.svc.Initiate(context.Background(), req, "maker-1")
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-000118", p.EndToEndID)
}

func TestInitiate_InvalidIBAN(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.BeneficiaryIBAN = "NL00ABNA0417164300"
	_, err := env.svc.Initiate(context.Background(), req, "maker-1")
	require.Error(t, err)

	var ibanErr *pkgerrors.InvalidIBANError
	require.ErrorAs(t, err, &ibanErr)
	assert.Equal(t, "beneficiary_iban", ibanErr.Field)
	env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitiate_InvalidDebtorIBANNamesField(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.DebtorIBAN = "XX"
	_, err := env.svc.Initiate(context.Background(), req, "maker-1")
	var ibanErr *pkgerrors.InvalidIBANError
	require.ErrorAs(t, err, &ibanErr)
	assert.Equal(t, "debtor_iban", ibanErr.Field)
}

func TestInitiate_InvalidBIC(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.BeneficiaryBIC = "ABNANL2A00"
	_, err := env.svc.Initiate(context.Background(), req, "maker-1")
	var bicErr *pkgerrors.InvalidBICError
	require.ErrorAs(t, err, &bicErr)
	env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitiate_InsufficientFundsBeforePersistence(t *testing.T) {
	env := newTestEnv()
	env.funds.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(&pkgerrors.InsufficientFundsError{
		Available: decimal.RequireFromString("1000"),
		Requested: decimal.RequireFromString("1250.50"),
	})

	_, err := env.svc.Initiate(context.Background(), validRequest(), "maker-1")
	var insufficient *pkgerrors.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "250.50", insufficient.Requested.Sub(insufficient.Available).String())
	env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitiate_SanctionsHitFreezesBeforeApprovalQueue(t *testing.T) {
	env := newTestEnv()
	env.funds.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.screener.On("Screen", mock.Anything, mock.Anything).Return(&sanctions.Match{
		Field: "name",
		Value: "Oleg Deripaska",
		Entry: domain.WatchlistEntry{Name: "Oleg Deripaska", BIC: "OLEGRU22XXX", Country: "RU", ListType: "SDN"},
		Score: 1.0,
	}, nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.StatusFrozen
	}), domain.StatusDraft).Return(nil)
	env.alerts.On("CreateAlert", mock.Anything, mock.MatchedBy(func(a *domain.SanctionsAlert) bool {
		return a.MatchedField == "name" && a.ListType == "SDN"
	})).Return(nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditSanctionsHit && e.UserID == "SYSTEM"
	})).Return(nil)

	req := validRequest()
	req.BeneficiaryName = "Oleg Deripaska"
	_, err := env.svc.Initiate(context.Background(), req, "maker-1")

	var hit *pkgerrors.SanctionsHitError
	require.ErrorAs(t, err, &hit)
	assert.Equal(t, "name", hit.MatchedField)
	assert.Equal(t, 1.0, hit.SimilarityScore)
	env.repo.AssertExpectations(t)
	env.alerts.AssertExpectations(t)
}

// --- Approve ---

func TestApprove_Success(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	key, err := approval.GenerateKeyPair()
	require.NoError(t, err)

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.screener.On("Screen", mock.Anything, p).Return(nil, nil)
	env.funds.On("Check", mock.Anything, p.DebtorAccountID, p.Amount).Return(nil)
	env.repo.On("UpdateGuarded", mock.Anything, p, domain.StatusPendingApproval).Return(nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditPaymentApproved
	})).Return(nil)

	result, err := env.svc.Approve(context.Background(), p.ID, "checker-1", key)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFundsChecked, result.Status)
	assert.Equal(t, "checker-1", result.CheckerUserID)
	require.NotNil(t, p.CheckerUserID)
	assert.Equal(t, "checker-1", *p.CheckerUserID)
	require.NotNil(t, p.ApprovalSignature)
	require.NotNil(t, p.ApprovalPublicKeyPEM)
	require.NotNil(t, p.ApprovalTimestamp)
	assert.Equal(t, result.SignatureFingerprint, *p.ApprovalKeyFingerprint)

	// The stored artifacts verify against the recomputed payload.
	assert.NoError(t, approval.Verify(
		p.ID.String(), p.Amount, *p.ApprovalTimestamp,
		*p.ApprovalSignature, *p.ApprovalPublicKeyPEM,
	))
}

func TestApprove_SelfApprovalBlockedBeforeStatusCheck(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	p.Status = domain.StatusFrozen // even a frozen payment reports self-approval first
	key, err := approval.GenerateKeyPair()
	require.NoError(t, err)

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditSelfApprovalAttempt && e.UserID == "maker-1"
	})).Return(nil)

	_, err = env.svc.Approve(context.Background(), p.ID, "maker-1", key)
	var selfErr *pkgerrors.SelfApprovalError
	require.ErrorAs(t, err, &selfErr)
	assert.Equal(t, "maker-1", selfErr.UserID)

	env.audit.AssertExpectations(t)
	env.repo.AssertNotCalled(t, "UpdateGuarded", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.StatusFrozen, p.Status)
	assert.Nil(t, p.CheckerUserID)
}

func TestApprove_SecondApprovalFails(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	p.Status = domain.StatusFundsChecked // first approval already applied
	key, err := approval.GenerateKeyPair()
	require.NoError(t, err)

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err = env.svc.Approve(context.Background(), p.ID, "checker-2", key)
	var transErr *pkgerrors.InvalidStateTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, string(domain.StatusFundsChecked), transErr.Current)
	assert.Equal(t, string(domain.StatusApproved), transErr.Target)
}

func TestApprove_ConcurrentLoserGetsTransitionError(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	key, err := approval.GenerateKeyPair()
	require.NoError(t, err)

	// First read still sees PENDING_APPROVAL, but the guarded write loses
	// the race; the re-read shows the winner's status.
	raced := *p
	raced.Status = domain.StatusFundsChecked

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil).Once()
	env.screener.On("Screen", mock.Anything, mock.Anything).Return(nil, nil)
	env.funds.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.Anything, domain.StatusPendingApproval).
		Return(pkgerrors.ErrStatusConflict)
	env.repo.On("FindByID", mock.Anything, p.ID).Return(&raced, nil).Once()

	_, err = env.svc.Approve(context.Background(), p.ID, "checker-2", key)
	var transErr *pkgerrors.InvalidStateTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, string(domain.StatusFundsChecked), transErr.Current)
}

func TestApprove_RescreenHitFreezes(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	key, err := approval.GenerateKeyPair()
	require.NoError(t, err)

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.screener.On("Screen", mock.Anything, p).Return(&sanctions.Match{
		Field: "bic",
		Value: p.BeneficiaryBIC,
		Entry: domain.WatchlistEntry{Name: "PHANTOM_TRADE_LTD", BIC: p.BeneficiaryBIC, Country: "KP", ListType: "SDN"},
		Score: 1.0,
	}, nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.MatchedBy(func(q *domain.Payment) bool {
		return q.Status == domain.StatusFrozen
	}), domain.StatusPendingApproval).Return(nil)
	env.alerts.On("CreateAlert", mock.Anything, mock.Anything).Return(nil)
	env.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	_, err = env.svc.Approve(context.Background(), p.ID, "checker-1", key)
	var hit *pkgerrors.SanctionsHitError
	require.ErrorAs(t, err, &hit)
	assert.Equal(t, "bic", hit.MatchedField)
	assert.Equal(t, domain.StatusFrozen, p.Status)
	env.funds.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_FundsRecheckFailureTerminates(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	key, err := approval.GenerateKeyPair()
	require.NoError(t, err)

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.screener.On("Screen", mock.Anything, p).Return(nil, nil)
	env.funds.On("Check", mock.Anything, p.DebtorAccountID, p.Amount).Return(&pkgerrors.InsufficientFundsError{
		Available: decimal.RequireFromString("100"),
		Requested: p.Amount,
	})
	env.repo.On("UpdateGuarded", mock.Anything, mock.MatchedBy(func(q *domain.Payment) bool {
		return q.Status == domain.StatusInsufficientFunds
	}), domain.StatusPendingApproval).Return(nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditInsufficientFunds
	})).Return(nil)

	_, err = env.svc.Approve(context.Background(), p.ID, "checker-1", key)
	var insufficient *pkgerrors.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, domain.StatusInsufficientFunds, p.Status)
	env.repo.AssertExpectations(t)
}

// --- Reject ---

func TestReject(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.MatchedBy(func(q *domain.Payment) bool {
		return q.Status == domain.StatusRejected
	}), domain.StatusPendingApproval).Return(nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditPaymentRejected
	})).Return(nil)

	rejected, err := env.svc.Reject(context.Background(), p.ID, "checker-1", "beneficiary details unconfirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
}

func TestReject_SelfRejectBlocked(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	_, err := env.svc.Reject(context.Background(), p.ID, "maker-1", "changed my mind")
	var selfErr *pkgerrors.SelfApprovalError
	require.ErrorAs(t, err, &selfErr)
}

// --- ValidateAndExport ---

func fundsCheckedPayment() *domain.Payment {
	p := pendingPayment()
	checker := "checker-1"
	p.Status = domain.StatusFundsChecked
	p.CheckerUserID = &checker
	return p
}

func TestValidateAndExport_Success(t *testing.T) {
	env := newTestEnv()
	p := fundsCheckedPayment()

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.MatchedBy(func(q *domain.Payment) bool {
		return q.Status == domain.StatusExported && q.Pain001XML != nil
	}), domain.StatusFundsChecked).Return(nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditPaymentExported
	})).Return(nil)

	result, err := env.svc.ValidateAndExport(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExported, result.Status)
	assert.Equal(t, p.EndToEndID, result.EndToEndID)
	assert.Contains(t, string(result.XML), "<EndToEndId>"+p.EndToEndID+"</EndToEndId>")
}

func TestValidateAndExport_CollectsAllViolations(t *testing.T) {
	env := newTestEnv()
	p := fundsCheckedPayment()
	p.Currency = ""
	p.ExecutionDate = ""

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := env.svc.ValidateAndExport(context.Background(), p.ID)
	var valErr *pkgerrors.PaymentValidationError
	require.ErrorAs(t, err, &valErr)
	require.Len(t, valErr.Errors, 2)

	fields := []string{valErr.Errors[0].Field, valErr.Errors[1].Field}
	assert.Contains(t, fields, "currency")
	assert.Contains(t, fields, "execution_date")
	env.repo.AssertNotCalled(t, "UpdateGuarded", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateAndExport_WrongStatus(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := env.svc.ValidateAndExport(context.Background(), p.ID)
	var transErr *pkgerrors.InvalidStateTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, string(domain.StatusPendingApproval), transErr.Current)
}

// --- Settle ---

func TestSettle_PublishesPaymentSent(t *testing.T) {
	env := newTestEnv()
	p := fundsCheckedPayment()
	p.Status = domain.StatusExported

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	env.repo.On("UpdateGuarded", mock.Anything, mock.MatchedBy(func(q *domain.Payment) bool {
		return q.Status == domain.StatusSettled
	}), domain.StatusExported).Return(nil)
	env.events.On("PaymentSent", mock.Anything, p).Return(nil)
	env.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditPaymentSettled
	})).Return(nil)

	settled, err := env.svc.Settle(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSettled, settled.Status)
	env.events.AssertExpectations(t)
}

func TestSettle_RequiresExported(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := env.svc.Settle(context.Background(), p.ID)
	var transErr *pkgerrors.InvalidStateTransitionError
	require.ErrorAs(t, err, &transErr)
	env.events.AssertNotCalled(t, "PaymentSent", mock.Anything, mock.Anything)
}

// --- VerifyApproval ---

func TestVerifyApproval(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	key, err := approval.GenerateKeyPair()
	require.NoError(t, err)

	approvedAt := time.Now().UTC().Truncate(time.Second)
	sig, err := approval.Sign(p.ID.String(), p.Amount, approvedAt, key)
	require.NoError(t, err)
	sigB64 := approval.EncodeSignature(sig)
	pem, err := approval.PublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)

	checker := "checker-1"
	p.Status = domain.StatusFundsChecked
	p.CheckerUserID = &checker
	p.ApprovalSignature = &sigB64
	p.ApprovalPublicKeyPEM = &pem
	p.ApprovalTimestamp = &approvedAt

	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	assert.NoError(t, env.svc.VerifyApproval(context.Background(), p.ID))

	// Tampering with the amount after signing must fail verification.
	p.Amount = p.Amount.Add(decimal.NewFromInt(1))
	err = env.svc.VerifyApproval(context.Background(), p.ID)
	var sigErr *pkgerrors.InvalidSignatureError
	require.ErrorAs(t, err, &sigErr)
}

func TestVerifyApproval_Unapproved(t *testing.T) {
	env := newTestEnv()
	p := pendingPayment()
	env.repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	err := env.svc.VerifyApproval(context.Background(), p.ID)
	var sigErr *pkgerrors.InvalidSignatureError
	require.ErrorAs(t, err, &sigErr)
}

func TestGet_NotFound(t *testing.T) {
	env := newTestEnv()
	id := uuid.New()
	env.repo.On("FindByID", mock.Anything, id).Return(nil, pkgerrors.ErrPaymentNotFound)

	_, err := env.svc.Get(context.Background(), id)
	var notFound *pkgerrors.PaymentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, id.String(), notFound.PaymentID)
}
