// Package payment orchestrates the authorization lifecycle of outbound
// wire payments: four-eyes approval, sanctions screening, funds checks and
// PAIN.001 export.
package payment

import (
	"context"
	"crypto/rsa"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"treasury/internal/approval"
	"treasury/internal/banking"
	"treasury/internal/domain"
	"treasury/internal/pain001"
	"treasury/internal/sanctions"
	pkgerrors "treasury/pkg/errors"
	"treasury/pkg/logger"
	"treasury/pkg/validator"
)

// Repository persists the Payment aggregate.
type Repository interface {
	Create(ctx context.Context, p *domain.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// UpdateGuarded writes p only when the stored status still equals
	// expected, returning pkgerrors.ErrStatusConflict when a concurrent
	// writer got there first.
	UpdateGuarded(ctx context.Context, p *domain.Payment, expected domain.PaymentStatus) error
}

// AlertRepository stores sanctions alerts. Rows are write-once.
type AlertRepository interface {
	CreateAlert(ctx context.Context, alert *domain.SanctionsAlert) error
}

// AuditRepository appends to the payment audit trail.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}

// Screener matches a payment's beneficiary against the watch-list.
type Screener interface {
	Screen(ctx context.Context, p *domain.Payment) (*sanctions.Match, error)
}

// FundsChecker verifies the debtor account can cover the requested amount.
type FundsChecker interface {
	Check(ctx context.Context, accountID uuid.UUID, requested decimal.Decimal) error
}

// EventPublisher feeds downstream consumers; the GL engine books the cash
// movement off the PAYMENT_SENT event.
type EventPublisher interface {
	PaymentSent(ctx context.Context, p *domain.Payment) error
}

type Service struct {
	repo      Repository
	alerts    AlertRepository
	audit     AuditRepository
	screener  Screener
	funds     FundsChecker
	events    EventPublisher
	builder   *pain001.Builder
	validator *pain001.Validator
	logger    logger.Logger
}

func NewService(
	repo Repository,
	alerts AlertRepository,
	audit AuditRepository,
	screener Screener,
	funds FundsChecker,
	events EventPublisher,
	builder *pain001.Builder,
	log logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		alerts:    alerts,
		audit:     audit,
		screener:  screener,
		funds:     funds,
		events:    events,
		builder:   builder,
		validator: pain001.NewValidator(),
		logger:    log,
	}
}

// Request is a caller-submitted payment instruction.
type Request struct {
	DebtorAccountID    uuid.UUID       `json:"debtor_account_id" validate:"required"`
	DebtorIBAN         string          `json:"debtor_iban" validate:"required"`
	BeneficiaryName    string          `json:"beneficiary_name" validate:"required,max=255"`
	BeneficiaryBIC     string          `json:"beneficiary_bic" validate:"required"`
	BeneficiaryIBAN    string          `json:"beneficiary_iban" validate:"required"`
	BeneficiaryCountry string          `json:"beneficiary_country" validate:"required,len=2"`
	Amount             decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency           string          `json:"currency" validate:"required,len=3"`
	ExecutionDate      string          `json:"execution_date" validate:"required,exec_date"`
	RemittanceInfo     *string         `json:"remittance_info,omitempty"`
	EndToEndID         string          `json:"end_to_end_id,omitempty" validate:"omitempty,max=35"`
}

// ApprovalResult reports a successful four-eyes approval.
type ApprovalResult struct {
	PaymentID            uuid.UUID            `json:"payment_id"`
	CheckerUserID        string               `json:"checker_user_id"`
	Status               domain.PaymentStatus `json:"status"`
	SignatureFingerprint string               `json:"signature_fingerprint"`
	ApprovedAt           time.Time            `json:"approved_at"`
}

// ExportResult carries the rendered PAIN.001 document.
type ExportResult struct {
	PaymentID  uuid.UUID            `json:"payment_id"`
	EndToEndID string               `json:"end_to_end_id"`
	Status     domain.PaymentStatus `json:"status"`
	XML        []byte               `json:"-"`
}

// Initiate validates the request, verifies funds, creates the payment in
// DRAFT, screens the beneficiary and, when clean, moves it to
// PENDING_APPROVAL. A sanctions hit freezes the payment before it ever
// reaches the approval queue.
func (s *Service) Initiate(ctx context.Context, req *Request, makerUserID string) (*domain.Payment, error) {
	for _, iban := range []struct {
		field string
		value string
	}{
		{"debtor_iban", req.DebtorIBAN},
		{"beneficiary_iban", req.BeneficiaryIBAN},
	} {
		if err := banking.ValidateIBAN(iban.value); err != nil {
			return nil, &pkgerrors.InvalidIBANError{Field: iban.field, IBAN: iban.value, Reason: err.Error()}
		}
	}
	if err := banking.ValidateBIC(req.BeneficiaryBIC); err != nil {
		return nil, &pkgerrors.InvalidBICError{BIC: req.BeneficiaryBIC, Reason: err.Error()}
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, &pkgerrors.PaymentValidationError{Errors: []pkgerrors.FieldError{
			{Field: "amount", Reason: "Amount must be positive"},
		}}
	}

	if err := s.funds.Check(ctx, req.DebtorAccountID, req.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Payment{
		ID:                 uuid.New(),
		EndToEndID:         req.EndToEndID,
		MakerUserID:        makerUserID,
		DebtorAccountID:    req.DebtorAccountID,
		DebtorIBAN:         banking.NormalizeIBAN(req.DebtorIBAN),
		BeneficiaryName:    strings.TrimSpace(req.BeneficiaryName),
		BeneficiaryBIC:     strings.ToUpper(req.BeneficiaryBIC),
		BeneficiaryIBAN:    banking.NormalizeIBAN(req.BeneficiaryIBAN),
		BeneficiaryCountry: strings.ToUpper(req.BeneficiaryCountry),
		Amount:             req.Amount,
		Currency:           strings.ToUpper(req.Currency),
		ExecutionDate:      req.ExecutionDate,
		RemittanceInfo:     sanitizeRemittance(req.RemittanceInfo),
		Status:             domain.StatusDraft,
		CreatedAt:          now,
	}
	if p.EndToEndID == "" {
		p.EndToEndID = generateEndToEndID()
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create payment")
	}

	s.logger.Info("Payment initiated", map[string]interface{}{
		"payment_id":    p.ID.String(),
		"end_to_end_id": p.EndToEndID,
		"maker":         makerUserID,
		"amount":        p.Amount.String(),
		"currency":      p.Currency,
	})

	match, err := s.screener.Screen(ctx, p)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return nil, s.freezeOnHit(ctx, p, match, domain.StatusDraft)
	}

	next, err := Advance(p.Status, domain.StatusPendingApproval)
	if err != nil {
		return nil, err
	}
	p.Status = next
	if err := s.persist(ctx, p, domain.StatusDraft); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, p.ID, makerUserID, domain.AuditPaymentInitiated, nil)
	return p, nil
}

// Approve performs the checker's side of four-eyes: signs the canonical
// payload, re-screens sanctions and re-verifies funds. Self-approval is
// rejected before anything else; it is a compliance violation regardless of
// the payment's status.
func (s *Service) Approve(ctx context.Context, paymentID uuid.UUID, checkerUserID string, signingKey *rsa.PrivateKey) (*ApprovalResult, error) {
	p, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if checkerUserID == p.MakerUserID {
		s.logger.Warn("Self-approval attempt blocked", map[string]interface{}{
			"payment_id": p.ID.String(),
			"user_id":    checkerUserID,
		})
		s.recordAudit(ctx, p.ID, checkerUserID, domain.AuditSelfApprovalAttempt, nil)
		return nil, &pkgerrors.SelfApprovalError{UserID: checkerUserID}
	}

	if p.Status != domain.StatusPendingApproval {
		return nil, &pkgerrors.InvalidStateTransitionError{
			Current: string(p.Status),
			Target:  string(domain.StatusApproved),
		}
	}
	loadedStatus := p.Status

	approvedAt := time.Now().UTC().Truncate(time.Second)
	sig, err := approval.Sign(p.ID.String(), p.Amount, approvedAt, signingKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to sign approval")
	}
	pubPEM, err := approval.PublicKeyPEM(&signingKey.PublicKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to encode approval public key")
	}
	fingerprint, err := approval.Fingerprint(&signingKey.PublicKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fingerprint approval key")
	}

	sigB64 := approval.EncodeSignature(sig)
	p.CheckerUserID = &checkerUserID
	p.ApprovalSignature = &sigB64
	p.ApprovalPublicKeyPEM = &pubPEM
	p.ApprovalKeyFingerprint = &fingerprint
	p.ApprovalTimestamp = &approvedAt

	// Internal two-hop transition; both hops go through the table.
	if p.Status, err = Advance(p.Status, domain.StatusApproved); err != nil {
		return nil, err
	}
	if p.Status, err = Advance(p.Status, domain.StatusSanctionsReview); err != nil {
		return nil, err
	}

	match, err := s.screener.Screen(ctx, p)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return nil, s.freezeOnHit(ctx, p, match, loadedStatus)
	}

	if fundsErr := s.funds.Check(ctx, p.DebtorAccountID, p.Amount); fundsErr != nil {
		var insufficient *pkgerrors.InsufficientFundsError
		if !pkgerrors.As(fundsErr, &insufficient) {
			return nil, fundsErr
		}
		if p.Status, err = Advance(p.Status, domain.StatusFundsChecked); err != nil {
			return nil, err
		}
		if p.Status, err = Advance(p.Status, domain.StatusInsufficientFunds); err != nil {
			return nil, err
		}
		if err := s.persist(ctx, p, loadedStatus); err != nil {
			return nil, err
		}
		detail := fmt.Sprintf("available=%s requested=%s", insufficient.Available.String(), insufficient.Requested.String())
		s.recordAudit(ctx, p.ID, checkerUserID, domain.AuditInsufficientFunds, &detail)
		return nil, fundsErr
	}

	if p.Status, err = Advance(p.Status, domain.StatusFundsChecked); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, loadedStatus); err != nil {
		return nil, err
	}

	s.logger.Info("Payment approved", map[string]interface{}{
		"payment_id":  p.ID.String(),
		"checker":     checkerUserID,
		"fingerprint": fingerprint,
	})
	s.recordAudit(ctx, p.ID, checkerUserID, domain.AuditPaymentApproved, nil)

	return &ApprovalResult{
		PaymentID:            p.ID,
		CheckerUserID:        checkerUserID,
		Status:               p.Status,
		SignatureFingerprint: fingerprint,
		ApprovedAt:           approvedAt,
	}, nil
}

// Reject declines a pending payment. Like approval, it is a checker action
// and the maker cannot reject their own instruction through this path.
func (s *Service) Reject(ctx context.Context, paymentID uuid.UUID, checkerUserID, reason string) (*domain.Payment, error) {
	p, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if checkerUserID == p.MakerUserID {
		s.recordAudit(ctx, p.ID, checkerUserID, domain.AuditSelfApprovalAttempt, nil)
		return nil, &pkgerrors.SelfApprovalError{UserID: checkerUserID}
	}
	if p.Status != domain.StatusPendingApproval {
		return nil, &pkgerrors.InvalidStateTransitionError{
			Current: string(p.Status),
			Target:  string(domain.StatusRejected),
		}
	}
	loadedStatus := p.Status

	if p.Status, err = Advance(p.Status, domain.StatusRejected); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, loadedStatus); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, p.ID, checkerUserID, domain.AuditPaymentRejected, &reason)
	return p, nil
}

// ValidateAndExport re-validates every exportable field, renders the
// PAIN.001 document and moves the payment to EXPORTED. Field defects are
// returned as one aggregate error listing all of them.
func (s *Service) ValidateAndExport(ctx context.Context, paymentID uuid.UUID) (*ExportResult, error) {
	p, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.Status != domain.StatusFundsChecked {
		return nil, &pkgerrors.InvalidStateTransitionError{
			Current: string(p.Status),
			Target:  string(domain.StatusValidated),
		}
	}
	loadedStatus := p.Status

	if defects := s.validator.Validate(p); len(defects) > 0 {
		return nil, &pkgerrors.PaymentValidationError{Errors: defects}
	}

	if p.Status, err = Advance(p.Status, domain.StatusValidated); err != nil {
		return nil, err
	}

	xmlBytes, err := s.builder.Build(p)
	if err != nil {
		// Rendering failed after validation passed; the payment is dead.
		if failed, ferr := Advance(p.Status, domain.StatusFailedValidation); ferr == nil {
			p.Status = failed
			_ = s.persist(ctx, p, loadedStatus)
		}
		return nil, pkgerrors.Wrap(err, "failed to build pain.001 document")
	}

	xmlStr := string(xmlBytes)
	p.Pain001XML = &xmlStr
	if p.Status, err = Advance(p.Status, domain.StatusExported); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, loadedStatus); err != nil {
		return nil, err
	}

	s.logger.Info("Payment exported", map[string]interface{}{
		"payment_id":    p.ID.String(),
		"end_to_end_id": p.EndToEndID,
	})
	s.recordAudit(ctx, p.ID, p.MakerUserID, domain.AuditPaymentExported, nil)

	return &ExportResult{
		PaymentID:  p.ID,
		EndToEndID: p.EndToEndID,
		Status:     p.Status,
		XML:        xmlBytes,
	}, nil
}

// Settle marks an exported payment as settled and publishes the
// PAYMENT_SENT event the GL engine books against.
func (s *Service) Settle(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	p, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	loadedStatus := p.Status

	if p.Status, err = Advance(p.Status, domain.StatusSettled); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, loadedStatus); err != nil {
		return nil, err
	}

	if err := s.events.PaymentSent(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to publish PAYMENT_SENT")
	}
	s.recordAudit(ctx, p.ID, p.MakerUserID, domain.AuditPaymentSettled, nil)
	return p, nil
}

// VerifyApproval re-verifies the stored approval signature against the
// recomputed canonical payload.
func (s *Service) VerifyApproval(ctx context.Context, paymentID uuid.UUID) error {
	p, err := s.load(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.ApprovalSignature == nil || p.ApprovalPublicKeyPEM == nil || p.ApprovalTimestamp == nil {
		return &pkgerrors.InvalidSignatureError{PaymentID: p.ID.String()}
	}
	return approval.Verify(p.ID.String(), p.Amount, *p.ApprovalTimestamp, *p.ApprovalSignature, *p.ApprovalPublicKeyPEM)
}

// Get returns the payment by id.
func (s *Service) Get(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.load(ctx, paymentID)
}

func (s *Service) load(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	p, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.ErrPaymentNotFound) {
			return nil, &pkgerrors.PaymentNotFoundError{PaymentID: paymentID.String()}
		}
		return nil, pkgerrors.Wrap(err, "failed to load payment")
	}
	return p, nil
}

// persist writes the payment guarded by the status observed at load time.
// A lost race surfaces as InvalidStateTransition built from the fresh row.
func (s *Service) persist(ctx context.Context, p *domain.Payment, expected domain.PaymentStatus) error {
	now := time.Now().UTC()
	p.UpdatedAt = &now
	err := s.repo.UpdateGuarded(ctx, p, expected)
	if err == nil {
		return nil
	}
	if pkgerrors.Is(err, pkgerrors.ErrStatusConflict) {
		current, readErr := s.repo.FindByID(ctx, p.ID)
		if readErr != nil {
			return pkgerrors.Wrap(readErr, "failed to re-read payment after status conflict")
		}
		return &pkgerrors.InvalidStateTransitionError{
			Current: string(current.Status),
			Target:  string(p.Status),
		}
	}
	return pkgerrors.Wrap(err, "failed to update payment")
}

// freezeOnHit freezes the payment, records the alert and the audit entry,
// and returns the SanctionsHitError the caller propagates.
func (s *Service) freezeOnHit(ctx context.Context, p *domain.Payment, match *sanctions.Match, expected domain.PaymentStatus) error {
	frozen, err := Freeze(p.Status)
	if err != nil {
		return err
	}
	p.Status = frozen
	if err := s.persist(ctx, p, expected); err != nil {
		return err
	}

	alert := &domain.SanctionsAlert{
		ID:              uuid.New(),
		PaymentID:       p.ID,
		MatchedField:    match.Field,
		MatchedValue:    match.Value,
		ListEntryName:   match.Entry.Name,
		ListType:        match.Entry.ListType,
		SimilarityScore: decimal.NewFromFloat(match.Score).Round(4),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return pkgerrors.Wrap(err, "failed to record sanctions alert")
	}

	s.logger.Warn("Sanctions hit, payment frozen", map[string]interface{}{
		"payment_id":    p.ID.String(),
		"matched_field": match.Field,
		"list_entry":    match.Entry.Name,
		"score":         match.Score,
	})
	detail := fmt.Sprintf("field=%s entry=%s score=%.4f", match.Field, match.Entry.Name, match.Score)
	s.recordAudit(ctx, p.ID, "SYSTEM", domain.AuditSanctionsHit, &detail)

	return &pkgerrors.SanctionsHitError{
		PaymentID:       p.ID.String(),
		MatchedField:    match.Field,
		MatchedValue:    match.Value,
		ListEntryName:   match.Entry.Name,
		ListType:        match.Entry.ListType,
		SimilarityScore: match.Score,
	}
}

// recordAudit appends to the trail; audit failures are logged, never raised,
// so a broken audit store cannot mask the business outcome.
func (s *Service) recordAudit(ctx context.Context, paymentID uuid.UUID, userID, action string, details *string) {
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		PaymentID: paymentID,
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("Failed to record audit entry", map[string]interface{}{
			"payment_id": paymentID.String(),
			"action":     action,
			"error":      err.Error(),
		})
	}
}

func generateEndToEndID() string {
	id := uuid.New()
	return fmt.Sprintf("E2E-%s", strings.ToUpper(hex.EncodeToString(id[:8])))
}

func sanitizeRemittance(info *string) *string {
	if info == nil {
		return nil
	}
	clean := validator.Sanitize(*info)
	if clean == "" {
		return nil
	}
	return &clean
}
