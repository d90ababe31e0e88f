// Package handler exposes the treasury payment API over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"treasury/internal/approval"
	"treasury/internal/domain"
	"treasury/internal/middleware"
	"treasury/internal/payment"
	"treasury/pkg/errors"
	"treasury/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Logger is the logging surface the handlers need.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
}

// AuditReader lists the audit trail and alerts recorded for a payment.
type AuditReader interface {
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*domain.AuditEntry, error)
	FindAlertsByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*domain.SanctionsAlert, error)
}

type PaymentHandler struct {
	service   *payment.Service
	audit     AuditReader
	validator *validator.Validator
	logger    Logger
}

func NewPaymentHandler(service *payment.Service, audit AuditReader, val *validator.Validator, log Logger) *PaymentHandler {
	return &PaymentHandler{service: service, audit: audit, validator: val, logger: log}
}

// RegisterRoutes mounts the payment API under /api/v1.
func (h *PaymentHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/payments", h.InitiatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}", h.GetPayment).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/approve", h.ApprovePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}/reject", h.RejectPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}/export", h.ExportPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}/settle", h.SettlePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}/pain001", h.GetPain001).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/alerts", h.GetAlerts).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/audit", h.GetAuditTrail).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/verify", h.VerifyApproval).Methods(http.MethodGet)
}

// InitiatePayment handles payment initiation requests. The authenticated
// caller becomes the maker.
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req payment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := h.validator.ValidateStructured(&req); errs != nil {
		h.respondValidationErrors(w, errs)
		return
	}

	p, err := h.service.Initiate(r.Context(), &req, userID)
	if err != nil {
		h.respondServiceError(w, err, "Payment initiation failed", userID)
		return
	}

	h.respondJSON(w, http.StatusCreated, p)
}

// GetPayment returns one payment by id.
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to fetch payment", "")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

type approveRequest struct {
	SigningKeyPEM string `json:"signing_key_pem" validate:"required"`
}

// ApprovePayment performs the checker's approval. The checker submits their
// RSA signing key; the service signs the canonical payload and stores the
// signature alongside the payment.
func (h *PaymentHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key, err := approval.ParsePrivateKeyPEM(req.SigningKeyPEM)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid signing key")
		return
	}

	result, err := h.service.Approve(r.Context(), id, userID, key)
	if err != nil {
		h.respondServiceError(w, err, "Payment approval failed", userID)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// RejectPayment declines a pending payment.
func (h *PaymentHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		h.respondValidationErrors(w, errs)
		return
	}

	p, err := h.service.Reject(r.Context(), id, userID, validator.Sanitize(req.Reason))
	if err != nil {
		h.respondServiceError(w, err, "Payment rejection failed", userID)
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// ExportPayment validates the payment and renders the PAIN.001 document.
func (h *PaymentHandler) ExportPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	result, err := h.service.ValidateAndExport(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Payment export failed", "")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"payment_id":    result.PaymentID,
		"end_to_end_id": result.EndToEndID,
		"status":        result.Status,
	})
}

// SettlePayment marks an exported payment as settled.
func (h *PaymentHandler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Settle(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Payment settlement failed", "")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// GetPain001 serves the stored PAIN.001 document as XML.
func (h *PaymentHandler) GetPain001(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to fetch payment", "")
		return
	}
	if p.Pain001XML == nil {
		h.respondError(w, http.StatusNotFound, "Payment has not been exported")
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(*p.Pain001XML))
}

// GetAlerts returns the sanctions alerts recorded against a payment.
func (h *PaymentHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	alerts, err := h.audit.FindAlertsByPaymentID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to fetch sanctions alerts", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// GetAuditTrail returns the full audit trail for a payment.
func (h *PaymentHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.audit.FindByPaymentID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to fetch audit trail", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch audit trail")
		return
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"audit_trail": entries})
}

// VerifyApproval re-verifies the stored approval signature.
func (h *PaymentHandler) VerifyApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	if err := h.service.VerifyApproval(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "Approval verification failed", "")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"payment_id": id, "signature_valid": true})
}

func (h *PaymentHandler) paymentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid payment ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps domain errors onto their HTTP status and
// structured body; anything else is a 500.
func (h *PaymentHandler) respondServiceError(w http.ResponseWriter, err error, logMessage, userID string) {
	var domainErr errors.DomainError
	if errors.As(err, &domainErr) {
		h.logger.Warn(logMessage, map[string]interface{}{
			"error":   err.Error(),
			"code":    domainErr.Code(),
			"user_id": userID,
		})
		h.respondJSON(w, domainErr.HTTPStatus(), map[string]interface{}{
			"error":  domainErr.Error(),
			"code":   domainErr.Code(),
			"detail": domainErr.Detail(),
		})
		return
	}

	h.logger.Error(logMessage, map[string]interface{}{"error": err.Error(), "user_id": userID})
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *PaymentHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *PaymentHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *PaymentHandler) respondValidationErrors(w http.ResponseWriter, errs map[string]string) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}
