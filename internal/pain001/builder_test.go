package pain001

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury/internal/domain"
)

func validatedPayment() *domain.Payment {
	remit := "Invoice 2026-118"
	return &domain.Payment{
		ID:                 uuid.New(),
		EndToEndID:         "E2E-A1B2C3D4E5F60718",
		MakerUserID:        "maker-1",
		DebtorIBAN:         "GB29NWBK60161331926819",
		BeneficiaryName:    "Acme Industrial NV",
		BeneficiaryBIC:     "ABNANL2A",
		BeneficiaryIBAN:    "NL91ABNA0417164300",
		BeneficiaryCountry: "NL",
		Amount:             decimal.RequireFromString("12500.5"),
		Currency:           "EUR",
		ExecutionDate:      "2026-09-01",
		RemittanceInfo:     &remit,
		Status:             domain.StatusValidated,
	}
}

func TestBuild_RendersDocument(t *testing.T) {
	b := NewBuilder("NexusTreasury", "NEXUSGB2L")

	out, err := b.Build(validatedPayment())
	require.NoError(t, err)

	body := string(out)
	assert.True(t, strings.HasPrefix(body, xml.Header))
	assert.Contains(t, body, Namespace)
	assert.Contains(t, body, "<EndToEndId>E2E-A1B2C3D4E5F60718</EndToEndId>")
	assert.Contains(t, body, `<InstdAmt Ccy="EUR">12500.50</InstdAmt>`)
	assert.Contains(t, body, "<CtrlSum>12500.50</CtrlSum>")
	assert.Contains(t, body, "<NbOfTxs>1</NbOfTxs>")
	assert.Contains(t, body, "<IBAN>NL91ABNA0417164300</IBAN>")
	assert.Contains(t, body, "<BICFI>NEXUSGB2L</BICFI>")
	assert.Contains(t, body, "<BICFI>ABNANL2A</BICFI>")
	assert.Contains(t, body, "<Nm>Acme Industrial NV</Nm>")
	assert.Contains(t, body, "<ReqdExctnDt>2026-09-01</ReqdExctnDt>")
	assert.Contains(t, body, "<Ustrd>Invoice 2026-118</Ustrd>")

	var doc Document
	require.NoError(t, xml.Unmarshal(out, &doc))
	assert.Equal(t, 1, doc.CstmrCdtTrfInitn.GrpHdr.NbOfTxs)
}

func TestBuild_TwoFractionDigitsAlways(t *testing.T) {
	b := NewBuilder("NexusTreasury", "NEXUSGB2L")

	p := validatedPayment()
	p.Amount = decimal.RequireFromString("100.12345678")
	out, err := b.Build(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), ">100.12</InstdAmt>")

	p.Amount = decimal.NewFromInt(7)
	out, err = b.Build(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), ">7.00</InstdAmt>")
}

func TestBuild_RemittanceOptional(t *testing.T) {
	b := NewBuilder("NexusTreasury", "NEXUSGB2L")

	p := validatedPayment()
	p.RemittanceInfo = nil
	out, err := b.Build(p)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<RmtInf>")
}

func TestBuild_RequiresValidatedStatus(t *testing.T) {
	b := NewBuilder("NexusTreasury", "NEXUSGB2L")

	p := validatedPayment()
	p.Status = domain.StatusPendingApproval
	_, err := b.Build(p)
	assert.Error(t, err)
}

func TestBuild_FailsLoudlyOnMissingField(t *testing.T) {
	b := NewBuilder("NexusTreasury", "NEXUSGB2L")

	p := validatedPayment()
	p.BeneficiaryIBAN = ""
	_, err := b.Build(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beneficiary_iban")
}

func TestValidate_CollectsAllDefects(t *testing.T) {
	v := NewValidator()

	p := validatedPayment()
	p.Currency = ""
	p.EndToEndID = ""
	errs := v.Validate(p)
	require.Len(t, errs, 2)
	fields := []string{errs[0].Field, errs[1].Field}
	assert.Contains(t, fields, "currency")
	assert.Contains(t, fields, "end_to_end_id")
}

func TestValidate_FieldRules(t *testing.T) {
	v := NewValidator()

	p := validatedPayment()
	p.DebtorIBAN = "GB00NWBK60161331926819" // bad check digits
	p.BeneficiaryBIC = "BAD"
	p.Amount = decimal.Zero
	p.ExecutionDate = "01/09/2026"

	errs := v.Validate(p)
	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Reason
	}
	assert.Contains(t, byField, "debtor_iban")
	assert.Contains(t, byField, "beneficiary_bic")
	assert.Contains(t, byField, "amount")
	assert.Contains(t, byField, "execution_date")
}

func TestValidate_CleanPayment(t *testing.T) {
	assert.Empty(t, NewValidator().Validate(validatedPayment()))
}
