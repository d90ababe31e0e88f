// Package pain001 renders validated payments as ISO 20022 pain.001.001.09
// customer credit transfer initiation documents.
package pain001

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"treasury/internal/domain"
)

const Namespace = "urn:iso:std:iso:20022:tech:xsd:pain.001.001.09"

type Document struct {
	XMLName          xml.Name         `xml:"urn:iso:std:iso:20022:tech:xsd:pain.001.001.09 Document"`
	CstmrCdtTrfInitn CreditTransfer   `xml:"CstmrCdtTrfInitn"`
}

type CreditTransfer struct {
	GrpHdr GroupHeader `xml:"GrpHdr"`
	PmtInf PaymentInfo `xml:"PmtInf"`
}

type GroupHeader struct {
	MsgId    string         `xml:"MsgId"`
	CreDtTm  string         `xml:"CreDtTm"`
	NbOfTxs  int            `xml:"NbOfTxs"`
	CtrlSum  string         `xml:"CtrlSum"`
	InitgPty PartyName      `xml:"InitgPty"`
}

type PartyName struct {
	Nm string `xml:"Nm"`
}

type PaymentInfo struct {
	PmtInfId    string          `xml:"PmtInfId"`
	PmtMtd      string          `xml:"PmtMtd"`
	NbOfTxs     int             `xml:"NbOfTxs"`
	CtrlSum     string          `xml:"CtrlSum"`
	PmtTpInf    PaymentTypeInfo `xml:"PmtTpInf"`
	ReqdExctnDt string          `xml:"ReqdExctnDt"`
	Dbtr        PartyName       `xml:"Dbtr"`
	DbtrAcct    Account         `xml:"DbtrAcct"`
	DbtrAgt     Agent           `xml:"DbtrAgt"`
	CdtTrfTxInf CreditTransferTx `xml:"CdtTrfTxInf"`
}

type PaymentTypeInfo struct {
	SvcLvl ServiceLevel `xml:"SvcLvl"`
}

type ServiceLevel struct {
	Cd string `xml:"Cd"`
}

type Account struct {
	Id AccountId `xml:"Id"`
}

type AccountId struct {
	IBAN string `xml:"IBAN"`
}

type Agent struct {
	FinInstnId FinancialInstitution `xml:"FinInstnId"`
}

type FinancialInstitution struct {
	BICFI string `xml:"BICFI"`
}

type CreditTransferTx struct {
	PmtId    PaymentId   `xml:"PmtId"`
	Amt      Amount      `xml:"Amt"`
	CdtrAgt  Agent       `xml:"CdtrAgt"`
	Cdtr     PartyName   `xml:"Cdtr"`
	CdtrAcct Account     `xml:"CdtrAcct"`
	RmtInf   *Remittance `xml:"RmtInf,omitempty"`
}

type PaymentId struct {
	EndToEndId string `xml:"EndToEndId"`
}

type Amount struct {
	InstdAmt InstructedAmount `xml:"InstdAmt"`
}

type InstructedAmount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

type Remittance struct {
	Ustrd string `xml:"Ustrd"`
}

// Builder renders export documents. It performs no business validation; a
// payment reaching it must already be VALIDATED, and any field still missing
// at this point is a loud failure, never a silently omitted element.
type Builder struct {
	initiatingParty string
	debtorAgentBIC  string
	now             func() time.Time
}

func NewBuilder(initiatingParty, debtorAgentBIC string) *Builder {
	return &Builder{
		initiatingParty: initiatingParty,
		debtorAgentBIC:  debtorAgentBIC,
		now:             time.Now,
	}
}

// Build renders the pain.001 document for an already-validated payment.
func (b *Builder) Build(p *domain.Payment) ([]byte, error) {
	if p.Status != domain.StatusValidated {
		return nil, fmt.Errorf("cannot build pain.001 for payment in status %s", p.Status)
	}
	if err := b.checkRendered(p); err != nil {
		return nil, err
	}

	shortID := strings.ToUpper(strings.ReplaceAll(p.ID.String(), "-", "")[:8])
	amount := p.Amount.StringFixed(2)

	doc := Document{
		CstmrCdtTrfInitn: CreditTransfer{
			GrpHdr: GroupHeader{
				MsgId:    fmt.Sprintf("TRSY-%s", shortID),
				CreDtTm:  b.now().UTC().Format("2006-01-02T15:04:05"),
				NbOfTxs:  1,
				CtrlSum:  amount,
				InitgPty: PartyName{Nm: b.initiatingParty},
			},
			PmtInf: PaymentInfo{
				PmtInfId:    fmt.Sprintf("PMTINF-%s", shortID),
				PmtMtd:      "TRF",
				NbOfTxs:     1,
				CtrlSum:     amount,
				PmtTpInf:    PaymentTypeInfo{SvcLvl: ServiceLevel{Cd: "SEPA"}},
				ReqdExctnDt: p.ExecutionDate,
				Dbtr:        PartyName{Nm: b.initiatingParty},
				DbtrAcct:    Account{Id: AccountId{IBAN: p.DebtorIBAN}},
				DbtrAgt:     Agent{FinInstnId: FinancialInstitution{BICFI: b.debtorAgentBIC}},
				CdtTrfTxInf: CreditTransferTx{
					PmtId: PaymentId{EndToEndId: p.EndToEndID},
					Amt: Amount{InstdAmt: InstructedAmount{
						Ccy:   p.Currency,
						Value: amount,
					}},
					CdtrAgt:  Agent{FinInstnId: FinancialInstitution{BICFI: p.BeneficiaryBIC}},
					Cdtr:     PartyName{Nm: p.BeneficiaryName},
					CdtrAcct: Account{Id: AccountId{IBAN: p.BeneficiaryIBAN}},
				},
			},
		},
	}

	if p.RemittanceInfo != nil && *p.RemittanceInfo != "" {
		doc.CstmrCdtTrfInitn.PmtInf.CdtTrfTxInf.RmtInf = &Remittance{Ustrd: *p.RemittanceInfo}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func (b *Builder) checkRendered(p *domain.Payment) error {
	fields := map[string]string{
		"debtor_iban":      p.DebtorIBAN,
		"beneficiary_name": p.BeneficiaryName,
		"beneficiary_bic":  p.BeneficiaryBIC,
		"beneficiary_iban": p.BeneficiaryIBAN,
		"currency":         p.Currency,
		"end_to_end_id":    p.EndToEndID,
		"execution_date":   p.ExecutionDate,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("required field %s is empty at render time", name)
		}
	}
	return nil
}
