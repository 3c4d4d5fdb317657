package credit

import "github.com/shopspring/decimal"

type Status string

const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// RejectionReason is the typed outcome of a failed validation step.
type RejectionReason string

const (
	ReasonMissingName        RejectionReason = "MISSING_NAME"
	ReasonInvalidID          RejectionReason = "INVALID_ID"
	ReasonInvalidFields      RejectionReason = "INVALID_FIELDS"
	ReasonAgeOutOfRange      RejectionReason = "AGE_OUT_OF_RANGE"
	ReasonInvalidEmployment  RejectionReason = "INVALID_EMPLOYMENT"
	ReasonInsufficientIncome RejectionReason = "INSUFFICIENT_INCOME"
	ReasonScoreTooLow        RejectionReason = "SCORE_TOO_LOW"
)

// Advisory is a non-blocking note attached to an approval.
type Advisory struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var AdvisoryHighDebt = Advisory{Code: "HIGH_DEBT", Message: "limit reduced due to high debt"}

// Decision is either an approval (Limit, MaxInstallments) or a rejection
// (Reason). Build it with Approved or Rejected.
type Decision struct {
	Status          Status          `json:"status"`
	Reason          RejectionReason `json:"reason,omitempty"`
	Limit           decimal.Decimal `json:"limit"`
	MaxInstallments int             `json:"max_installments,omitempty"`
	Advisories      []Advisory      `json:"advisories,omitempty"`
}

func Approved(limit decimal.Decimal, maxInstallments int, advisories ...Advisory) Decision {
	if maxInstallments < 1 {
		maxInstallments = 1
	}
	return Decision{
		Status:          StatusApproved,
		Limit:           limit,
		MaxInstallments: maxInstallments,
		Advisories:      advisories,
	}
}

func Rejected(reason RejectionReason) Decision {
	return Decision{Status: StatusRejected, Reason: reason, Limit: decimal.Zero}
}

func (d Decision) IsApproved() bool { return d.Status == StatusApproved }

// HasAdvisory reports whether the advisory with the given code is attached.
func (d Decision) HasAdvisory(code string) bool {
	for _, a := range d.Advisories {
		if a.Code == code {
			return true
		}
	}
	return false
}
