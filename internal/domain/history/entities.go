package history

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidSession = errors.New("invalid session id")

var reSession = regexp.MustCompile(`^[a-f0-9]{32}$`)

// ValidateSession accepts 32-char lowercase hex session ids.
func ValidateSession(id string) error {
	if !reSession.MatchString(id) {
		return ErrInvalidSession
	}
	return nil
}

type Status string

const (
	StatusAccepted Status = "aceito"
	StatusDeclined Status = "recusado"
	StatusApproved Status = "aprovado"
	StatusRejected Status = "rejeitado"
)

// Simulation holds the engine output behind an aprovado/rejeitado entry.
type Simulation struct {
	Policy          string          `json:"politica"`
	Limit           decimal.Decimal `json:"limite"`
	MaxInstallments int             `json:"max_parcelas,omitempty"`
	Reason          string          `json:"motivo,omitempty"`
	Advisories      []string        `json:"avisos,omitempty"`
}

// Entry is one line of a session's credit history.
type Entry struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	ClientID   int64           `json:"id_cliente,omitempty"`
	Name       string          `json:"nome"`
	LoanAmount decimal.Decimal `json:"valor_emprestimo"`
	Status     Status          `json:"status"`
	Simulation *Simulation     `json:"simulacao,omitempty"`
	CreatedAt  time.Time       `json:"data"`
}

// Summary is the session's credit budget position.
type Summary struct {
	Total     decimal.Decimal `json:"credito_total"`
	Used      decimal.Decimal `json:"credito_usado"`
	Available decimal.Decimal `json:"credito_disponivel"`
	Accepted  int             `json:"aceitos"`
	Declined  int             `json:"recusados"`
}

// Summarize charges every accepted request against budget.
func Summarize(entries []Entry, budget decimal.Decimal) Summary {
	s := Summary{Total: budget, Used: decimal.Zero}
	for _, e := range entries {
		switch e.Status {
		case StatusAccepted:
			s.Accepted++
			s.Used = s.Used.Add(e.LoanAmount)
		case StatusDeclined:
			s.Declined++
		}
	}
	s.Available = s.Total.Sub(s.Used)
	return s
}

// FilterByName keeps the entries whose name contains q, ignoring case.
func FilterByName(entries []Entry, q string) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
