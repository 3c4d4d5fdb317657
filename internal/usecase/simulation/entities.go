package simulation

import (
	"credapp/internal/domain/credit"
	"credapp/internal/domain/history"
)

// Input is the simulator form plus the policy to evaluate it with. An empty
// policy selects the service default.
type Input struct {
	Policy   string `json:"politica"`
	ClientID int64  `json:"id_cliente" validate:"gte=0"`
	credit.Form
}

// Result is the decision with the operator-facing messages.
type Result struct {
	Policy string `json:"politica"`
	credit.Decision
	Message  string         `json:"mensagem"`
	Warnings []string       `json:"alertas,omitempty"`
	Entry    *history.Entry `json:"historico,omitempty"`
}

var reasonMessages = map[credit.RejectionReason]string{
	credit.ReasonMissingName:        "Por favor, preencha o nome.",
	credit.ReasonInvalidID:          "CPF inválido. Informe 11 números.",
	credit.ReasonInvalidFields:      "Por favor, preencha todos os campos corretamente.",
	credit.ReasonAgeOutOfRange:      "Idade fora do permitido para crédito (18 a 75 anos).",
	credit.ReasonInvalidEmployment:  "Tempo de emprego inválido.",
	credit.ReasonInsufficientIncome: "Renda insuficiente para crédito.",
	credit.ReasonScoreTooLow:        "Score muito baixo para aprovação.",
}

var advisoryMessages = map[string]string{
	credit.AdvisoryHighDebt.Code: "Dívidas muito altas, limite reduzido.",
}

const approvedMessage = "Simulação concluída com sucesso!"

// Message is the operator-facing text for d.
func Message(d credit.Decision) string {
	if d.IsApproved() {
		return approvedMessage
	}
	return reasonMessages[d.Reason]
}

func warnings(d credit.Decision) []string {
	var out []string
	for _, a := range d.Advisories {
		if m, ok := advisoryMessages[a.Code]; ok {
			out = append(out, m)
		} else {
			out = append(out, a.Message)
		}
	}
	return out
}
