package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("client not found")
	ErrInvalidQuery = errors.New("invalid client query")
)

// Client mirrors one row of the institution's client dataset.
type Client struct {
	ID            int64   `gorm:"primaryKey;autoIncrement:false;column:id_cliente" json:"id_cliente"`
	Name          string  `gorm:"column:nome;size:255;index:idx_clients_nome" json:"nome"`
	NationalID    string  `gorm:"column:cpf;size:20;index:idx_clients_cpf" json:"cpf"`
	Email         string  `gorm:"column:email;size:255" json:"email"`
	Phone         string  `gorm:"column:telefone;size:64" json:"telefone"`
	Address       string  `gorm:"column:endereco;type:text" json:"endereco"`
	Occupation    string  `gorm:"column:profissao;size:255;index:idx_clients_profissao" json:"profissao"`
	Age           int     `gorm:"column:idade" json:"idade"`
	AnnualSalary  float64 `gorm:"column:salario_anual;type:decimal(18,2)" json:"salario_anual"`
	HasLoan       bool    `gorm:"column:possui_emprestimo" json:"possui_emprestimo"`
	LoanAmount    float64 `gorm:"column:valor_emprestimo;type:decimal(18,2)" json:"valor_emprestimo"`
	MonthsLeft    int     `gorm:"column:meses_restantes" json:"meses_restantes"`
	MonthlyRate   float64 `gorm:"column:juros_mensal;type:decimal(8,4)" json:"juros_mensal"`
	Installment   float64 `gorm:"column:valor_parcela;type:decimal(18,2)" json:"valor_parcela"`
	TotalDebt     float64 `gorm:"column:valor_total_divida;type:decimal(18,2)" json:"valor_total_divida"`
	LoanStartDate string  `gorm:"column:data_inicio_emprestimo;size:10" json:"data_inicio_emprestimo"`
	LoanType      string  `gorm:"column:tipo_emprestimo;size:64" json:"tipo_emprestimo"`
	Defaulter     bool    `gorm:"column:inadimplente;index:idx_clients_inadimplente" json:"inadimplente"`
	MonthsLate    int     `gorm:"column:atrasos_meses" json:"atrasos_meses"`
	ScoreLabel    string  `gorm:"column:score_credito;size:32" json:"score_credito"`
	ScoreNumeric  int     `gorm:"column:score_credito_num;index:idx_clients_score" json:"score_credito_num"`
}

func (Client) TableName() string { return "clients" }

var scoreLabels = map[string]int{
	"muito ruim": 300,
	"ruim":       450,
	"regular":    600,
	"bom":        750,
	"muito bom":  850,
	"excelente":  900,
}

// ScoreFromLabel maps a dataset score label ("Bom", "Muito Ruim", ...) to its
// numeric score. Unknown or blank labels score 0.
func ScoreFromLabel(label string) int {
	return scoreLabels[strings.ToLower(strings.TrimSpace(label))]
}

// BlockedMonthsLate is the delay from which a client is listed as blocked.
const BlockedMonthsLate = 6

type Status string

const (
	StatusAll        Status = "todos"
	StatusDefaulters Status = "inadimplentes"
	StatusActive     Status = "ativos"
	StatusBlocked    Status = "bloqueados"
)

const (
	DefaultOrderBy = "score_credito_num"
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxDefaulters  = 1000
)

var sortable = map[string]bool{
	"id_cliente":         true,
	"nome":               true,
	"idade":              true,
	"profissao":          true,
	"salario_anual":      true,
	"valor_emprestimo":   true,
	"valor_total_divida": true,
	"inadimplente":       true,
	"atrasos_meses":      true,
	"score_credito_num":  true,
}

// Query selects one page of clients.
type Query struct {
	Filter    string
	Status    Status
	OrderBy   string
	Ascending bool
	Page      int
	Limit     int
}

// NewQuery applies defaults and validates a listing request. Zero page and
// limit mean "default"; direction is "asc" or "desc" (default desc).
func NewQuery(filter string, status Status, orderBy, direction string, page, limit int) (Query, error) {
	q := Query{Filter: strings.TrimSpace(filter), Status: status, OrderBy: orderBy, Page: page, Limit: limit}
	if q.Status == "" {
		q.Status = StatusAll
	}
	switch q.Status {
	case StatusAll, StatusDefaulters, StatusActive, StatusBlocked:
	default:
		return Query{}, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, status)
	}
	if q.OrderBy == "" {
		q.OrderBy = DefaultOrderBy
	}
	if !sortable[q.OrderBy] {
		return Query{}, fmt.Errorf("%w: cannot order by %q", ErrInvalidQuery, orderBy)
	}
	switch strings.ToLower(direction) {
	case "", "desc":
	case "asc":
		q.Ascending = true
	default:
		return Query{}, fmt.Errorf("%w: direction must be asc or desc", ErrInvalidQuery)
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Page < 1 {
		return Query{}, fmt.Errorf("%w: page must be >= 1", ErrInvalidQuery)
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return Query{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxLimit)
	}
	return q, nil
}

func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

// Indicators are the institution-wide aggregates.
type Indicators struct {
	TotalClients  int64
	Defaulters    int64
	AverageScore  float64
	AverageIncome float64
}

type OccupationScore struct {
	Occupation   string  `json:"profissao"`
	AverageScore float64 `json:"media_score"`
}

type AgeBandCount struct {
	Band    string `json:"faixa"`
	Clients int64  `json:"clientes"`
}

// AgeBands are upper-inclusive: 0-25, 26-35, 36-45, 46-60, then 60+.
var AgeBands = []string{"0-25", "26-35", "36-45", "46-60", "60+"}
