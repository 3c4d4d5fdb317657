package client

import domain "credapp/internal/domain/client"

type ListInput struct {
	Filter    string `query:"filtro"`
	Status    string `query:"status"`
	OrderBy   string `query:"ordenarPor"`
	Direction string `query:"direcao"`
	Page      int    `query:"pagina"`
	Limit     int    `query:"limite"`
}

type PageDTO struct {
	Page    int             `json:"pagina"`
	Limit   int             `json:"limite"`
	Total   int64           `json:"total"`
	Clients []domain.Client `json:"clientes"`
}

// ApplicantDTO is the slice of a client the simulator prefills its form with.
type ApplicantDTO struct {
	ID           int64   `json:"id_cliente"`
	Name         string  `json:"nome"`
	NationalID   string  `json:"cpf"`
	Age          int     `json:"idade"`
	Occupation   string  `json:"profissao"`
	AnnualSalary float64 `json:"salario_anual"`
}

type DefaulterDTO struct {
	ID           int64   `json:"id_cliente"`
	Name         string  `json:"nome"`
	NationalID   string  `json:"cpf"`
	ScoreLabel   string  `json:"score_credito"`
	ScoreNumeric int     `json:"score_credito_num"`
	MonthsLate   int     `json:"atrasos_meses"`
	TotalDebt    float64 `json:"valor_total_divida"`
}

type IndicatorsDTO struct {
	TotalClients     int64   `json:"total_clientes"`
	AverageScore     float64 `json:"score_medio"`
	DefaulterPercent float64 `json:"inadimplentes_percentual"`
	AverageIncome    float64 `json:"renda_media"`
}

type PaymentStatusDTO struct {
	Compliant  int64 `json:"adimplentes"`
	Defaulters int64 `json:"inadimplentes"`
}

// StatsDTO is the institution dashboard.
type StatsDTO struct {
	Indicators        IndicatorsDTO            `json:"indicadores"`
	ScoreByOccupation []domain.OccupationScore `json:"score_por_profissao"`
	AgeBands          []domain.AgeBandCount    `json:"faixa_etaria"`
	PaymentStatus     PaymentStatusDTO         `json:"adimplencia"`
}

func toApplicant(c *domain.Client) *ApplicantDTO {
	return &ApplicantDTO{
		ID:           c.ID,
		Name:         c.Name,
		NationalID:   c.NationalID,
		Age:          c.Age,
		Occupation:   c.Occupation,
		AnnualSalary: c.AnnualSalary,
	}
}

func toDefaulter(c domain.Client) DefaulterDTO {
	return DefaulterDTO{
		ID:           c.ID,
		Name:         c.Name,
		NationalID:   c.NationalID,
		ScoreLabel:   c.ScoreLabel,
		ScoreNumeric: c.ScoreNumeric,
		MonthsLate:   c.MonthsLate,
		TotalDebt:    c.TotalDebt,
	}
}
