package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"credapp/internal/domain/client"
)

var requiredColumns = []string{"id_cliente", "nome", "cpf"}

func checkHeader(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}
	var errs []error
	for _, c := range requiredColumns {
		if !have[c] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingColumn, c))
		}
	}
	return errors.Join(errs...)
}

func toMap(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, key := range header {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		m[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return m
}

// decodeRow maps one dataset row onto a Client. Blank numeric cells are 0 and
// the score label also yields the numeric score.
func decodeRow(row map[string]string) (client.Client, error) {
	d := rowDecoder{row: row}
	c := client.Client{
		ID:            d.int64Col("id_cliente"),
		Name:          row["nome"],
		NationalID:    row["cpf"],
		Email:         row["email"],
		Phone:         row["telefone"],
		Address:       row["endereco"],
		Occupation:    row["profissao"],
		Age:           d.intCol("idade"),
		AnnualSalary:  d.floatCol("salario_anual"),
		HasLoan:       d.boolCol("possui_emprestimo"),
		LoanAmount:    d.floatCol("valor_emprestimo"),
		MonthsLeft:    d.intCol("meses_restantes"),
		MonthlyRate:   d.floatCol("juros_mensal"),
		Installment:   d.floatCol("valor_parcela"),
		TotalDebt:     d.floatCol("valor_total_divida"),
		LoanStartDate: row["data_inicio_emprestimo"],
		LoanType:      row["tipo_emprestimo"],
		Defaulter:     d.boolCol("inadimplente"),
		MonthsLate:    d.intCol("atrasos_meses"),
		ScoreLabel:    row["score_credito"],
	}
	c.ScoreNumeric = client.ScoreFromLabel(c.ScoreLabel)
	if d.err == nil && c.ID <= 0 {
		d.err = fmt.Errorf("id_cliente must be positive, got %d", c.ID)
	}
	return c, d.err
}

// rowDecoder keeps the first conversion error.
type rowDecoder struct {
	row map[string]string
	err error
}

func (d *rowDecoder) fail(col, v string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%s: %q: %w", col, v, err)
	}
}

func (d *rowDecoder) floatCol(col string) float64 {
	v := d.row[col]
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		d.fail(col, v, err)
		return 0
	}
	return f
}

func (d *rowDecoder) int64Col(col string) int64 {
	v := d.row[col]
	if v == "" {
		return 0
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	// spreadsheets and pandas write whole numbers as "42.0"
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		d.fail(col, v, errors.New("not a whole number"))
		return 0
	}
	return int64(f)
}

func (d *rowDecoder) intCol(col string) int { return int(d.int64Col(col)) }

func (d *rowDecoder) boolCol(col string) bool {
	v := d.row[col]
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err == nil {
		return b
	}
	return d.int64Col(col) != 0
}
