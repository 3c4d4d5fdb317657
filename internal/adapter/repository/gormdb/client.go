package gormdb

import (
	"context"
	"math/rand/v2"
	"strings"

	clientDomain "credapp/internal/domain/client"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ageBandExpr = "CASE WHEN idade <= 25 THEN '0-25' " +
	"WHEN idade <= 35 THEN '26-35' " +
	"WHEN idade <= 45 THEN '36-45' " +
	"WHEN idade <= 60 THEN '46-60' " +
	"ELSE '60+' END"

var _ clientDomain.Repository = (*ClientRepository)(nil)

type ClientRepository struct {
	db   *gorm.DB
	pick func(n int64) int64
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db, pick: rand.Int64N}
}

// CreateBatch inserts clients, replacing rows that share an id_cliente.
func (r *ClientRepository) CreateBatch(ctx context.Context, clients []clientDomain.Client, batchSize int) error {
	if len(clients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(clients, batchSize).Error
}

func (r *ClientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&clientDomain.Client{}).Count(&n).Error
	return n, err
}

func (r *ClientRepository) List(ctx context.Context, q clientDomain.Query) ([]clientDomain.Client, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&clientDomain.Client{}).Scopes(matching(q)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []clientDomain.Client{}
	err := r.db.WithContext(ctx).
		Scopes(matching(q)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: !q.Ascending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id_cliente"}}).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&out).Error
	return out, total, err
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*clientDomain.Client, error) {
	var out clientDomain.Client
	if err := r.db.WithContext(ctx).Where("id_cliente = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// Random returns a uniformly chosen client, or gorm.ErrRecordNotFound when the
// table is empty.
func (r *ClientRepository) Random(ctx context.Context) (*clientDomain.Client, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var out clientDomain.Client
	err = r.db.WithContext(ctx).
		Order("id_cliente").
		Offset(int(r.pick(n))).
		Limit(1).
		Take(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Defaulters lists defaulting clients, longest delay first.
func (r *ClientRepository) Defaulters(ctx context.Context, limit int) ([]clientDomain.Client, error) {
	out := []clientDomain.Client{}
	err := r.db.WithContext(ctx).
		Where("inadimplente = ?", true).
		Order("atrasos_meses DESC, id_cliente").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *ClientRepository) Indicators(ctx context.Context) (clientDomain.Indicators, error) {
	var row struct {
		Total      int64
		Defaulters int64
		AvgScore   float64
		AvgIncome  float64
	}
	err := r.db.WithContext(ctx).Model(&clientDomain.Client{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN inadimplente = ? THEN 1 ELSE 0 END), 0) AS defaulters, "+
			"COALESCE(AVG(score_credito_num), 0) AS avg_score, "+
			"COALESCE(AVG(salario_anual), 0) AS avg_income", true).
		Scan(&row).Error
	if err != nil {
		return clientDomain.Indicators{}, err
	}
	return clientDomain.Indicators{
		TotalClients:  row.Total,
		Defaulters:    row.Defaulters,
		AverageScore:  row.AvgScore,
		AverageIncome: row.AvgIncome,
	}, nil
}

func (r *ClientRepository) ScoreByOccupation(ctx context.Context) ([]clientDomain.OccupationScore, error) {
	out := []clientDomain.OccupationScore{}
	err := r.db.WithContext(ctx).Model(&clientDomain.Client{}).
		Select("profissao AS occupation, AVG(score_credito_num) AS average_score").
		Group("profissao").
		Order("profissao").
		Scan(&out).Error
	return out, err
}

// CountByAgeBand returns every band of clientDomain.AgeBands in order, with
// zero counts for empty bands. Clients without a known age are skipped.
func (r *ClientRepository) CountByAgeBand(ctx context.Context) ([]clientDomain.AgeBandCount, error) {
	var rows []clientDomain.AgeBandCount
	err := r.db.WithContext(ctx).Model(&clientDomain.Client{}).
		Select(ageBandExpr + " AS band, COUNT(*) AS clients").
		Where("idade > 0").
		Group("band").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Band] = row.Clients
	}
	out := make([]clientDomain.AgeBandCount, 0, len(clientDomain.AgeBands))
	for _, band := range clientDomain.AgeBands {
		out = append(out, clientDomain.AgeBandCount{Band: band, Clients: counts[band]})
	}
	return out, nil
}

// likeEscaper makes %, _ and the escape character itself literal in a LIKE
// pattern. '!' works as ESCAPE on both sqlite and mysql.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// matching narrows a query to the filter and status of q.
func matching(q clientDomain.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Filter != "" {
			f := likeEscaper.Replace(q.Filter)
			db = db.Where("(LOWER(nome) LIKE ? ESCAPE '!' OR cpf LIKE ? ESCAPE '!')",
				"%"+strings.ToLower(f)+"%", "%"+f+"%")
		}
		switch q.Status {
		case clientDomain.StatusDefaulters:
			db = db.Where("inadimplente = ?", true)
		case clientDomain.StatusActive:
			db = db.Where("inadimplente = ?", false)
		case clientDomain.StatusBlocked:
			db = db.Where("atrasos_meses >= ?", clientDomain.BlockedMonthsLate)
		}
		return db
	}
}
