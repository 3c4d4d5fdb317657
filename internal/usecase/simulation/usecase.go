package simulation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"credapp/internal/domain/credit"
	"credapp/internal/domain/history"
	"credapp/internal/infrastructure/logging"
	"credapp/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Recorder appends simulation outcomes to a session history.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

type Usecase struct {
	engines       map[string]*credit.Engine
	defaultPolicy string
	history       Recorder
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

// NewUsecase builds one engine per preset. defaultPolicy must name a preset.
func NewUsecase(defaultPolicy string, h Recorder, m *metrics.Metrics) (*Usecase, error) {
	if _, err := credit.LookupPolicy(defaultPolicy); err != nil {
		return nil, err
	}
	engines := make(map[string]*credit.Engine)
	for _, p := range credit.Policies() {
		e, err := credit.NewEngine(p)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", p.Name, err)
		}
		engines[p.Name] = e
	}
	return &Usecase{
		engines:       engines,
		defaultPolicy: defaultPolicy,
		history:       h,
		metrics:       m,
		log:           logging.Component(log.Logger, "simulation"),
	}, nil
}

func (u *Usecase) Policies() []credit.Policy { return credit.Policies() }

func (u *Usecase) DefaultPolicy() string { return u.defaultPolicy }

// Simulate evaluates the form and, when session is set, records the outcome
// as aprovado or rejeitado in that session's history.
func (u *Usecase) Simulate(ctx context.Context, session string, in Input) (*Result, error) {
	start := time.Now()
	name := strings.TrimSpace(in.Policy)
	if name == "" {
		name = u.defaultPolicy
	}
	engine, ok := u.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", credit.ErrUnknownPolicy, in.Policy)
	}
	if session != "" {
		if err := history.ValidateSession(session); err != nil {
			return nil, err
		}
	}

	d := engine.EvaluateForm(in.Form)
	res := &Result{Policy: name, Decision: d, Message: Message(d), Warnings: warnings(d)}

	if session != "" && u.history != nil {
		e, err := u.history.Record(ctx, entryFor(session, name, in, d))
		if err != nil {
			return nil, err
		}
		res.Entry = &e
	}

	u.metrics.IncrementOutcome(name, string(d.Status), string(d.Reason))
	u.metrics.ObserveEvaluateLatency(time.Since(start))
	u.log.Debug().
		Str("policy", name).
		Str("status", string(d.Status)).
		Str("reason", string(d.Reason)).
		Str(logging.SESSION, session).
		Msg("credit simulated")
	return res, nil
}

func entryFor(session, policy string, in Input, d credit.Decision) history.Entry {
	sim := &history.Simulation{
		Policy:          policy,
		Limit:           d.Limit,
		MaxInstallments: d.MaxInstallments,
		Reason:          string(d.Reason),
	}
	for _, a := range d.Advisories {
		sim.Advisories = append(sim.Advisories, a.Code)
	}
	e := history.Entry{
		SessionID:  session,
		ClientID:   in.ClientID,
		Name:       strings.TrimSpace(in.FullName),
		LoanAmount: decimal.Zero,
		Status:     history.StatusRejected,
		Simulation: sim,
	}
	if d.IsApproved() {
		e.Status = history.StatusApproved
		e.LoanAmount = d.Limit
	}
	return e
}
