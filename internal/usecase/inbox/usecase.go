package inbox

import (
	"context"
	"math/rand/v2"
	"time"

	"credapp/internal/domain/client"
	"credapp/internal/domain/creditrequest"
	"credapp/internal/domain/history"
	"credapp/internal/infrastructure/logging"
	"credapp/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ClientSource draws the client behind the next incoming request.
type ClientSource interface {
	RandomClient(ctx context.Context) (*client.Client, error)
}

// Recorder appends operator decisions to a session history.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

type Usecase struct {
	clients ClientSource
	store   creditrequest.Store
	history Recorder
	rnd     creditrequest.Rand
	now     func() time.Time
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewUsecase(src ClientSource, store creditrequest.Store, h Recorder, m *metrics.Metrics) *Usecase {
	return &Usecase{
		clients: src,
		store:   store,
		history: h,
		rnd:     globalRand{},
		now:     time.Now,
		metrics: m,
		log:     logging.Component(log.Logger, "inbox"),
	}
}

// Poll draws a random client and enqueues a request for it. added is false
// when that client already has a pending request.
func (u *Usecase) Poll(ctx context.Context) (r creditrequest.Request, added bool, err error) {
	c, err := u.clients.RandomClient(ctx)
	if err != nil {
		return creditrequest.Request{}, false, err
	}
	r = creditrequest.NewRequest(*c, u.rnd, u.now())
	added = u.store.Add(r)
	if !added {
		r, _ = u.store.Get(c.ID)
	}
	u.metrics.SetPending(len(u.store.Pending()))
	return r, added, nil
}

// Run polls every interval until ctx is done. A non-positive interval
// returns at once.
func (u *Usecase) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	u.log.Info().Dur("interval", interval).Msg("inbox poller started")
	for {
		select {
		case <-ctx.Done():
			u.log.Info().Msg("inbox poller stopped")
			return
		case <-t.C:
			r, added, err := u.Poll(ctx)
			if err != nil {
				u.log.Warn().Err(err).Msg("poll failed")
				continue
			}
			if added {
				u.log.Debug().Int64(logging.CLIENT, r.ClientID).Msg("credit request received")
			}
		}
	}
}

// Pending returns the first requests in arrival order and the total count.
func (u *Usecase) Pending() PendingDTO {
	all := u.store.Pending()
	if all == nil {
		all = []creditrequest.Request{}
	}
	visible := all
	if len(visible) > creditrequest.VisiblePending {
		visible = visible[:creditrequest.VisiblePending]
	}
	return PendingDTO{Requests: visible, Total: len(all)}
}

func (u *Usecase) Accept(ctx context.Context, session string, clientID int64) (history.Entry, error) {
	return u.decide(ctx, session, clientID, history.StatusAccepted)
}

func (u *Usecase) Reject(ctx context.Context, session string, clientID int64) (history.Entry, error) {
	return u.decide(ctx, session, clientID, history.StatusDeclined)
}

func (u *Usecase) decide(ctx context.Context, session string, clientID int64, status history.Status) (history.Entry, error) {
	if err := history.ValidateSession(session); err != nil {
		return history.Entry{}, err
	}
	// claim first so concurrent decisions on one request cannot both record
	r, ok := u.store.Take(clientID)
	if !ok {
		return history.Entry{}, creditrequest.ErrNotFound
	}
	e, err := u.history.Record(ctx, history.Entry{
		SessionID:  session,
		ClientID:   r.ClientID,
		Name:       r.Name,
		LoanAmount: r.LoanAmount,
		Status:     status,
	})
	if err != nil {
		u.store.Add(r)
		return history.Entry{}, err
	}
	u.store.DismissNotification(clientID)

	u.metrics.IncrementInboxDecision(string(status))
	u.metrics.SetPending(len(u.store.Pending()))
	u.log.Info().
		Str(logging.SESSION, session).
		Int64(logging.CLIENT, clientID).
		Str("status", string(status)).
		Msg("credit request decided")
	return e, nil
}

func (u *Usecase) Notifications() NotificationsDTO {
	n, unread := u.store.Notifications()
	if n == nil {
		n = []creditrequest.Notification{}
	}
	return NotificationsDTO{Notifications: n, Unread: unread}
}

// DismissNotification drops one notification; the unread counter goes down
// even when the id is unknown.
func (u *Usecase) DismissNotification(id int64) NotificationsDTO {
	u.store.DismissNotification(id)
	return u.Notifications()
}

func (u *Usecase) ClearNotifications() NotificationsDTO {
	u.store.ClearNotifications()
	return u.Notifications()
}
