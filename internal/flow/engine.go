package flow

import (
	"context"
	"log/slog"

	"github.com/gremialdev/memberflow/internal/bus"
	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
	"github.com/gremialdev/memberflow/internal/store"
)

// Gateway is the remote backend surface the watchers call. All operations
// are asynchronous, single-attempt calls; timeouts live below this layer.
type Gateway interface {
	Login(ctx context.Context, username, password string) (models.AuthResult, error)
	Logout(ctx context.Context) error
	GetUser(ctx context.Context, id int64) (models.User, error)
	UpdateUser(ctx context.Context, id int64, values map[string]string) (*models.User, error)
	ChangeUserPass(ctx context.Context, current, newPass string) error
	ResetUserPass(ctx context.Context, email string) error
	SetEnrollment(ctx context.Context, values map[string]string) error
	SetComplaintFile(ctx context.Context, photo models.Photo) (string, error)
	PatchComplaint(ctx context.Context, values map[string]string, fileIDs []string) (*models.Complaint, error)
	GetComplaints(ctx context.Context) ([]models.Complaint, error)
	GetInformation(ctx context.Context) (models.Information, error)
	GetNews(ctx context.Context) ([]models.NewsItem, error)
	GetAlerts(ctx context.Context) ([]models.Alert, error)
	SetAlert(ctx context.Context, alert models.Alert) error
	RegisterDeviceToken(ctx context.Context, token string) error
	GetDocuments(ctx context.Context) ([]models.Document, error)
	GetDocument(ctx context.Context, id int64) (models.Document, error)
	GetComplaintImages(ctx context.Context, complaintID string) ([]models.Image, error)
	NewPassword(ctx context.Context, token, password string) error
}

// Engine runs one long-lived watcher per request event kind. Each watcher
// processes its events strictly sequentially; the only cross-kind
// interactions are the login-vs-logout race and the supersede discipline of
// the complaint-list and information refreshes.
type Engine struct {
	bus       *bus.Bus
	gateway   Gateway
	store     store.Store
	app       *AppContext
	notifier  notify.Notifier
	navigator notify.Navigator
}

// NewEngine wires the engine to its collaborators.
func NewEngine(b *bus.Bus, gw Gateway, st store.Store, app *AppContext, notifier notify.Notifier, navigator notify.Navigator) *Engine {
	return &Engine{
		bus:       b,
		gateway:   gw,
		store:     st,
		app:       app,
		notifier:  notifier,
		navigator: navigator,
	}
}

// Start launches every watcher goroutine. Watchers stop when ctx is
// cancelled or the bus is closed.
func (e *Engine) Start(ctx context.Context) {
	slog.Info("Engine.Start: launching watchers")
	go e.authWatcher(ctx)
	go e.watchKind(ctx, models.EventUpdateUser, e.handleUpdateUser)
	go e.watchKind(ctx, models.EventGetUser, e.handleGetUser)
	go e.watchKind(ctx, models.EventSetEnrollment, e.handleEnrollment)
	go e.watchKind(ctx, models.EventSetComplaint, e.handleComplaint)
	go e.watchKind(ctx, models.EventChangeUserPass, e.handleChangePass)
	go e.watchKind(ctx, models.EventResetUserPass, e.handleResetPass)
	go e.watchKind(ctx, models.EventSetAlert, e.handleSetAlert)
	go e.watchKind(ctx, models.EventSetDeviceToken, e.handleDeviceToken)
	go e.watchKind(ctx, models.EventGetNews, e.handleGetNews)
	go e.watchKind(ctx, models.EventGetAlerts, e.handleGetAlerts)
	go e.watchKind(ctx, models.EventGetDocuments, e.handleGetDocuments)
	go e.watchKind(ctx, models.EventNewPassword, e.handleNewPassword)
	go e.watchLatest(ctx, models.EventGetComplaints, e.handleGetComplaints)
	go e.watchLatest(ctx, models.EventGetInformation, e.handleGetInformation)
	go e.watchLatest(ctx, models.EventGetDocument, e.handleGetDocument)
	go e.watchLatest(ctx, models.EventGetComplaintImages, e.handleComplaintImages)
}

// watchKind is the plain watcher loop: one event at a time, strictly
// sequential, each iteration wrapped in a recovery boundary so a panic
// never terminates the watcher.
func (e *Engine) watchKind(ctx context.Context, kind models.EventKind, handle func(ctx context.Context, ev models.Event)) {
	ch := e.bus.Events(kind)
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Engine.watchKind: context cancelled", "kind", kind)
			return
		case ev, ok := <-ch:
			if !ok {
				slog.Debug("Engine.watchKind: bus closed", "kind", kind)
				return
			}
			e.safely(kind, func() { handle(ctx, ev) })
		}
	}
}

// watchLatest is the supersede-in-flight watcher loop: a new event of the
// same kind cancels the running instance, whose result must be discarded.
func (e *Engine) watchLatest(ctx context.Context, kind models.EventKind, handle func(ctx context.Context, ev models.Event)) {
	ch := e.bus.Events(kind)
	for {
		var ev models.Event
		select {
		case <-ctx.Done():
			return
		case next, ok := <-ch:
			if !ok {
				return
			}
			ev = next
		}

		for {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func(ev models.Event) {
				defer close(done)
				e.safely(kind, func() { handle(runCtx, ev) })
			}(ev)

			var superseded bool
			select {
			case next, ok := <-ch:
				cancel()
				<-done
				if !ok {
					return
				}
				slog.Debug("Engine.watchLatest: in-flight instance superseded", "kind", kind)
				ev = next
				superseded = true
			case <-done:
				cancel()
			}
			if !superseded {
				break
			}
		}
	}
}

// safely runs one watcher iteration inside a terminal error boundary. A
// panic is logged and swallowed; the loop continues with the next event.
func (e *Engine) safely(kind models.EventKind, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Engine.safely: watcher iteration panicked", "kind", kind, "panic", r)
		}
	}()
	fn()
}
