// Package cleanup implements the guarded multi-step deletion workflow:
// an admin picks what to remove (preset window, last-N entries, or a
// custom date range), sees a preview of exactly what will go, and must
// confirm before anything is deleted.
package cleanup

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"k9log/internal/ledger"
)

// State of one identity's cleanup session.
type State int

const (
	StateChoosingOption State = iota
	StateAwaitingStartDate
	StateAwaitingEndDate
	StatePreviewShown
)

// Option is the deletion scope chosen at the first step.
type Option int

const (
	OptionLast7Days Option = iota + 1
	OptionLast30Days
	OptionLast10Entries
	OptionCustomRange
)

const lastEntriesCount = 10

// Reply is what the transport should send back to the operator.
// Ignored means the input was not admissible in the current state and
// nothing should be sent; Terminal means the session has ended.
type Reply struct {
	Text     string
	Terminal bool
	Ignored  bool
}

type session struct {
	state    State
	option   Option
	start    time.Time
	hasStart bool

	// deletion target, fixed once the preview is shown
	byIDs    bool
	ids      []uint
	from, to time.Time
	count    int
}

// Workflow holds one session per initiating identity. Sessions are
// keyed by the opaque caller id the transport supplies.
type Workflow struct {
	mu       sync.Mutex
	store    ledger.Store
	isAdmin  func(identity string) bool
	log      *slog.Logger
	now      func() time.Time
	sessions map[string]*session
}

func New(store ledger.Store, isAdmin func(string) bool, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{
		store:    store,
		isAdmin:  isAdmin,
		log:      log.With("component", "cleanup"),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Active reports whether identity has a live session, so the transport
// knows to route free-text input here.
func (w *Workflow) Active(identity string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.sessions[identity]
	return ok
}

// Start opens a session and presents the options. Non-admins are denied
// and no session is created.
func (w *Workflow) Start(identity string) Reply {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isAdmin(identity) {
		w.log.Warn("cleanup denied", "identity", identity)
		return Reply{Text: ledger.ErrNotAdmin.Error(), Terminal: true}
	}
	w.sessions[identity] = &session{state: StateChoosingOption}
	return Reply{Text: optionsPrompt}
}

const optionsPrompt = "Clean up the detailed report. Choose what to remove:\n" +
	"1 - Last 7 days\n" +
	"2 - Last 30 days\n" +
	"3 - Last 10 entries\n" +
	"4 - Custom date range\n" +
	"Send the number of an option, or 'cancel' to abort."

// Handle advances the session with one operator input. The admin check
// is repeated on every step; the confirm step is the real safety
// boundary for a role that changed mid-session.
func (w *Workflow) Handle(identity, input string) Reply {
	w.mu.Lock()
	defer w.mu.Unlock()

	sess, ok := w.sessions[identity]
	if !ok {
		return Reply{Ignored: true}
	}
	if !w.isAdmin(identity) {
		delete(w.sessions, identity)
		w.log.Warn("cleanup denied mid-session", "identity", identity)
		return Reply{Text: ledger.ErrNotAdmin.Error(), Terminal: true}
	}

	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "cancel") {
		delete(w.sessions, identity)
		return Reply{Text: "Cleanup cancelled. Nothing was deleted.", Terminal: true}
	}

	switch sess.state {
	case StateChoosingOption:
		return w.chooseOption(identity, sess, input)
	case StateAwaitingStartDate:
		return w.receiveStartDate(sess, input)
	case StateAwaitingEndDate:
		return w.receiveEndDate(identity, sess, input)
	case StatePreviewShown:
		return w.resolvePreview(identity, sess, input)
	}
	return Reply{Ignored: true}
}

func (w *Workflow) chooseOption(identity string, sess *session, input string) Reply {
	switch input {
	case "1":
		sess.option = OptionLast7Days
		return w.previewRange(identity, sess, w.now().AddDate(0, 0, -7), w.now())
	case "2":
		sess.option = OptionLast30Days
		return w.previewRange(identity, sess, w.now().AddDate(0, 0, -30), w.now())
	case "3":
		sess.option = OptionLast10Entries
		return w.previewRecent(identity, sess)
	case "4":
		sess.option = OptionCustomRange
		sess.state = StateAwaitingStartDate
		return Reply{Text: "Enter the start date (YYYY-MM-DD):"}
	default:
		return Reply{Text: "Please send 1, 2, 3 or 4, or 'cancel' to abort."}
	}
}

func (w *Workflow) receiveStartDate(sess *session, input string) Reply {
	start, err := ledger.ParseDate(input)
	if err != nil {
		return Reply{Text: fmt.Sprintf("'%s' is not a valid date. Enter the start date as YYYY-MM-DD:", input)}
	}
	sess.start = start
	sess.hasStart = true
	sess.state = StateAwaitingEndDate
	return Reply{Text: "Enter the end date (YYYY-MM-DD):"}
}

func (w *Workflow) receiveEndDate(identity string, sess *session, input string) Reply {
	end, err := ledger.ParseDate(input)
	if err != nil {
		return Reply{Text: fmt.Sprintf("'%s' is not a valid date. Enter the end date as YYYY-MM-DD:", input)}
	}
	if end.Before(sess.start) {
		return Reply{Text: fmt.Sprintf(
			"The end date is before the start date (%s). Enter an end date on or after it:",
			sess.start.Format("2006-01-02"))}
	}
	return w.previewRange(identity, sess, sess.start, end)
}

func (w *Workflow) previewRange(identity string, sess *session, from, to time.Time) Reply {
	entries, err := w.store.EntriesInRange(from, to)
	if err != nil {
		return w.failSession(identity, "preview", err)
	}
	if len(entries) == 0 {
		delete(w.sessions, identity)
		return Reply{Text: "No entries found in that range. Nothing to clean up.", Terminal: true}
	}
	sess.byIDs = false
	sess.from, sess.to = from, to
	sess.count = len(entries)
	sess.state = StatePreviewShown
	return Reply{Text: buildPreview(entries).render()}
}

func (w *Workflow) previewRecent(identity string, sess *session) Reply {
	entries, err := w.store.RecentEntries(lastEntriesCount)
	if err != nil {
		return w.failSession(identity, "preview", err)
	}
	if len(entries) == 0 {
		delete(w.sessions, identity)
		return Reply{Text: "The log is empty. Nothing to clean up.", Terminal: true}
	}
	sess.byIDs = true
	sess.ids = make([]uint, len(entries))
	for i, e := range entries {
		sess.ids[i] = e.ID
	}
	sess.count = len(entries)
	sess.state = StatePreviewShown
	return Reply{Text: buildPreview(entries).render()}
}

func (w *Workflow) resolvePreview(identity string, sess *session, input string) Reply {
	switch strings.ToLower(input) {
	case "yes", "y":
		delete(w.sessions, identity)
		var deleted int64
		var err error
		if sess.byIDs {
			deleted, err = w.store.DeleteByIDs(sess.ids)
		} else {
			deleted, err = w.store.DeleteRange(sess.from, sess.to)
		}
		if err != nil {
			w.log.Error("cleanup deletion failed", "identity", identity, "error", err)
			return Reply{Text: fmt.Sprintf("Failed to clean up: %v", err), Terminal: true}
		}
		w.log.Info("cleanup completed", "identity", identity, "option", int(sess.option), "deleted", deleted)
		return Reply{Text: fmt.Sprintf("Deleted %d entries.", deleted), Terminal: true}
	case "no", "n":
		delete(w.sessions, identity)
		return Reply{Text: "Cleanup cancelled. Nothing was deleted.", Terminal: true}
	default:
		// Anything else leaves the preview standing.
		return Reply{Ignored: true}
	}
}

func (w *Workflow) failSession(identity, op string, err error) Reply {
	delete(w.sessions, identity)
	w.log.Error("cleanup aborted", "op", op, "identity", identity, "error", err)
	return Reply{Text: fmt.Sprintf("Failed to read the report: %v", err), Terminal: true}
}
