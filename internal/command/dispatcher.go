package command

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bio33/TeleShare/internal/catalog"
	"github.com/bio33/TeleShare/internal/ledger"
	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/session"
	"github.com/bio33/TeleShare/internal/store"
	"github.com/bio33/TeleShare/internal/transfer"
	"github.com/bio33/TeleShare/internal/validate"
)

// Session fields.
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldItemID      = "item_id"
	fieldMessage     = "message"
)

const skipWord = "skip"

// Identity is the caller as the messaging gateway knows them.
type Identity struct {
	ID        int64  `json:"id" validate:"gt=0"`
	Username  string `json:"username" validate:"max=64"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
}

// Dispatcher maps each command kind to exactly one operation. Domain
// errors become reply text; store failures are returned.
type Dispatcher struct {
	db       *sql.DB
	catalog  *catalog.Service
	engine   *transfer.Engine
	sessions *session.Store
	now      func() time.Time
}

// NewDispatcher wires a Dispatcher.
func NewDispatcher(db *sql.DB, c *catalog.Service, e *transfer.Engine, s *session.Store) *Dispatcher {
	return &Dispatcher{db: db, catalog: c, engine: e, sessions: s, now: time.Now}
}

// RegisterAccount creates or refreshes the caller's user row. It is
// idempotent.
func (d *Dispatcher) RegisterAccount(ctx context.Context, id Identity) (*model.User, error) {
	if err := validate.Struct(id); err != nil {
		return nil, err
	}
	name := model.DisplayName(id.ID, id.Username, id.FirstName, id.LastName)
	return store.UpsertUser(ctx, d.db, id.ID, strings.TrimSpace(id.Username), name, d.now())
}

// HandleText handles a chat message from callerID.
func (d *Dispatcher) HandleText(ctx context.Context, callerID int64, text string) (Reply, error) {
	cmd, err := Parse(text)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			return Reply{Text: "🤔 I don't know that command. Use /help to see what I can do."}, nil
		}
		return d.failure(err)
	}
	return d.Execute(ctx, callerID, cmd)
}

// HandleCallback handles a button press from callerID.
func (d *Dispatcher) HandleCallback(ctx context.Context, callerID int64, data string) (Reply, error) {
	cmd, err := ParseCallback(data)
	if err != nil {
		return d.failure(err)
	}
	return d.Execute(ctx, callerID, cmd)
}

// Execute runs cmd on behalf of callerID.
func (d *Dispatcher) Execute(ctx context.Context, callerID int64, cmd Command) (Reply, error) {
	switch cmd.Kind {
	case KindStart:
		name := "there"
		u, err := store.GetUser(ctx, d.db, callerID)
		if err != nil {
			return Reply{}, err
		}
		if u != nil {
			name = u.DisplayName
		}
		return renderWelcome(name), nil

	case KindHelp:
		return renderHelp(), nil

	case KindList:
		items, err := d.catalog.List(ctx)
		if err != nil {
			return d.failure(err)
		}
		return renderItems("📦 All items:", "No items registered yet. Add one with /add_item.", items, callerID), nil

	case KindSearch:
		items, err := d.catalog.Search(ctx, cmd.Args)
		if err != nil {
			return d.failure(err)
		}
		if cmd.Args == "" {
			return renderItems("📦 All items:", "No items registered yet. Add one with /add_item.", items, callerID), nil
		}
		return renderItems(
			fmt.Sprintf("🔍 Results for '%s':", cmd.Args),
			fmt.Sprintf("❌ Nothing matches '%s'. Try other terms or browse with /list.", cmd.Args),
			items, callerID), nil

	case KindMyItems:
		items, err := d.catalog.ListOwnedBy(ctx, callerID)
		if err != nil {
			return d.failure(err)
		}
		return renderItems("📦 Your items:", "You don't have any items. Register one with /add_item.", items, callerID), nil

	case KindAddItem:
		if cmd.Args != "" {
			s := d.sessions.Start(callerID, session.KindAddItem, []string{fieldName, fieldDescription},
				map[string]string{fieldName: cmd.Args})
			return Reply{Text: describePrompt(s.Value(fieldName))}, nil
		}
		d.sessions.Start(callerID, session.KindAddItem, []string{fieldName, fieldDescription}, nil)
		return Reply{Text: "📝 What is the name of the item?\n(Send /cancel to stop.)"}, nil

	case KindMyRequests:
		reqs, err := d.engine.ListByRequester(ctx, callerID)
		if err != nil {
			return d.failure(err)
		}
		return renderMyRequests(reqs), nil

	case KindPendingRequests:
		reqs, err := d.engine.ListPendingForOwner(ctx, callerID)
		if err != nil {
			return d.failure(err)
		}
		return renderPending(reqs), nil

	case KindHistory:
		if cmd.ID == 0 {
			return Reply{Text: "Usage: /history <item id>"}, nil
		}
		item, err := d.catalog.Get(ctx, cmd.ID)
		if err != nil {
			return d.failure(err)
		}
		txs, err := ledger.Collect(ledger.History(ctx, d.db, cmd.ID))
		if err != nil {
			return d.failure(err)
		}
		return renderHistory(item, txs), nil

	case KindCancel:
		if d.sessions.Cancel(callerID) == 0 {
			return Reply{Text: "Nothing to cancel."}, nil
		}
		return Reply{Text: "Operation cancelled."}, nil

	case KindRequestItem:
		item, err := d.catalog.Get(ctx, cmd.ID)
		if err != nil {
			return d.failure(err)
		}
		if item.OwnerID == callerID {
			return Reply{Text: fmt.Sprintf("❌ You already have %s.", item.Name)}, nil
		}
		d.sessions.Start(callerID, session.KindRequest, []string{fieldItemID, fieldMessage},
			map[string]string{fieldItemID: strconv.FormatInt(item.ID, 10)})
		return Reply{Text: fmt.Sprintf(
			"📝 You're requesting %s from %s.\n\nSend a message to include with your request, or '%s' to send it without one.",
			item.Name, item.OwnerName, skipWord)}, nil

	case KindAccept, KindReject:
		decision := model.DecisionAccept
		if cmd.Kind == KindReject {
			decision = model.DecisionReject
		}
		req, err := d.engine.Resolve(ctx, callerID, cmd.ID, decision)
		if err != nil {
			return d.failure(err)
		}
		if decision == model.DecisionAccept {
			return Reply{Text: fmt.Sprintf("✅ Accepted. %s now has %s.", req.RequesterName, req.ItemName)}, nil
		}
		return Reply{Text: fmt.Sprintf("❌ Rejected %s's request for %s.", req.RequesterName, req.ItemName)}, nil

	case KindWithdraw:
		req, err := d.engine.Cancel(ctx, callerID, cmd.ID)
		if err != nil {
			return d.failure(err)
		}
		return Reply{Text: fmt.Sprintf("↩️ You withdrew your request for %s.", req.ItemName)}, nil

	case KindText:
		return d.continueSession(ctx, callerID, cmd.Args)

	default:
		return Reply{}, fmt.Errorf("%w: unhandled command kind %q", model.ErrValidation, cmd.Kind)
	}
}

func (d *Dispatcher) continueSession(ctx context.Context, callerID int64, text string) (Reply, error) {
	s, ok := d.sessions.Active(callerID)
	if !ok {
		return Reply{Text: "Use /help to see what I can do."}, nil
	}

	field, _ := s.Missing()
	value := strings.TrimSpace(text)
	switch {
	case field == fieldName && value == "":
		return Reply{Text: "❌ The name cannot be empty. What is the name of the item?"}, nil
	case (field == fieldDescription || field == fieldMessage) && strings.EqualFold(value, skipWord):
		value = ""
	}

	s, err := d.sessions.Fill(s, value)
	if err != nil {
		return Reply{Text: "⌛ That conversation expired. Please start again."}, nil
	}
	if !s.Complete() {
		return Reply{Text: describePrompt(s.Value(fieldName))}, nil
	}
	d.sessions.End(s)

	switch s.Kind {
	case session.KindAddItem:
		item, err := d.catalog.Register(ctx, callerID, s.Value(fieldName), s.Value(fieldDescription))
		if err != nil {
			return d.failure(err)
		}
		return Reply{Text: fmt.Sprintf(
			"✅ Added %s. You are now its owner.\nOthers can find it with /search %s", item.Name, item.Name)}, nil

	case session.KindRequest:
		itemID, err := strconv.ParseInt(s.Value(fieldItemID), 10, 64)
		if err != nil {
			return d.failure(fmt.Errorf("%w: bad item id in session", model.ErrValidation))
		}
		req, err := d.engine.CreateRequest(ctx, callerID, itemID, s.Value(fieldMessage))
		if err != nil {
			return d.failure(err)
		}
		return Reply{Text: fmt.Sprintf(
			"✅ Your request for %s was sent to %s.\nCheck its status anytime with /my_requests", req.ItemName, req.OwnerName)}, nil
	}
	return Reply{}, fmt.Errorf("%w: unhandled session kind %q", model.ErrValidation, s.Kind)
}

func describePrompt(name string) string {
	return fmt.Sprintf("Great! Now send a description for %s, or '%s' to leave it empty.", name, skipWord)
}

// failure renders domain errors for the user and passes anything else up.
func (d *Dispatcher) failure(err error) (Reply, error) {
	if msg, ok := UserMessage(err); ok {
		return Reply{Text: msg}, nil
	}
	return Reply{}, err
}

// UserMessage turns a domain error into chat text. It reports false for
// store and unexpected errors.
func UserMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, model.ErrStaleRequest):
		return "⚠️ " + detail(err, model.ErrStaleRequest) + ". The item already changed hands, so this request can only be rejected.", true
	case errors.Is(err, model.ErrNotFound):
		return "❌ " + detail(err, model.ErrNotFound) + " was not found.", true
	case errors.Is(err, model.ErrAuthorization):
		return "⛔ " + detail(err, model.ErrAuthorization) + ".", true
	case errors.Is(err, model.ErrInvalidState):
		return "❌ " + detail(err, model.ErrInvalidState) + ".", true
	case errors.Is(err, model.ErrDuplicateRequest):
		return "❌ " + detail(err, model.ErrDuplicateRequest) + ". Check it with /my_requests.", true
	case errors.Is(err, model.ErrSelfRequest):
		return "❌ " + detail(err, model.ErrSelfRequest) + ".", true
	case errors.Is(err, model.ErrValidation):
		return "❌ " + detail(err, model.ErrValidation) + ".", true
	}
	return "", false
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		msg = msg[i+len(prefix):]
	}
	return upperFirst(strings.TrimSuffix(msg, "."))
}
