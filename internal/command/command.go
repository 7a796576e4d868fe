// Package command turns chat input into operations on the catalog, the
// transfer engine and the ledger, and renders their results as chat replies.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bio33/TeleShare/internal/model"
)

// Kind is the fixed set of commands the chat surface understands.
type Kind string

const (
	KindStart           Kind = "start"
	KindHelp            Kind = "help"
	KindMyItems         Kind = "my_items"
	KindAddItem         Kind = "add_item"
	KindList            Kind = "list"
	KindSearch          Kind = "search"
	KindMyRequests      Kind = "my_requests"
	KindPendingRequests Kind = "pending_requests"
	KindHistory         Kind = "history"
	KindCancel          Kind = "cancel"

	// Button callbacks.
	KindRequestItem Kind = "request"
	KindAccept      Kind = "accept"
	KindReject      Kind = "reject"
	KindWithdraw    Kind = "withdraw"

	// KindText is free text answering an open session.
	KindText Kind = "text"
)

// ErrUnknownCommand is returned for slash commands and callbacks that are
// not in the enumeration.
var ErrUnknownCommand = errors.New("unknown command")

var slashCommands = map[string]Kind{
	"start":            KindStart,
	"help":             KindHelp,
	"my_items":         KindMyItems,
	"add_item":         KindAddItem,
	"list":             KindList,
	"search":           KindSearch,
	"my_requests":      KindMyRequests,
	"pending_requests": KindPendingRequests,
	"history":          KindHistory,
	"cancel":           KindCancel,
}

var callbacks = map[string]Kind{
	"request":  KindRequestItem,
	"accept":   KindAccept,
	"reject":   KindReject,
	"withdraw": KindWithdraw,
}

// Command is one parsed chat input. ID is the item or request a command
// targets; Args is the remaining text.
type Command struct {
	Kind Kind
	ID   int64
	Args string
}

// Parse reads a chat message. Messages that do not start with a slash are
// KindText. A "@botname" suffix on the command word is ignored.
func Parse(text string) (Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{Kind: KindText, Args: text}, nil
	}

	word, args, _ := strings.Cut(text[1:], " ")
	word, _, _ = strings.Cut(word, "@")
	kind, ok := slashCommands[strings.ToLower(word)]
	if !ok {
		return Command{}, fmt.Errorf("%w: %w /%s", model.ErrValidation, ErrUnknownCommand, word)
	}

	cmd := Command{Kind: kind, Args: strings.TrimSpace(args)}
	if kind == KindHistory && cmd.Args != "" {
		id, err := parseID(strings.TrimPrefix(cmd.Args, "#"))
		if err != nil {
			return Command{}, err
		}
		cmd.ID = id
	}
	return cmd, nil
}

// ParseCallback reads button data of the form "<action>_<id>".
func ParseCallback(data string) (Command, error) {
	action, rawID, ok := strings.Cut(strings.TrimSpace(data), "_")
	kind, known := callbacks[action]
	if !ok || !known {
		return Command{}, fmt.Errorf("%w: %w %q", model.ErrValidation, ErrUnknownCommand, data)
	}
	id, err := parseID(rawID)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: kind, ID: id}, nil
}

// CallbackData is the inverse of ParseCallback.
func CallbackData(kind Kind, id int64) string {
	return string(kind) + "_" + strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", model.ErrValidation, s)
	}
	return id, nil
}
