package command

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bio33/TeleShare/internal/model"
)

// Button is an inline action attached to a reply. Data is passed back
// verbatim as a callback.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Reply is what the chat bridge shows the user.
type Reply struct {
	Text    string     `json:"text"`
	Buttons [][]Button `json:"buttons,omitempty"`
}

const helpText = `/list - browse all items
/search <terms> - find items by name or description
/my_items - items you currently have
/add_item - register a new item
/my_requests - requests you have made
/pending_requests - requests for your items
/history <item id> - who has had an item
/cancel - abandon the current operation
/help - show this message`

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func renderWelcome(name string) Reply {
	return Reply{Text: fmt.Sprintf("👋 Welcome to TeleShare, %s!\n\nTeleShare keeps track of who has which shared item.\n\n%s", name, helpText)}
}

func renderHelp() Reply {
	return Reply{Text: "📖 Commands:\n\n" + helpText}
}

// renderItems lists items with a request button for every item the caller
// does not own.
func renderItems(title, empty string, items []model.Item, callerID int64) Reply {
	if len(items) == 0 {
		return Reply{Text: empty}
	}

	var b strings.Builder
	var buttons [][]Button
	b.WriteString(title + "\n")
	for _, it := range items {
		fmt.Fprintf(&b, "\n• %s (#%d)\n", it.Name, it.ID)
		if it.Description != "" {
			fmt.Fprintf(&b, "  %s\n", it.Description)
		}
		if it.OwnerID == callerID {
			b.WriteString("  📍 With: you\n")
		} else {
			fmt.Fprintf(&b, "  📍 With: %s\n", it.OwnerName)
			buttons = append(buttons, []Button{{
				Text: "🙋 Request " + it.Name,
				Data: CallbackData(KindRequestItem, it.ID),
			}})
		}
		fmt.Fprintf(&b, "  📅 Added: %s\n", day(it.CreatedAt))
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n"), Buttons: buttons}
}

var statusIcons = map[model.RequestStatus]string{
	model.RequestPending:   "⏳",
	model.RequestAccepted:  "✅",
	model.RequestRejected:  "❌",
	model.RequestCancelled: "↩️",
}

func renderMyRequests(reqs []model.Request) Reply {
	if len(reqs) == 0 {
		return Reply{Text: "You haven't requested anything yet. Browse items with /list."}
	}

	var b strings.Builder
	var buttons [][]Button
	b.WriteString("📋 Your requests:\n")
	for _, r := range reqs {
		fmt.Fprintf(&b, "\n%s #%d %s\n", statusIcons[r.Status], r.ID, r.ItemName)
		fmt.Fprintf(&b, "  From: %s\n", r.OwnerName)
		fmt.Fprintf(&b, "  Status: %s\n", upperFirst(string(r.Status)))
		fmt.Fprintf(&b, "  Requested: %s\n", day(r.CreatedAt))
		if r.Status == model.RequestPending {
			buttons = append(buttons, []Button{{
				Text: fmt.Sprintf("↩️ Withdraw #%d", r.ID),
				Data: CallbackData(KindWithdraw, r.ID),
			}})
		}
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n"), Buttons: buttons}
}

// renderPending lists requests on the caller's items. Stale requests only
// get a reject button.
func renderPending(reqs []model.Request) Reply {
	if len(reqs) == 0 {
		return Reply{Text: "No pending requests for your items."}
	}

	var b strings.Builder
	var buttons [][]Button
	b.WriteString("🔔 Requests for your items:\n")
	for _, r := range reqs {
		fmt.Fprintf(&b, "\n🙋 #%d %s requested by %s\n", r.ID, r.ItemName, r.RequesterName)
		if r.Message != "" {
			fmt.Fprintf(&b, "  Message: %s\n", r.Message)
		}
		fmt.Fprintf(&b, "  Requested: %s\n", day(r.CreatedAt))

		reject := Button{Text: fmt.Sprintf("❌ Reject #%d", r.ID), Data: CallbackData(KindReject, r.ID)}
		if r.Stale {
			b.WriteString("  ⚠️ The item changed hands after this request was made. It can only be rejected.\n")
			buttons = append(buttons, []Button{reject})
			continue
		}
		buttons = append(buttons, []Button{
			{Text: fmt.Sprintf("✅ Accept #%d", r.ID), Data: CallbackData(KindAccept, r.ID)},
			reject,
		})
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n"), Buttons: buttons}
}

func renderHistory(item *model.Item, txs []model.Transaction) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "📜 History of %s (#%d):\n\n", item.Name, item.ID)
	for i, t := range txs {
		when := t.OccurredAt.UTC().Format("2006-01-02 15:04")
		if t.IsRegistration() {
			fmt.Fprintf(&b, "%d. %s registered by %s\n", i+1, when, t.ToUserName)
			continue
		}
		fmt.Fprintf(&b, "%d. %s %s → %s\n", i+1, when, t.FromUserName, t.ToUserName)
	}
	fmt.Fprintf(&b, "\n📍 Now with: %s", item.OwnerName)
	return Reply{Text: b.String()}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
