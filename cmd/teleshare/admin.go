package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bio33/TeleShare/internal/auth"
	"github.com/bio33/TeleShare/internal/db"
	"github.com/bio33/TeleShare/internal/ledger"
	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// openExisting opens a database that must already exist, so read-only
// commands do not leave an empty file behind a mistyped path.
func openExisting(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("database %s does not exist", path)
		}
		return nil, fmt.Errorf("checking database: %w", err)
	}
	return db.Open(path)
}

// historyFormats are the output formats of the history command.
var historyFormats = []string{"text", "json", "yaml"}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history <item-id>",
		Short: "Print an item's ownership history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
			if err != nil || itemID <= 0 {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			database, err := openExisting(opts.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			item, err := store.GetItem(cmd.Context(), database, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("item %d not found", itemID)
			}

			txs, err := ledger.Collect(ledger.History(cmd.Context(), database, itemID))
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), format, item, txs)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text|json|yaml)")
	return cmd
}

// historyDoc is the machine-readable history of one item.
type historyDoc struct {
	Item    string              `json:"item" yaml:"item"`
	ItemID  int64               `json:"item_id" yaml:"item_id"`
	OwnerID int64               `json:"owner_id" yaml:"owner_id"`
	Entries []model.Transaction `json:"entries" yaml:"entries"`
}

func writeHistory(w io.Writer, format string, item *model.Item, txs []model.Transaction) error {
	doc := historyDoc{Item: item.Name, ItemID: item.ID, OwnerID: item.OwnerID, Entries: txs}
	if doc.Entries == nil {
		doc.Entries = []model.Transaction{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		fmt.Fprintf(w, "#%d %s (owner %d)\n", item.ID, item.Name, item.OwnerID)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWHEN\tFROM\tTO\tREQUEST")
		for _, t := range txs {
			from, req := "-", "-"
			if t.FromUserID != nil {
				from = strconv.FormatInt(*t.FromUserID, 10)
			}
			if t.RequestID != nil {
				req = strconv.FormatInt(*t.RequestID, 10)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", t.ID, t.OccurredAt.UTC().Format(time.RFC3339), from, t.ToUserID, req)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("invalid format %q: must be one of %v", format, historyFormats)
	}
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every item's ownership history for consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openExisting(opts.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			broken, err := ledger.VerifyAll(cmd.Context(), database)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ce := range broken {
				fmt.Fprintln(out, ce.Error())
			}
			if len(broken) > 0 {
				return fmt.Errorf("%d item histories are inconsistent", len(broken))
			}
			fmt.Fprintln(out, "All item histories are consistent.")
			return nil
		},
	}
}

func newBridgeKeyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bridge-key",
		Short: "Generate a new key for the chat bridge",
		Long: `Generate a new key for the chat bridge and store its hash.
Any previous key stops working. The key is printed once and cannot be recovered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(opts.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return err
			}

			key, err := auth.GenerateBridgeKey()
			if err != nil {
				return err
			}
			hash, err := auth.HashBridgeKey(key)
			if err != nil {
				return err
			}
			if err := store.SetSetting(cmd.Context(), database, store.SettingBridgeKeyHash, hash); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Bridge key:")
			fmt.Fprintf(out, "  %s\n", key)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Save this key. It cannot be recovered.")
			return nil
		},
	}
}
