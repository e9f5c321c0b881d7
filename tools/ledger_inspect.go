package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"

	"chatsphere/domain"
)

// Offline inspector for the engine's store. Scans a key prefix and prints
// one table row per document: rooms, per-user violation ledgers, or the
// supplemental messages of the permanent rooms.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "ledger:", "Prefix to scan (room:, ledger:, official:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Entity ID", "Status", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(key string, val []byte) []string {
	switch {
	case strings.HasPrefix(key, "room:"):
		var room domain.Room
		if err := json.Unmarshal(val, &room); err != nil {
			return rawRow(key, val)
		}
		kind := string(room.Type)
		if room.IsOfficial {
			kind = "official"
		}
		return []string{key, "ROOM", room.ID, kind,
			fmt.Sprintf("%s host=%s participants=%d kicked=%d",
				room.Name, room.HostID, len(room.Participants), len(room.KickedIDs))}

	case strings.HasPrefix(key, "ledger:"):
		var history domain.ViolationHistory
		if err := json.Unmarshal(val, &history); err != nil {
			return rawRow(key, val)
		}
		return []string{key, "LEDGER", history.UserID, renderStatus(history.Status),
			fmt.Sprintf("violations=%d warnings=%d mutes=%d bans=%d",
				len(history.Violations), history.WarningCount, history.MuteCount, history.BanCount)}

	case strings.HasPrefix(key, "official:"):
		var msg domain.Message
		if err := json.Unmarshal(val, &msg); err != nil {
			return rawRow(key, val)
		}
		return []string{key, "MESSAGE", msg.SenderID, msg.SentAt.UTC().Format("15:04:05"), msg.Text}

	default:
		return rawRow(key, val)
	}
}

func rawRow(key string, val []byte) []string {
	return []string{key, "RAW", "--------", "-", fmt.Sprintf("Size: %d bytes", len(val))}
}

// renderStatus colorizes the moderation status so banned users jump out of
// a long scan.
func renderStatus(status domain.UserStatus) string {
	switch status {
	case domain.StatusBanned:
		return color.New(color.FgRed).Render(string(status))
	case domain.StatusMuted:
		return color.New(color.FgYellow).Render(string(status))
	case domain.StatusWarning:
		return color.New(color.FgCyan).Render(string(status))
	default:
		return color.New(color.FgGreen).Render(string(status))
	}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			// Open in write mode once to let Badger truncate, then reopen
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
