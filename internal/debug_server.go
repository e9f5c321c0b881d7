package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

var (
	resumeChan  = make(chan struct{}, 1)
	currentPort int
)

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Namespace string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// Inspect starts the debug server, runs fn, then blocks until an operator
// hits /resume. Tests use it to pause on a populated store.
func Inspect(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider, prefix string, fn func()) {
	StartDebugServer(db, port, endpoint, mapper, statsProvider)

	if fn != nil {
		fn()
	}

	Wait(prefix)
}

// StartDebugServer serves a read-only HTML view over the store. The prefix
// query parameter selects the key namespace, defaulting to rooms.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	currentPort = port
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "room:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/resume", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-resumeChan:
		default:
		}
		resumeChan <- struct{}{}
		fmt.Fprint(w, "RESUMED")
	})

	go func() {
		// Listen on all interfaces so the page is reachable over the network
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

func Wait(prefix string) {
	url := fmt.Sprintf("http://localhost:%d/inspect?prefix=%s", currentPort, prefix)
	fmt.Printf("\n--- PAUSED ---\n\n%s\n\n--------------\n", url)
	<-resumeChan
}

// DefaultMapper understands the engine's key schemes:
//
//	room:{id}
//	ledger:{user_id}
//	official:{room_id}:{timestamp}:{uuid}
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Namespace: "default",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
	if len(parts) == 0 {
		return row
	}
	row.Namespace = parts[0]

	switch parts[0] {
	case "room", "ledger":
		if len(parts) >= 2 {
			row.Type = strings.ToUpper(parts[0])
			row.EntityID = parts[1]
			row.Detail = summarizeJSON(val)
		}
	case "official":
		if len(parts) >= 4 {
			row.Type = "MESSAGE"
			row.EntityID = parts[1]
			if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
				row.Timestamp = time.Unix(0, tsNano).UTC().Format("15:04:05")
			}
			row.Detail = summarizeJSON(val)
		}
	}
	if len(row.EntityID) > 12 {
		row.EntityID = row.EntityID[:12]
	}
	return row
}

func summarizeJSON(val []byte) string {
	var doc map[string]any
	if err := json.Unmarshal(val, &doc); err != nil {
		return "Size: " + strconv.Itoa(len(val)) + " bytes"
	}
	for _, field := range []string{"name", "text", "status"} {
		if v, ok := doc[field].(string); ok && v != "" {
			return field + ": " + v
		}
	}
	return "Fields: " + strconv.Itoa(len(doc))
}
