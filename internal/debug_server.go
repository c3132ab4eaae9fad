package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dgraph-io/badger/v4"
)

type InspectRow struct {
	Key   string          `json:"key"`
	Size  int             `json:"size"`
	Value json.RawMessage `json:"value,omitempty"`
}

type StatsProvider func() map[string]any

// StartDebugServer exposes a read-only window into the store and the
// realtime counters. Values are stored as JSON, so rows embed them
// verbatim; anything that fails to parse is reported by size only.
func StartDebugServer(log *slog.Logger, db *badger.DB, port int, statsProvider StatsProvider) {
	mux := http.NewServeMux()

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "notif:"
		}

		var rows []InspectRow
		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					row := InspectRow{Key: string(item.Key()), Size: len(val)}
					if json.Valid(val) {
						row.Value = append(json.RawMessage{}, val...)
					}
					rows = append(rows, row)
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"prefix": prefix,
			"items":  rows,
		})
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		stats := map[string]any{}
		if statsProvider != nil {
			stats = statsProvider()
		}
		_ = json.NewEncoder(w).Encode(stats)
	})

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		log.Info("Debug server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("Debug server stopped", "error", err)
		}
	}()
}
