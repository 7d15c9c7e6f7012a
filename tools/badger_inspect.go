// Command badger_inspect dumps the relay's badger keyspace as a table.
// Useful to eyeball what a running (or crashed) instance persisted:
//
//	go run ./tools -db /tmp/chat-relay -prefix msg:
//
// Known prefixes: identity:addr:, identity:id:, conv:pair:, conv:id:,
// conv:member:, msg:.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Timestamp", "Entity ID", "Detail"})
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
			err := item.Value(func(v []byte) error {
				table.Append(toRow(string(item.Key()), v))
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

// toRow renders one entry. Document keys hold cbor maps; lookup keys hold the
// target id as plain bytes; membership index keys hold nothing.
func toRow(key string, val []byte) []string {
	parts := strings.Split(key, ":")
	kind := strings.ToUpper(parts[0])
	timestamp := "--:--:--"
	entityID := "--------"
	detail := fmt.Sprintf("%d bytes", len(val))

	switch {
	case strings.HasPrefix(key, "msg:") && len(parts) >= 4:
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			timestamp = time.Unix(0, tsNano).UTC().Format("15:04:05")
		}
		entityID = shortID(parts[3])
	case strings.HasPrefix(key, "identity:id:") || strings.HasPrefix(key, "conv:id:"):
		entityID = shortID(parts[2])
	case strings.HasPrefix(key, "identity:addr:") || strings.HasPrefix(key, "conv:pair:"):
		// Lookup entry: the value is the id of the document it points to.
		return []string{key, kind + " LOOKUP", timestamp, shortID(string(val)), detail}
	case strings.HasPrefix(key, "conv:member:") && len(parts) >= 4:
		return []string{key, "MEMBER INDEX", timestamp, shortID(parts[3]), "-"}
	}

	var doc map[string]any
	if err := cbor.Unmarshal(val, &doc); err == nil {
		detail = docSummary(doc)
	}
	return []string{key, kind, timestamp, entityID, detail}
}

func docSummary(doc map[string]any) string {
	for _, field := range []string{"body", "last_message_preview", "display_name"} {
		if v, ok := doc[field].(string); ok && v != "" {
			return field + "=" + strconv.Quote(v)
		}
	}
	return fmt.Sprintf("%d fields", len(doc))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// A dirty shutdown leaves a value log needing truncation; a plain
		// write open repairs it, after which read-only works again.
		if strings.Contains(err.Error(), "Log truncate required") {
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
