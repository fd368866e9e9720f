package main

import (
	"chat-broadcaster/repositories"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// inspect dumps the chat log or the user table of a Badger directory.
// It opens the store read-only so it can run next to a live server.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", repositories.MessagePrefix, "Prefix to scan (msg: or user:)")
	limit := flag.Int("limit", 0, "Maximum number of rows, 0 for all")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := newTable(*prefix)
	rows, err := scan(db, *prefix, *limit, table.Append)
	if err != nil {
		log.Fatal(err)
	}
	table.Render()
	fmt.Printf("%d row(s)\n", rows)
}

func newTable(prefix string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	if prefix == repositories.UserPrefix {
		table.SetHeader([]string{"Key", "User ID", "Name"})
	} else {
		table.SetHeader([]string{"Key", "ID", "User", "Name", "Time", "Text"})
	}
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
	return table
}

func scan(db *badger.DB, prefix string, limit int, appendRow func([]string)) (int, error) {
	rows := 0
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			if limit > 0 && rows >= limit {
				return nil
			}
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				row, err := toRow(prefix, key, v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", key, err)
					return nil
				}
				appendRow(row)
				rows++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

func toRow(prefix, key string, value []byte) ([]string, error) {
	if prefix == repositories.UserPrefix {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, repositories.UserPrefix), 10, 64)
		if err != nil {
			return nil, err
		}
		return []string{key, strconv.FormatInt(id, 10), string(value)}, nil
	}

	message, err := repositories.DecodeMessage(value)
	if err != nil {
		return nil, err
	}
	text := message.Text
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	return []string{
		key,
		strconv.FormatInt(int64(message.ID), 10),
		strconv.FormatInt(int64(message.UserID), 10),
		message.UserName,
		message.CreatedAt.Format(time.DateTime),
		text,
	}, nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
