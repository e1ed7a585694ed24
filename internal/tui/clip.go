package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/search"
)

// copySelection copies the chosen message or export path, printing it
// instead when no clipboard is available.
func copySelection(db *index.DB, r search.Result) error {
	text, err := selectionText(db, r)
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Println(text)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", firstLine(text))
	return nil
}

// selectionText is "sender: body" for a message, the body alone for a group
// notification and the file path for an export row.
func selectionText(db *index.DB, r search.Result) (string, error) {
	if r.Idx < 0 {
		export, err := db.GetExportByKey(r.ExportKey)
		if err != nil {
			return "", fmt.Errorf("get export: %w", err)
		}
		if export == nil {
			return "", fmt.Errorf("export not found: %s", r.ExportKey)
		}
		return export.FilePath, nil
	}

	msgs, err := db.GetMessagesPage(r.ExportKey, 1, r.Idx)
	if err != nil {
		return "", fmt.Errorf("get message: %w", err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("message %d not found in %s", r.Idx, r.ExportKey)
	}
	msg := msgs[0]
	if msg.IsNotification {
		return msg.Body, nil
	}
	return msg.Sender + ": " + msg.Body, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
