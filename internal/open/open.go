package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/index"
)

// OpenExport opens the export file in $EDITOR (less by default) at the line
// of message hitIndex, or at the top when hitIndex is negative.
func OpenExport(db *index.DB, exportKey string, hitIndex int) error {
	export, err := db.GetExportByKey(exportKey)
	if err != nil {
		return fmt.Errorf("get export: %w", err)
	}
	if export == nil {
		return fmt.Errorf("export not found: %s", exportKey)
	}

	filePath := export.FilePath
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	// find line number for the hit message
	lineNum := 1
	if hitIndex >= 0 {
		msgs, err := db.GetMessagesPage(exportKey, 1, hitIndex)
		if err == nil && len(msgs) == 1 {
			lineNum = msgs[0].LineNumber
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	args := editorArgs(editor, filePath, lineNum)
	cmd := exec.Command(editor, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// editorArgs builds the arguments that make editor jump to lineNum.
func editorArgs(editor, filePath string, lineNum int) []string {
	switch name := filepath.Base(editor); {
	case strings.Contains(name, "vim"), strings.Contains(name, "vi"),
		strings.Contains(name, "nano"), strings.Contains(name, "emacs"),
		strings.Contains(name, "less"):
		return []string{"+" + strconv.Itoa(lineNum), filePath}
	case strings.Contains(name, "code"):
		return []string{"--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(name, "subl"):
		return []string{filePath + ":" + strconv.Itoa(lineNum)}
	default:
		return []string{filePath}
	}
}
