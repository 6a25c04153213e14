package main

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/engine"
	"github.com/nikbrunner/bmark/internal/model"
)

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// openURL opens a URL in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return errors.Errorf("cannot open urls on %s", runtime.GOOS)
	}
	return errors.Wrap(cmd.Start(), "open browser")
}

// confirm asks a yes/no question on the command's input. Anything but
// y or yes declines.
func confirm(cmd *cobra.Command, format string, args ...interface{}) bool {
	printf(cmd.OutOrStdout(), format+" [y/N] ", args...)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// resolveBookmark finds a bookmark by full id or unique id prefix.
func resolveBookmark(e *engine.Engine, ref string) (model.Bookmark, error) {
	ref = strings.TrimSpace(ref)
	if b, ok := e.Bookmark(ref); ok {
		return b, nil
	}

	var found []model.Bookmark
	for _, b := range e.Snapshot().Bookmarks {
		if ref != "" && strings.HasPrefix(b.ID, ref) {
			found = append(found, b)
		}
	}
	switch len(found) {
	case 0:
		return model.Bookmark{}, errors.Errorf("no bookmark with id %q", ref)
	case 1:
		return found[0], nil
	default:
		return model.Bookmark{}, errors.Errorf("id %q is ambiguous (%d bookmarks)", ref, len(found))
	}
}

// resolveFolder finds a folder by id, unique id prefix or title, ignoring
// case for titles.
func resolveFolder(e *engine.Engine, ref string) (model.Folder, error) {
	ref = strings.TrimSpace(ref)
	folders := e.Folders()
	for _, f := range folders {
		if f.ID == ref {
			return f, nil
		}
	}
	for _, f := range folders {
		if strings.EqualFold(f.Title, ref) {
			return f, nil
		}
	}

	var found []model.Folder
	for _, f := range folders {
		if ref != "" && strings.HasPrefix(f.ID, ref) {
			found = append(found, f)
		}
	}
	switch len(found) {
	case 0:
		return model.Folder{}, errors.Errorf("no folder %q", ref)
	case 1:
		return found[0], nil
	default:
		return model.Folder{}, errors.Errorf("folder id %q is ambiguous (%d folders)", ref, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
