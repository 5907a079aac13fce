package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ExecNotifier shells out to the platform notification tool.
type ExecNotifier struct{}

func (ExecNotifier) Send(ctx context.Context, n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.CommandContext(ctx, "notify-send", "--app-name="+AppName, n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.CommandContext(ctx, "osascript", "-e", script).Run()
	default:
		return nil
	}
}

func (ExecNotifier) Probe(context.Context) error {
	var tool string
	switch runtime.GOOS {
	case "linux":
		tool = "notify-send"
	case "darwin":
		tool = "osascript"
	default:
		return fmt.Errorf("notify: no notification tool for %s", runtime.GOOS)
	}
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("notify: %s not found: %w", tool, err)
	}
	return nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
