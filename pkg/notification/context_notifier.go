package notification

import (
	"os"
	"path/filepath"
)

// ContextNotifier wraps another notifier and adds the project name to untitled notifications
type ContextNotifier struct {
	underlying Notifier
	project    string
}

// NewContextNotifier creates a context notifier for the current working directory
func NewContextNotifier(underlying Notifier) *ContextNotifier {
	project := ""
	if cwd, err := os.Getwd(); err == nil {
		project = filepath.Base(cwd)
	}
	return NewContextNotifierForProject(underlying, project)
}

// NewContextNotifierForProject creates a context notifier with an explicit project name
func NewContextNotifierForProject(underlying Notifier, project string) *ContextNotifier {
	return &ContextNotifier{
		underlying: underlying,
		project:    project,
	}
}

// Send implements the Notifier interface
func (cn *ContextNotifier) Send(notification Notification) error {
	if notification.Title == "" {
		notification.Title = "Retrospective"
		if cn.project != "" && cn.project != "/" && cn.project != "." {
			notification.Title += ": " + cn.project
		}
	}

	return cn.underlying.Send(notification)
}

// Close closes the underlying notifier if it holds resources
func (cn *ContextNotifier) Close() error {
	if closer, ok := cn.underlying.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
