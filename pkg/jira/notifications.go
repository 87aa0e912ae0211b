package jira

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// NotificationLevel defines the severity of a notification
type NotificationLevel int

const (
	NotificationInfo NotificationLevel = iota
	NotificationWarning
	NotificationError
)

const maxNotifications = 100

// String returns the string representation of the notification level
func (n NotificationLevel) String() string {
	switch n {
	case NotificationInfo:
		return "INFO"
	case NotificationWarning:
		return "WARNING"
	case NotificationError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the level by name in JSON output.
func (n NotificationLevel) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// Notification is a message meant for both the user (stderr log) and the agent
// (get_notifications tool).
type Notification struct {
	Level      NotificationLevel `json:"level"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	ServerName string            `json:"serverName,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Notifier logs notifications and keeps the most recent ones in memory.
type Notifier struct {
	logger *log.Logger
	mu     sync.Mutex
	items  []Notification
	now    func() time.Time
}

// NewNotifier creates a Notifier that logs through logger.
func NewNotifier(logger *log.Logger) *Notifier {
	return &Notifier{
		logger: logger,
		items:  make([]Notification, 0, maxNotifications),
		now:    time.Now,
	}
}

// Send logs n and stores it. Only the last 100 notifications are kept.
func (nt *Notifier) Send(n Notification) {
	n.Timestamp = nt.now()

	entry := nt.logger.WithField("title", n.Title)
	if n.ServerName != "" {
		entry = entry.WithField("server", n.ServerName)
	}
	switch n.Level {
	case NotificationError:
		entry.Error(n.Message)
	case NotificationWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}

	nt.mu.Lock()
	defer nt.mu.Unlock()
	nt.items = append(nt.items, n)
	if len(nt.items) > maxNotifications {
		nt.items = nt.items[len(nt.items)-maxNotifications:]
	}
}

// List returns a copy of the stored notifications, oldest first.
func (nt *Notifier) List() []Notification {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	out := make([]Notification, len(nt.items))
	copy(out, nt.items)
	return out
}

// Clear drops all stored notifications and returns how many there were.
func (nt *Notifier) Clear() int {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	n := len(nt.items)
	nt.items = make([]Notification, 0, maxNotifications)
	return n
}

func (nt *Notifier) serverIssue(serverName string, err error) {
	nt.Send(Notification{
		Level:      NotificationWarning,
		Title:      "Server Issue Detected",
		Message:    fmt.Sprintf("Server '%s' has a problem: %v", serverName, err),
		ServerName: serverName,
	})
}

func (nt *Notifier) tokenInvalid(serverName string) {
	nt.Send(Notification{
		Level:      NotificationError,
		Title:      "Token Invalid",
		Message:    fmt.Sprintf("The API token for server '%s' was rejected (401). Create a new token and update it with update_server_token.", serverName),
		ServerName: serverName,
	})
}

func (nt *Notifier) serverValidated(serverName, displayName, accountID string) {
	nt.Send(Notification{
		Level:      NotificationInfo,
		Title:      "Server Validated",
		Message:    fmt.Sprintf("Server '%s' validated successfully for %s (account: %s)", serverName, displayName, accountID),
		ServerName: serverName,
	})
}
