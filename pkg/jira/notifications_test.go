package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier() (*Notifier, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	n := NewNotifier(logger)
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return n, hook
}

func TestNotificationLevel_String(t *testing.T) {
	assert.Equal(t, "INFO", NotificationInfo.String())
	assert.Equal(t, "WARNING", NotificationWarning.String())
	assert.Equal(t, "ERROR", NotificationError.String())
	assert.Equal(t, "UNKNOWN", NotificationLevel(42).String())
}

func TestNotifier_SendLogsAtLevel(t *testing.T) {
	tests := []struct {
		level NotificationLevel
		want  log.Level
	}{
		{NotificationInfo, log.InfoLevel},
		{NotificationWarning, log.WarnLevel},
		{NotificationError, log.ErrorLevel},
	}
	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			n, hook := newTestNotifier()
			n.Send(Notification{Level: tc.level, Title: "T", Message: "M", ServerName: "work"})

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tc.want, entry.Level)
			assert.Equal(t, "M", entry.Message)
			assert.Equal(t, "T", entry.Data["title"])
			assert.Equal(t, "work", entry.Data["server"])

			stored := n.List()
			require.Len(t, stored, 1)
			assert.Equal(t, 2026, stored[0].Timestamp.Year())
		})
	}
}

func TestNotifier_KeepsLastHundred(t *testing.T) {
	n, _ := newTestNotifier()
	for i := 0; i < 130; i++ {
		n.Send(Notification{Title: fmt.Sprintf("n%d", i)})
	}
	stored := n.List()
	require.Len(t, stored, maxNotifications)
	assert.Equal(t, "n30", stored[0].Title)
	assert.Equal(t, "n129", stored[len(stored)-1].Title)
}

func TestNotifier_ListReturnsCopy(t *testing.T) {
	n, _ := newTestNotifier()
	n.Send(Notification{Title: "original"})
	list := n.List()
	list[0].Title = "changed"
	assert.Equal(t, "original", n.List()[0].Title)
}

func TestNotifier_Clear(t *testing.T) {
	n, _ := newTestNotifier()
	n.Send(Notification{Title: "a"})
	n.Send(Notification{Title: "b"})
	assert.Equal(t, 2, n.Clear())
	assert.Empty(t, n.List())
	assert.Equal(t, 0, n.Clear())
}

func TestNotifier_Helpers(t *testing.T) {
	n, _ := newTestNotifier()
	n.serverIssue("work", errors.New("boom"))
	n.tokenInvalid("work")
	n.serverValidated("work", "Ada Lovelace", "acc-1")

	list := n.List()
	require.Len(t, list, 3)
	assert.Equal(t, NotificationWarning, list[0].Level)
	assert.Contains(t, list[0].Message, "boom")
	assert.Equal(t, NotificationError, list[1].Level)
	assert.Contains(t, list[1].Message, "update_server_token")
	assert.Equal(t, NotificationInfo, list[2].Level)
	assert.Contains(t, list[2].Message, "Ada Lovelace")
	for _, item := range list {
		assert.Equal(t, "work", item.ServerName)
	}
}

func TestNotification_JSONLevelName(t *testing.T) {
	data, err := json.Marshal(Notification{Level: NotificationWarning, Title: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"WARNING"`)
}

func TestNotifier_ConcurrentSend(t *testing.T) {
	n, _ := newTestNotifier()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Send(Notification{Title: "c"})
		}()
	}
	wg.Wait()
	assert.Len(t, n.List(), 50)
}
