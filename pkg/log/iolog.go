package log

import (
	"encoding/json"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	redacted       = "***REDACTED***"
	maxLoggedBytes = 2000
)

// sensitiveKeys are matched case-insensitively at any depth of a message.
var sensitiveKeys = map[string]struct{}{
	"token":         {},
	"apitoken":      {},
	"bearertoken":   {},
	"accesstoken":   {},
	"password":      {},
	"secret":        {},
	"apikey":        {},
	"authorization": {},
}

// IOLogger wraps the stdio streams of the MCP server and logs every
// JSON-RPC message at debug level with credentials removed.
type IOLogger struct {
	in     io.Reader
	out    io.Writer
	logger log.FieldLogger
}

// NewIOLogger creates a new IOLogger instance
func NewIOLogger(in io.Reader, out io.Writer, logger log.FieldLogger) *IOLogger {
	return &IOLogger{
		in:     in,
		out:    out,
		logger: logger,
	}
}

// Read implements io.Reader, logging incoming messages
func (iol *IOLogger) Read(p []byte) (n int, err error) {
	n, err = iol.in.Read(p)
	if n > 0 {
		iol.logLines("in", p[:n])
	}
	return n, err
}

// Write implements io.Writer, logging outgoing messages
func (iol *IOLogger) Write(p []byte) (n int, err error) {
	iol.logLines("out", p)
	return iol.out.Write(p)
}

// logLines logs each newline-delimited message in chunk separately.
func (iol *IOLogger) logLines(direction string, chunk []byte) {
	for _, line := range strings.Split(string(chunk), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		iol.logger.WithField("direction", direction).Debug(redactSensitive(line))
	}
}

// redactSensitive masks credential values in a JSON message and truncates it.
// Non-JSON input is only truncated.
func redactSensitive(msg string) string {
	result := msg
	if isLikelyJSON(msg) {
		var raw any
		if err := json.Unmarshal([]byte(msg), &raw); err == nil {
			if data, err := json.Marshal(redactValue(raw)); err == nil {
				result = string(data)
			}
		}
	}

	if len(result) > maxLoggedBytes {
		result = result[:maxLoggedBytes] + "... (truncated)"
	}
	return result
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
				val[k] = redacted
				continue
			}
			val[k] = redactValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = redactValue(inner)
		}
		return val
	default:
		return v
	}
}

// isLikelyJSON checks if a string appears to be JSON
func isLikelyJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
