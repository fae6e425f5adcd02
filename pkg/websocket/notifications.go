package websocket

import (
	json "github.com/json-iterator/go"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// OnNotification decodes pushed notifications and hands them to sink
func (c *Client) OnNotification(sink func(api.Notification)) func() {
	return c.On(MessageTypeNotification, func(payload json.RawMessage) {
		var n api.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			logger.Warn("Ignoring malformed notification", "error", err)
			return
		}
		if n.ID == "" {
			logger.Warn("Ignoring notification without id")
			return
		}
		sink(n)
	})
}
