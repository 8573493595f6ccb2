package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/adanyl0v/studyboard/internal/app"
	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/scheduler"
	"github.com/adanyl0v/studyboard/internal/state"
)

// follow keeps the store's laps in sync with the server and turns
// reminder digests into toasts until ctx is done.
func follow(ctx context.Context, c *app.ClientApp) {
	log := app.Logger("follow")
	err := c.API.StreamLaps(ctx, func(e client.StreamEvent) {
		switch {
		case strings.HasPrefix(e.Name, "lap."):
			reloadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			_ = c.Store.ReloadLaps(reloadCtx)
		case e.Name == string(events.TopicReminderDigest):
			var d scheduler.Digest
			if json.Unmarshal(e.Data, &d) != nil {
				return
			}
			c.Bus.Publish(events.Event{
				Topic:   events.TopicToast,
				Payload: state.Toast{Action: "reminder", Message: d.Text()},
			})
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Warn().
			Err(err).
			Msg("lap stream ended")
	}
}
