package queryd

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/teamspeak-go/ts3query/query"
)

// logHandler writes every notification to the logger as it arrives
type logHandler struct {
	logger *log.Logger
}

func (h *logHandler) HandleEvent(ev query.Event) {
	switch e := ev.(type) {
	case *query.TextMessageEvent:
		h.logger.Printf("[INFO] Message from %s (mode %d): %s", e.InvokerName, e.TargetMode, e.Msg)
	case *query.ClientEnterViewEvent:
		h.logger.Printf("[INFO] Client %s (id %d) entered channel %d", e.Nickname, e.ClientID, e.ChannelToID)
	case *query.ClientLeftViewEvent:
		h.logger.Printf("[INFO] Client %d left view (reason %d)", e.ClientID, e.ReasonID)
	case *query.ClientMovedEvent:
		ids := make([]string, 0, len(e.ClientIDs))
		for _, id := range e.ClientIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		h.logger.Printf("[INFO] Clients %s moved to channel %d", strings.Join(ids, ","), e.ChannelToID)
	case *query.ChannelCreatedEvent:
		h.logger.Printf("[INFO] Channel %q (id %d) created by %s", e.Name, e.ID, e.InvokerName)
	default:
		h.logger.Printf("[INFO] Event %s", ev.EventName())
	}
}

func (h *logHandler) HandleError(err error) bool {
	h.logger.Printf("[WARN] Undecodable notification: %v", err)
	return false
}

// runMonitor runs one monitoring session: connect, authenticate, register
// for notifications, then log events until the context or the connection
// ends. The error returned is the connection's, nil on a clean shutdown.
func runMonitor(ctx context.Context, logger *log.Logger, collector *query.Collector, c *Config) error {
	client, err := query.Connect(ctx, c.Server.Address, &query.Config{
		Logger:          logger,
		KeepAlivePeriod: c.Server.KeepAlivePeriod(),
		Handler:         &logHandler{logger: logger},
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if collector != nil {
		collector.Add(client, []string{c.Server.Address})
		defer collector.Remove(client)
	}

	if c.Server.Username != "" {
		if err := client.Login(ctx, c.Server.Username, c.Server.Password); err != nil {
			return err
		}
	}
	switch {
	case c.Server.ServerID != 0:
		err = client.UseSID(ctx, c.Server.ServerID)
	case c.Server.Port != 0:
		err = client.UsePort(ctx, c.Server.Port)
	}
	if err != nil {
		return err
	}
	if c.Server.Nickname != "" {
		if err := client.SetNickname(ctx, c.Server.Nickname); err != nil {
			return err
		}
	}

	kinds, err := c.Server.EventKinds()
	if err != nil {
		return err
	}
	for _, kind := range kinds {
		if err := client.RegisterEvents(ctx, kind); err != nil {
			return err
		}
	}

	if v, err := client.Version(ctx); err == nil {
		logger.Printf("[INFO] Monitoring %s (server version %s build %s on %s)",
			c.Server.Address, v.Version, v.Build, v.Platform)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-client.Done():
		return client.Err()
	}
}
