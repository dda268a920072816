package query

import (
	"context"

	"github.com/teamspeak-go/ts3query/parser"
)

// EventKind selects a notification scope for servernotifyregister.
type EventKind string

const (
	EventServer      EventKind = "server"
	EventChannel     EventKind = "channel"
	EventTextServer  EventKind = "textserver"
	EventTextChannel EventKind = "textchannel"
	EventTextPrivate EventKind = "textprivate"
	EventTokenUsed   EventKind = "tokenused"
)

// Login authenticates the query session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	cmd := parser.NewCommand("login").
		Arg("client_login_name", username).
		Arg("client_login_password", password)
	return c.SendNoResponse(ctx, cmd)
}

// Logout drops the session's authentication.
func (c *Client) Logout(ctx context.Context) error {
	return c.SendNoResponse(ctx, parser.NewCommand("logout"))
}

// Quit asks the server to close the connection.
func (c *Client) Quit(ctx context.Context) error {
	return c.SendNoResponse(ctx, parser.NewCommand("quit"))
}

// UseSID selects the virtual server with the given id.
func (c *Client) UseSID(ctx context.Context, sid int) error {
	return c.SendNoResponse(ctx, parser.NewCommand("use").ArgInt("sid", sid))
}

// UsePort selects the virtual server listening on the given voice port.
func (c *Client) UsePort(ctx context.Context, port int) error {
	return c.SendNoResponse(ctx, parser.NewCommand("use").ArgInt("port", port))
}

// SetNickname renames the query client.
func (c *Client) SetNickname(ctx context.Context, nickname string) error {
	return c.SendNoResponse(ctx, parser.NewCommand("clientupdate").Arg("client_nickname", nickname))
}

// Version fetches the server version record.
func (c *Client) Version(ctx context.Context) (*Version, error) {
	v := &Version{}
	if err := c.SendDecode(ctx, parser.NewCommand("version"), v); err != nil {
		return nil, err
	}
	return v, nil
}

// WhoAmI fetches the session description record.
func (c *Client) WhoAmI(ctx context.Context) (*WhoAmI, error) {
	w := &WhoAmI{}
	if err := c.SendDecode(ctx, parser.NewCommand("whoami"), w); err != nil {
		return nil, err
	}
	return w, nil
}

// Help returns the opaque help text of a command, or the general help when
// topic is empty.
func (c *Client) Help(ctx context.Context, topic string) (string, error) {
	cmd := parser.NewCommand("help")
	if topic != "" {
		cmd.Raw(topic)
	}
	resp, err := c.SendRaw(ctx, cmd)
	if err != nil {
		return "", err
	}
	return string(resp.Content()), nil
}

// ClientList fetches the base client list.
func (c *Client) ClientList(ctx context.Context) ([]ClientListEntry, error) {
	var list []ClientListEntry
	err := c.SendDecodeList(ctx, parser.NewCommand("clientlist"), func(d *parser.Decoder) error {
		var e ClientListEntry
		if err := d.Decode(&e); err != nil {
			return err
		}
		list = append(list, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ClientListDynamic fetches the client list with the optional blocks
// selected by flags. The reply's shape depends on the request, so each row
// is decoded with a flag-aware decoder.
func (c *Client) ClientListDynamic(ctx context.Context, flags ClientListFlags) ([]ClientListDynamicEntry, error) {
	cmd := parser.NewCommand("clientlist").
		Flag("uid", flags.UID).
		Flag("away", flags.Away).
		Flag("voice", flags.Voice)

	var list []ClientListDynamicEntry
	err := c.SendDecodeList(ctx, cmd, func(d *parser.Decoder) error {
		var e ClientListDynamicEntry
		if err := e.decodeWith(d, flags); err != nil {
			return err
		}
		list = append(list, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ChannelList fetches the base channel list.
func (c *Client) ChannelList(ctx context.Context) ([]ChannelListEntry, error) {
	var list []ChannelListEntry
	err := c.SendDecodeList(ctx, parser.NewCommand("channellist"), func(d *parser.Decoder) error {
		var e ChannelListEntry
		if err := d.Decode(&e); err != nil {
			return err
		}
		list = append(list, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ChannelListDynamic fetches the channel list with the optional blocks
// selected by flags.
func (c *Client) ChannelListDynamic(ctx context.Context, flags ChannelListFlags) ([]ChannelListDynamicEntry, error) {
	cmd := parser.NewCommand("channellist").
		Flag("topic", flags.Topic).
		Flag("flags", flags.Flags)

	var list []ChannelListDynamicEntry
	err := c.SendDecodeList(ctx, cmd, func(d *parser.Decoder) error {
		var e ChannelListDynamicEntry
		if err := e.decodeWith(d, flags); err != nil {
			return err
		}
		list = append(list, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ClientMove moves one or more clients into a channel.
func (c *Client) ClientMove(ctx context.Context, clientIDs []int, channelID int, password *string) error {
	if len(clientIDs) == 0 {
		return &InvalidArgumentError{Name: "clientIDs", Message: "at least one client id is required"}
	}
	cmd := parser.NewCommand("clientmove").
		ArgIntList("clid", clientIDs).
		ArgInt("cid", channelID).
		OptArg("cpw", password)
	return c.SendNoResponse(ctx, cmd)
}

// RegisterEvents subscribes the session to a notification scope. Channel
// scopes subscribe to all channels; use RegisterChannelEvents to restrict
// to one.
func (c *Client) RegisterEvents(ctx context.Context, kind EventKind) error {
	switch kind {
	case EventChannel, EventTextChannel:
		return c.RegisterChannelEvents(ctx, kind, 0)
	}
	cmd := parser.NewCommand("servernotifyregister").Arg("event", string(kind))
	return c.SendNoResponse(ctx, cmd)
}

// RegisterChannelEvents subscribes the session to a channel-scoped
// notification kind for one channel, or all channels when channelID is 0.
func (c *Client) RegisterChannelEvents(ctx context.Context, kind EventKind, channelID int) error {
	switch kind {
	case EventChannel, EventTextChannel:
	default:
		return &InvalidArgumentError{
			Name:    "kind",
			Message: "must be a channel-scoped event kind",
		}
	}
	cmd := parser.NewCommand("servernotifyregister").
		Arg("event", string(kind)).
		ArgInt("id", channelID)
	return c.SendNoResponse(ctx, cmd)
}

// RegisterAllEvents subscribes the session to every notification scope.
func (c *Client) RegisterAllEvents(ctx context.Context) error {
	for _, kind := range []EventKind{
		EventServer,
		EventChannel,
		EventTextServer,
		EventTextChannel,
		EventTextPrivate,
		EventTokenUsed,
	} {
		if err := c.RegisterEvents(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

// UnregisterEvents drops all notification subscriptions of the session.
func (c *Client) UnregisterEvents(ctx context.Context) error {
	return c.SendNoResponse(ctx, parser.NewCommand("servernotifyunregister"))
}
