package query

import (
	"strings"

	"github.com/teamspeak-go/ts3query/parser"
)

// Version is the reply to the version command.
type Version struct {
	Version  string
	Build    string
	Platform string
}

func (v *Version) Decode(d *parser.Decoder) error {
	var err error
	if v.Version, err = d.String("version"); err != nil {
		return err
	}
	if v.Build, err = d.String("build"); err != nil {
		return err
	}
	v.Platform, err = d.String("platform")
	return err
}

// WhoAmI describes the query session itself.
type WhoAmI struct {
	VirtualServerStatus   string
	VirtualServerID       int
	VirtualServerUniqueID string
	VirtualServerPort     int
	ClientID              int
	ClientChannelID       int
	ClientNickname        string
	ClientDatabaseID      int
	ClientLoginName       string
	ClientUniqueID        string
	OriginServerID        int
}

func (w *WhoAmI) Decode(d *parser.Decoder) error {
	var err error
	if w.VirtualServerStatus, err = d.String("virtualserver_status"); err != nil {
		return err
	}
	if w.VirtualServerID, err = d.Int("virtualserver_id"); err != nil {
		return err
	}
	if w.VirtualServerUniqueID, err = d.StringDefault("virtualserver_unique_identifier", ""); err != nil {
		return err
	}
	if w.VirtualServerPort, err = d.IntDefault("virtualserver_port", 0); err != nil {
		return err
	}
	if w.ClientID, err = d.Int("client_id"); err != nil {
		return err
	}
	if w.ClientChannelID, err = d.Int("client_channel_id"); err != nil {
		return err
	}
	if w.ClientNickname, err = d.String("client_nickname"); err != nil {
		return err
	}
	if w.ClientDatabaseID, err = d.Int("client_database_id"); err != nil {
		return err
	}
	if w.ClientLoginName, err = d.StringDefault("client_login_name", ""); err != nil {
		return err
	}
	if w.ClientUniqueID, err = d.String("client_unique_identifier"); err != nil {
		return err
	}
	w.OriginServerID, err = d.Int("client_origin_server_id")
	return err
}

// Badges is the composite value of a client_badges field, a colon-separated
// descriptor of the form "Overwolf=1:badges=a,b,c".
type Badges struct {
	Overwolf bool
	Badges   []string
}

func (b *Badges) parse(value string) error {
	if value == "" {
		return nil
	}
	for _, part := range strings.Split(value, ":") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return &parser.UnexpectedTokenError{Token: part, Want: "key=value"}
		}
		switch key {
		case "Overwolf":
			b.Overwolf = val == "1"
		case "badges":
			b.Badges = strings.Split(val, ",")
		default:
			// newer clients add descriptor keys; ignore them
		}
	}
	return nil
}

// ClientListEntry is the base record of a clientlist reply.
type ClientListEntry struct {
	ClientID   int
	ChannelID  int
	Nickname   string
	ClientType int
}

func (e *ClientListEntry) Decode(d *parser.Decoder) error {
	var err error
	if e.ClientID, err = d.Int("clid"); err != nil {
		return err
	}
	if e.ChannelID, err = d.Int("cid"); err != nil {
		return err
	}
	if e.Nickname, err = d.String("client_nickname"); err != nil {
		return err
	}
	e.ClientType, err = d.Int("client_type")
	return err
}

// ClientListUIDEntry is the block added by the -uid flag.
type ClientListUIDEntry struct {
	UniqueIdentifier string
}

func (e *ClientListUIDEntry) Decode(d *parser.Decoder) error {
	var err error
	e.UniqueIdentifier, err = d.String("client_unique_identifier")
	return err
}

// ClientListAwayEntry is the block added by the -away flag.
type ClientListAwayEntry struct {
	Away        bool
	AwayMessage *string
}

func (e *ClientListAwayEntry) Decode(d *parser.Decoder) error {
	var err error
	if e.Away, err = d.Bool("client_away"); err != nil {
		return err
	}
	e.AwayMessage, err = d.OptString("client_away_message")
	return err
}

// ClientListVoiceEntry is the block added by the -voice flag.
type ClientListVoiceEntry struct {
	FlagTalking    bool
	InputMuted     bool
	OutputMuted    bool
	InputHardware  bool
	OutputHardware bool
	TalkPower      int
	IsTalker       bool
	IsRecording    bool
}

func (e *ClientListVoiceEntry) Decode(d *parser.Decoder) error {
	var err error
	if e.FlagTalking, err = d.BoolDefault("client_flag_talking", false); err != nil {
		return err
	}
	if e.InputMuted, err = d.BoolDefault("client_input_muted", false); err != nil {
		return err
	}
	if e.OutputMuted, err = d.BoolDefault("client_output_muted", false); err != nil {
		return err
	}
	if e.InputHardware, err = d.BoolDefault("client_input_hardware", true); err != nil {
		return err
	}
	if e.OutputHardware, err = d.BoolDefault("client_output_hardware", true); err != nil {
		return err
	}
	if e.TalkPower, err = d.IntDefault("client_talk_power", 0); err != nil {
		return err
	}
	if e.IsTalker, err = d.BoolDefault("client_is_talker", false); err != nil {
		return err
	}
	e.IsRecording, err = d.BoolDefault("client_is_recording", false)
	return err
}

// ClientListDynamicEntry is a clientlist row whose optional blocks follow
// the flags the list was requested with. The blocks decode inline, sharing
// the row's scope.
type ClientListDynamicEntry struct {
	Base  ClientListEntry
	UID   *ClientListUIDEntry
	Away  *ClientListAwayEntry
	Voice *ClientListVoiceEntry
}

func (e *ClientListDynamicEntry) decodeWith(d *parser.Decoder, flags ClientListFlags) error {
	if err := d.Decode(&e.Base); err != nil {
		return err
	}
	if flags.UID {
		e.UID = &ClientListUIDEntry{}
		if err := d.Decode(e.UID); err != nil {
			return err
		}
	}
	if flags.Away {
		e.Away = &ClientListAwayEntry{}
		if err := d.Decode(e.Away); err != nil {
			return err
		}
	}
	if flags.Voice {
		e.Voice = &ClientListVoiceEntry{}
		if err := d.Decode(e.Voice); err != nil {
			return err
		}
	}
	return nil
}

// ClientListFlags selects the optional blocks of a clientlist request.
type ClientListFlags struct {
	UID   bool
	Away  bool
	Voice bool
}

// AllClientListFlags requests every optional block.
func AllClientListFlags() ClientListFlags {
	return ClientListFlags{UID: true, Away: true, Voice: true}
}

// ChannelListEntry is the base record of a channellist reply.
type ChannelListEntry struct {
	ID                   int
	ParentID             int
	Order                int
	Name                 string
	TotalClients         int
	NeededSubscribePower int
}

func (e *ChannelListEntry) Decode(d *parser.Decoder) error {
	var err error
	if e.ID, err = d.Int("cid"); err != nil {
		return err
	}
	if e.ParentID, err = d.Int("pid"); err != nil {
		return err
	}
	if e.Order, err = d.Int("channel_order"); err != nil {
		return err
	}
	if e.Name, err = d.String("channel_name"); err != nil {
		return err
	}
	if e.TotalClients, err = d.Int("total_clients"); err != nil {
		return err
	}
	e.NeededSubscribePower, err = d.Int("channel_needed_subscribe_power")
	return err
}

// ChannelListTopicEntry is the block added by the -topic flag.
type ChannelListTopicEntry struct {
	Topic *string
}

func (e *ChannelListTopicEntry) Decode(d *parser.Decoder) error {
	var err error
	e.Topic, err = d.OptString("channel_topic")
	return err
}

// ChannelListFlagsEntry is the block added by the -flags flag.
type ChannelListFlagsEntry struct {
	Default       bool
	Password      bool
	Permanent     bool
	SemiPermanent bool
}

func (e *ChannelListFlagsEntry) Decode(d *parser.Decoder) error {
	var err error
	if e.Default, err = d.Bool("channel_flag_default"); err != nil {
		return err
	}
	if e.Password, err = d.Bool("channel_flag_password"); err != nil {
		return err
	}
	if e.Permanent, err = d.Bool("channel_flag_permanent"); err != nil {
		return err
	}
	e.SemiPermanent, err = d.Bool("channel_flag_semi_permanent")
	return err
}

// ChannelListDynamicEntry is a channellist row with its requested optional
// blocks.
type ChannelListDynamicEntry struct {
	Base  ChannelListEntry
	Topic *ChannelListTopicEntry
	Flags *ChannelListFlagsEntry
}

func (e *ChannelListDynamicEntry) decodeWith(d *parser.Decoder, flags ChannelListFlags) error {
	if err := d.Decode(&e.Base); err != nil {
		return err
	}
	if flags.Topic {
		e.Topic = &ChannelListTopicEntry{}
		if err := d.Decode(e.Topic); err != nil {
			return err
		}
	}
	if flags.Flags {
		e.Flags = &ChannelListFlagsEntry{}
		if err := d.Decode(e.Flags); err != nil {
			return err
		}
	}
	return nil
}

// ChannelListFlags selects the optional blocks of a channellist request.
type ChannelListFlags struct {
	Topic bool
	Flags bool
}

// AllChannelListFlags requests every optional block.
func AllChannelListFlags() ChannelListFlags {
	return ChannelListFlags{Topic: true, Flags: true}
}
