package query

import (
	"github.com/teamspeak-go/ts3query/parser"
)

// EventHandler receives notifications as they arrive. Handlers run on the
// reader task; long work should be handed off. HandleError is invoked for
// notifications that fail to decode and reports whether the failure should
// close the connection.
type EventHandler interface {
	HandleEvent(ev Event)
	HandleError(err error) bool
}

// Event is a decoded server notification.
type Event interface {
	EventName() string
}

// ReasonID explains why a client moved or left. Values the server may add
// later pass through undeclared.
type ReasonID int

const (
	ReasonJoinChannel    ReasonID = 0
	ReasonMove           ReasonID = 1
	ReasonTimeout        ReasonID = 3
	ReasonChannelKick    ReasonID = 4
	ReasonServerKick     ReasonID = 5
	ReasonBan            ReasonID = 6
	ReasonLeave          ReasonID = 8
	ReasonEdit           ReasonID = 10
	ReasonServerShutdown ReasonID = 11
)

// TargetMode addresses a text message.
type TargetMode int

const (
	TargetModeClient  TargetMode = 1
	TargetModeChannel TargetMode = 2
	TargetModeServer  TargetMode = 3
)

// TextMessageEvent is sent for text messages in any registered scope.
type TextMessageEvent struct {
	InvokerID   int
	InvokerName string
	InvokerUID  *string
	TargetMode  TargetMode
	Msg         string
}

func (*TextMessageEvent) EventName() string { return "notifytextmessage" }

func (e *TextMessageEvent) Decode(d *parser.Decoder) error {
	var err error
	if e.InvokerID, err = d.Int("invokerid"); err != nil {
		return err
	}
	if e.InvokerName, err = d.String("invokername"); err != nil {
		return err
	}
	if e.InvokerUID, err = d.OptString("invokeruid"); err != nil {
		return err
	}
	mode, err := d.Int("targetmode")
	if err != nil {
		return err
	}
	e.TargetMode = TargetMode(mode)
	e.Msg, err = d.String("msg")
	return err
}

// ClientMovedEvent is sent when clients switch channels, voluntarily or
// not. Several clients may move in one event.
type ClientMovedEvent struct {
	InvokerID     *int
	InvokerName   *string
	InvokerUID    *string
	ClientIDs     []int
	ReasonID      ReasonID
	ReasonMsg     *string
	ChannelToID   int
	ChannelFromID *int
}

func (*ClientMovedEvent) EventName() string { return "notifyclientmoved" }

func (e *ClientMovedEvent) Decode(d *parser.Decoder) error {
	var err error
	if e.InvokerID, err = d.OptInt("invokerid"); err != nil {
		return err
	}
	if e.InvokerName, err = d.OptString("invokername"); err != nil {
		return err
	}
	if e.InvokerUID, err = d.OptString("invokeruid"); err != nil {
		return err
	}
	if e.ClientIDs, err = d.IntList("clid"); err != nil {
		return err
	}
	reason, err := d.IntDefault("reasonid", int(ReasonMove))
	if err != nil {
		return err
	}
	e.ReasonID = ReasonID(reason)
	if e.ReasonMsg, err = d.OptString("reasonmsg"); err != nil {
		return err
	}
	if e.ChannelToID, err = d.Int("ctid"); err != nil {
		return err
	}
	e.ChannelFromID, err = d.OptInt("cfid")
	return err
}

// ClientEnterViewEvent is sent when a client becomes visible, e.g. on
// connect or when entering a subscribed channel.
type ClientEnterViewEvent struct {
	ClientID      int
	ReasonID      ReasonID
	ReasonMsg     *string
	ChannelFromID int
	ChannelToID   int

	Nickname         string
	UniqueIdentifier string
	DatabaseID       int

	NicknamePhonetic *string
	Description      *string
	Country          *string
	Badges           Badges
	ServerGroups     []int
	ChannelGroupID   *int

	IsQuery     bool
	Away        bool
	AwayMessage *string

	InputMuted     bool
	OutputMuted    bool
	InputHardware  bool
	OutputHardware bool

	TalkPower          int
	IsTalker           bool
	IsPrioritySpeaker  bool
	IsChannelCommander bool
	IsRecording        bool
}

func (*ClientEnterViewEvent) EventName() string { return "notifycliententerview" }

func (e *ClientEnterViewEvent) Decode(d *parser.Decoder) error {
	var err error
	if e.ClientID, err = d.Int("clid"); err != nil {
		return err
	}
	reason, err := d.IntDefault("reasonid", int(ReasonJoinChannel))
	if err != nil {
		return err
	}
	e.ReasonID = ReasonID(reason)
	if e.ReasonMsg, err = d.OptString("reasonmsg"); err != nil {
		return err
	}
	if e.ChannelFromID, err = d.Int("cfid"); err != nil {
		return err
	}
	if e.ChannelToID, err = d.Int("ctid"); err != nil {
		return err
	}
	if e.Nickname, err = d.String("client_nickname"); err != nil {
		return err
	}
	if e.UniqueIdentifier, err = d.String("client_unique_identifier"); err != nil {
		return err
	}
	if e.DatabaseID, err = d.Int("client_database_id"); err != nil {
		return err
	}
	if e.NicknamePhonetic, err = d.OptString("client_nickname_phonetic"); err != nil {
		return err
	}
	if e.Description, err = d.OptString("client_description"); err != nil {
		return err
	}
	if e.Country, err = d.OptString("client_country"); err != nil {
		return err
	}
	if err = d.Composite("client_badges", e.Badges.parse); err != nil {
		return err
	}
	if e.ServerGroups, err = d.IntList("client_servergroups"); err != nil {
		return err
	}
	if e.ChannelGroupID, err = d.OptInt("client_channel_group_id"); err != nil {
		return err
	}
	clientType, err := d.IntDefault("client_type", 0)
	if err != nil {
		return err
	}
	e.IsQuery = clientType != 0
	if e.Away, err = d.BoolDefault("client_away", false); err != nil {
		return err
	}
	if e.AwayMessage, err = d.OptString("client_away_message"); err != nil {
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
	if e.IsPrioritySpeaker, err = d.BoolDefault("client_is_priority_speaker", false); err != nil {
		return err
	}
	if e.IsChannelCommander, err = d.BoolDefault("client_is_channel_commander", false); err != nil {
		return err
	}
	e.IsRecording, err = d.BoolDefault("client_is_recording", false)
	return err
}

// ClientLeftViewEvent is sent when a client stops being visible: a
// disconnect, a kick, a ban or a move out of view.
type ClientLeftViewEvent struct {
	InvokerID     *int
	InvokerName   *string
	InvokerUID    *string
	ClientID      int
	ReasonID      ReasonID
	ReasonMsg     *string
	ChannelFromID *int
	ChannelToID   *int
	BanTime       *int
}

func (*ClientLeftViewEvent) EventName() string { return "notifyclientleftview" }

func (e *ClientLeftViewEvent) Decode(d *parser.Decoder) error {
	var err error
	if e.InvokerID, err = d.OptInt("invokerid"); err != nil {
		return err
	}
	if e.InvokerName, err = d.OptString("invokername"); err != nil {
		return err
	}
	if e.InvokerUID, err = d.OptString("invokeruid"); err != nil {
		return err
	}
	if e.ClientID, err = d.Int("clid"); err != nil {
		return err
	}
	reason, err := d.IntDefault("reasonid", int(ReasonLeave))
	if err != nil {
		return err
	}
	e.ReasonID = ReasonID(reason)
	if e.ReasonMsg, err = d.OptString("reasonmsg"); err != nil {
		return err
	}
	if e.ChannelFromID, err = d.OptInt("cfid"); err != nil {
		return err
	}
	if e.ChannelToID, err = d.OptInt("ctid"); err != nil {
		return err
	}
	e.BanTime, err = d.OptInt("bantime")
	return err
}

// ChannelCreatedEvent is sent when a channel appears.
type ChannelCreatedEvent struct {
	InvokerID   int
	InvokerName string
	InvokerUID  *string

	ID       int
	ParentID int
	Name     string

	NamePhonetic *string
	Topic        *string
	IconID       *int

	FlagPermanent     bool
	FlagSemiPermanent bool
	FlagDefault       bool
	FlagPassword      bool
}

func (*ChannelCreatedEvent) EventName() string { return "notifychannelcreated" }

func (e *ChannelCreatedEvent) Decode(d *parser.Decoder) error {
	var err error
	if e.InvokerID, err = d.Int("invokerid"); err != nil {
		return err
	}
	if e.InvokerName, err = d.String("invokername"); err != nil {
		return err
	}
	if e.InvokerUID, err = d.OptString("invokeruid"); err != nil {
		return err
	}
	if e.ID, err = d.Int("cid"); err != nil {
		return err
	}
	if e.ParentID, err = d.Int("cpid"); err != nil {
		return err
	}
	if e.Name, err = d.String("channel_name"); err != nil {
		return err
	}
	if e.NamePhonetic, err = d.OptString("channel_name_phonetic"); err != nil {
		return err
	}
	if e.Topic, err = d.OptString("channel_topic"); err != nil {
		return err
	}
	if e.IconID, err = d.OptInt("channel_icon_id"); err != nil {
		return err
	}
	if e.FlagPermanent, err = d.BoolDefault("channel_flag_permanent", false); err != nil {
		return err
	}
	if e.FlagSemiPermanent, err = d.BoolDefault("channel_flag_semi_permanent", false); err != nil {
		return err
	}
	if e.FlagDefault, err = d.BoolDefault("channel_flag_default", false); err != nil {
		return err
	}
	e.FlagPassword, err = d.BoolDefault("channel_flag_password", false)
	return err
}

// eventRecord couples the Event identity with its decoder.
type eventRecord interface {
	Event
	parser.Record
}

var eventTypes = map[string]func() eventRecord{
	"notifytextmessage":     func() eventRecord { return new(TextMessageEvent) },
	"notifyclientmoved":     func() eventRecord { return new(ClientMovedEvent) },
	"notifycliententerview": func() eventRecord { return new(ClientEnterViewEvent) },
	"notifyclientleftview":  func() eventRecord { return new(ClientLeftViewEvent) },
	"notifychannelcreated":  func() eventRecord { return new(ChannelCreatedEvent) },
}

// parseEvent decodes one notify line, terminator already removed.
func parseEvent(line []byte) (Event, error) {
	d := parser.NewDecoder(line)
	name, err := d.DecodeName()
	if err != nil {
		return nil, err
	}

	mk, ok := eventTypes[name]
	if !ok {
		return nil, &UnknownEventError{Name: name, Line: string(line)}
	}

	ev := mk()
	if err := ev.Decode(d); err != nil {
		return nil, &EventDecodeError{Name: name, Line: string(line), Err: err}
	}
	return ev, nil
}
