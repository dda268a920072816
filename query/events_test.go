package query

import (
	"errors"
	"testing"
)

func TestParseTextMessageEvent(t *testing.T) {
	// permuted key orders decode identically
	lines := []string{
		"notifytextmessage targetmode=2 msg=hi\\smom invokerid=3 invokername=Alice invokeruid=abc=",
		"notifytextmessage invokername=Alice invokeruid=abc= msg=hi\\smom targetmode=2 invokerid=3",
	}
	for _, line := range lines {
		ev, err := parseEvent([]byte(line))
		if err != nil {
			t.Fatalf("parseEvent(%q) failed: %v", line, err)
		}
		msg, ok := ev.(*TextMessageEvent)
		if !ok {
			t.Fatalf("parseEvent(%q) = %T", line, ev)
		}
		if msg.Msg != "hi mom" || msg.InvokerID != 3 || msg.InvokerName != "Alice" {
			t.Fatalf("TextMessageEvent = %+v", msg)
		}
		if msg.TargetMode != TargetModeChannel {
			t.Fatalf("TargetMode = %v", msg.TargetMode)
		}
		if msg.InvokerUID == nil || *msg.InvokerUID != "abc=" {
			t.Fatalf("InvokerUID = %v", msg.InvokerUID)
		}
	}
}

func TestParseClientMovedEvent(t *testing.T) {
	ev, err := parseEvent([]byte("notifyclientmoved ctid=4 reasonid=1 clid=1,2,3"))
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	moved := ev.(*ClientMovedEvent)
	if moved.ChannelToID != 4 || moved.ReasonID != ReasonMove {
		t.Fatalf("ClientMovedEvent = %+v", moved)
	}
	if len(moved.ClientIDs) != 3 || moved.ClientIDs[2] != 3 {
		t.Fatalf("ClientIDs = %v", moved.ClientIDs)
	}
	if moved.InvokerID != nil || moved.ReasonMsg != nil {
		t.Fatalf("optional fields not nil: %+v", moved)
	}

	// the reason defaults to a move when missing
	ev, err = parseEvent([]byte("notifyclientmoved ctid=4 clid=7"))
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	if ev.(*ClientMovedEvent).ReasonID != ReasonMove {
		t.Fatalf("ReasonID default not applied")
	}
}

func TestParseClientEnterViewBadges(t *testing.T) {
	line := "notifycliententerview cfid=0 ctid=1 clid=5 client_nickname=Tester " +
		"client_unique_identifier=u= client_database_id=2 " +
		"client_badges=Overwolf=1:badges=1cb07348,50bbdbc8 client_servergroups=6,8"
	ev, err := parseEvent([]byte(line))
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	enter := ev.(*ClientEnterViewEvent)
	if !enter.Badges.Overwolf || len(enter.Badges.Badges) != 2 || enter.Badges.Badges[0] != "1cb07348" {
		t.Fatalf("Badges = %+v", enter.Badges)
	}
	if len(enter.ServerGroups) != 2 || enter.ServerGroups[1] != 8 {
		t.Fatalf("ServerGroups = %v", enter.ServerGroups)
	}
}

func TestParseChannelCreatedEvent(t *testing.T) {
	line := "notifychannelcreated cid=9 cpid=0 channel_name=Lounge invokerid=1 " +
		"invokername=admin channel_flag_permanent=1"
	ev, err := parseEvent([]byte(line))
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	ch := ev.(*ChannelCreatedEvent)
	if ch.ID != 9 || ch.Name != "Lounge" || !ch.FlagPermanent || ch.FlagPassword {
		t.Fatalf("ChannelCreatedEvent = %+v", ch)
	}
	if ch.Topic != nil {
		t.Fatalf("Topic = %v", ch.Topic)
	}
}

func TestParseUnknownEvent(t *testing.T) {
	var unknown *UnknownEventError
	if _, err := parseEvent([]byte("notifyserveredited sid=1")); err == nil {
		t.Fatalf("parseEvent accepted an unregistered event")
	} else if !errors.As(err, &unknown) {
		t.Fatalf("parseEvent returned %T", err)
	} else if unknown.Name != "notifyserveredited" {
		t.Fatalf("UnknownEventError = %+v", unknown)
	}
}

func TestParseEventDecodeError(t *testing.T) {
	// targetmode is required and must be an integer
	var decodeErr *EventDecodeError
	if _, err := parseEvent([]byte("notifytextmessage msg=x invokerid=1 invokername=a targetmode=oops")); err == nil {
		t.Fatalf("parseEvent accepted a malformed event")
	} else if !errors.As(err, &decodeErr) {
		t.Fatalf("parseEvent returned %T", err)
	}
}
