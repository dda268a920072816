package parser

import (
	"errors"
	"testing"
)

func TestDecoderRequiredFields(t *testing.T) {
	d := NewDecoder([]byte("version=3.13.7 build=1655727713 platform=Linux"))

	v, err := d.String("version")
	if err != nil || v != "3.13.7" {
		t.Fatalf("version = %q, err %v", v, err)
	}
	b, err := d.String("build")
	if err != nil || b != "1655727713" {
		t.Fatalf("build = %q, err %v", b, err)
	}
	p, err := d.String("platform")
	if err != nil || p != "Linux" {
		t.Fatalf("platform = %q, err %v", p, err)
	}
}

func TestDecoderOrderIndependent(t *testing.T) {
	// same record, permuted key order
	bodies := []string{
		"clid=5 cid=10 client_nickname=Alice",
		"client_nickname=Alice clid=5 cid=10",
		"cid=10 client_nickname=Alice clid=5",
	}
	for _, body := range bodies {
		d := NewDecoder([]byte(body))
		nick, err := d.String("client_nickname")
		if err != nil || nick != "Alice" {
			t.Fatalf("%q: nickname = %q, err %v", body, nick, err)
		}
		clid, err := d.Int("clid")
		if err != nil || clid != 5 {
			t.Fatalf("%q: clid = %d, err %v", body, clid, err)
		}
		cid, err := d.Int("cid")
		if err != nil || cid != 10 {
			t.Fatalf("%q: cid = %d, err %v", body, cid, err)
		}
	}
}

func TestDecoderEscapedValues(t *testing.T) {
	d := NewDecoder([]byte(`msg=invalid\sserverID`))
	v, err := d.String("msg")
	if err != nil || v != "invalid serverID" {
		t.Fatalf("msg = %q, err %v", v, err)
	}
}

func TestDecoderMissingKey(t *testing.T) {
	d := NewDecoder([]byte("a=1 b=2"))
	var missing *MissingKeyError
	if _, err := d.String("c"); err == nil {
		t.Fatalf("String resolved a missing key")
	} else if !errors.As(err, &missing) {
		t.Fatalf("String returned %T, expected MissingKeyError", err)
	}
}

func TestDecoderOptionalFields(t *testing.T) {
	d := NewDecoder([]byte("a=1"))
	v, err := d.OptString("b")
	if err != nil || v != nil {
		t.Fatalf("OptString = %v, err %v", v, err)
	}
	n, err := d.OptInt("c")
	if err != nil || n != nil {
		t.Fatalf("OptInt = %v, err %v", n, err)
	}
	a, err := d.OptInt("a")
	if err != nil || a == nil || *a != 1 {
		t.Fatalf("OptInt(a) = %v, err %v", a, err)
	}
}

func TestDecoderDefaults(t *testing.T) {
	d := NewDecoder([]byte("reasonid=4"))
	r, err := d.IntDefault("reasonid", 0)
	if err != nil || r != 4 {
		t.Fatalf("reasonid = %d, err %v", r, err)
	}
	m, err := d.StringDefault("reasonmsg", "none")
	if err != nil || m != "none" {
		t.Fatalf("reasonmsg = %q, err %v", m, err)
	}
	b, err := d.BoolDefault("client_away", false)
	if err != nil || b {
		t.Fatalf("client_away = %v, err %v", b, err)
	}
}

func TestDecoderBool(t *testing.T) {
	d := NewDecoder([]byte("a=1 b=0 c=yes"))
	if v, err := d.Bool("a"); err != nil || !v {
		t.Fatalf("a = %v, err %v", v, err)
	}
	if v, err := d.Bool("b"); err != nil || v {
		t.Fatalf("b = %v, err %v", v, err)
	}
	var invalid *InvalidValueError
	if _, err := d.Bool("c"); err == nil {
		t.Fatalf("Bool accepted %q", "yes")
	} else if !errors.As(err, &invalid) {
		t.Fatalf("Bool returned %T, expected InvalidValueError", err)
	}
}

func TestDecoderFloat(t *testing.T) {
	d := NewDecoder([]byte("priority=0.25"))
	if v, err := d.Float("priority"); err != nil || v != 0.25 {
		t.Fatalf("priority = %v, err %v", v, err)
	}
}

func TestDecoderCommaLists(t *testing.T) {
	d := NewDecoder([]byte("client_servergroups=6,8,13 names=a,b empty="))
	groups, err := d.IntList("client_servergroups")
	if err != nil || len(groups) != 3 || groups[0] != 6 || groups[2] != 13 {
		t.Fatalf("groups = %v, err %v", groups, err)
	}
	names, err := d.StringList("names")
	if err != nil || len(names) != 2 || names[1] != "b" {
		t.Fatalf("names = %v, err %v", names, err)
	}
	empty, err := d.IntList("empty")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty = %v, err %v", empty, err)
	}
	absent, err := d.IntList("absent")
	if err != nil || len(absent) != 0 {
		t.Fatalf("absent = %v, err %v", absent, err)
	}
}

func TestDecoderFlagToken(t *testing.T) {
	// a key without '=' decodes as present with an empty value
	d := NewDecoder([]byte("virtualserver_status=online flag other=1"))
	v, found, err := d.Advance("flag")
	if err != nil || !found || v != "" {
		t.Fatalf("flag = %q found=%v err=%v", v, found, err)
	}
}

func TestDecoderDuplicateFirstWins(t *testing.T) {
	d := NewDecoder([]byte("a=1 a=2 b=3"))
	if v, err := d.Int("a"); err != nil || v != 1 {
		t.Fatalf("a = %d, err %v", v, err)
	}
	if v, err := d.Int("b"); err != nil || v != 3 {
		t.Fatalf("b = %d, err %v", v, err)
	}
}

func TestDecoderListBoundary(t *testing.T) {
	d := NewDecoder([]byte("a=1|a=2"))
	if v, err := d.Int("a"); err != nil || v != 1 {
		t.Fatalf("a = %d, err %v", v, err)
	}
	// the second record must not satisfy lookups of the first
	var missing *MissingValueError
	if _, err := d.String("b"); err == nil {
		t.Fatalf("lookup crossed a list boundary")
	} else if !errors.As(err, &missing) {
		t.Fatalf("got %T, expected MissingValueError", err)
	}
}

func TestDecoderName(t *testing.T) {
	d := NewDecoder([]byte("notifytextmessage targetmode=1 msg=hi invokerid=2"))
	name, err := d.DecodeName()
	if err != nil || name != "notifytextmessage" {
		t.Fatalf("name = %q, err %v", name, err)
	}
	if v, err := d.String("msg"); err != nil || v != "hi" {
		t.Fatalf("msg = %q, err %v", v, err)
	}
}

type clientRow struct {
	ID       int
	Channel  int
	Nickname string
	Type     int
}

func (r *clientRow) Decode(d *Decoder) error {
	var err error
	if r.ID, err = d.Int("clid"); err != nil {
		return err
	}
	if r.Channel, err = d.Int("cid"); err != nil {
		return err
	}
	if r.Nickname, err = d.String("client_nickname"); err != nil {
		return err
	}
	if r.Type, err = d.Int("client_type"); err != nil {
		return err
	}
	return nil
}

func TestDecoderRecordList(t *testing.T) {
	body := "clid=1 cid=10 client_nickname=Alice client_type=0" +
		"|clid=2 cid=10 client_nickname=Bob client_type=0" +
		"|client_nickname=Eve clid=3 cid=11 client_type=1"

	var rows []clientRow
	d := NewDecoder([]byte(body))
	err := d.DecodeList(func(d *Decoder) error {
		var r clientRow
		if err := d.Decode(&r); err != nil {
			return err
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		t.Fatalf("DecodeList failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, expected 3", len(rows))
	}
	if rows[0].Nickname != "Alice" || rows[1].Nickname != "Bob" || rows[2].Nickname != "Eve" {
		t.Fatalf("nicknames = %v %v %v", rows[0].Nickname, rows[1].Nickname, rows[2].Nickname)
	}
	if rows[2].ID != 3 || rows[2].Channel != 11 || rows[2].Type != 1 {
		t.Fatalf("third row = %+v", rows[2])
	}
}

func TestDecoderRecordListSkipsUnknownKeys(t *testing.T) {
	// extra keys a record never asks for must not leak into the next record
	body := "clid=1 cid=10 client_nickname=Alice client_type=0 extra=x" +
		"|clid=2 cid=10 client_nickname=Bob client_type=0"

	var rows []clientRow
	d := NewDecoder([]byte(body))
	err := d.DecodeList(func(d *Decoder) error {
		var r clientRow
		if err := d.Decode(&r); err != nil {
			return err
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil || len(rows) != 2 {
		t.Fatalf("rows = %d, err %v", len(rows), err)
	}
}

type topicRow struct {
	Topic string
}

func (r *topicRow) Decode(d *Decoder) error {
	var err error
	r.Topic, err = d.String("channel_topic")
	return err
}

type channelRow struct {
	ID    int
	Name  string
	Topic *topicRow
}

func TestDecoderInlineSubRecord(t *testing.T) {
	// the sub-record shares the outer scope: its key may appear anywhere
	body := "cid=1 channel_topic=Lobby channel_name=Main|channel_name=Dev channel_topic=Work cid=2"

	var rows []channelRow
	d := NewDecoder([]byte(body))
	err := d.DecodeList(func(d *Decoder) error {
		var r channelRow
		var err error
		if r.ID, err = d.Int("cid"); err != nil {
			return err
		}
		if r.Name, err = d.String("channel_name"); err != nil {
			return err
		}
		r.Topic = &topicRow{}
		if err = d.Decode(r.Topic); err != nil {
			return err
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		t.Fatalf("DecodeList failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Topic.Topic != "Lobby" || rows[1].Topic.Topic != "Work" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestDecoderComposite(t *testing.T) {
	d := NewDecoder([]byte("client_badges=Overwolf=1:badges=a,b,c clid=1"))

	var overwolf string
	err := d.Composite("client_badges", func(v string) error {
		overwolf = v
		return nil
	})
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if overwolf != "Overwolf=1:badges=a,b,c" {
		t.Fatalf("composite value = %q", overwolf)
	}

	// absent composite keys are skipped without invoking the decoder
	called := false
	err = d.Composite("absent", func(string) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Fatalf("Composite on absent key: called=%v err=%v", called, err)
	}
}

func TestDecoderScopes(t *testing.T) {
	d := NewDecoder([]byte("outer=1 inner=2"))
	d.PushScope()
	if v, err := d.Int("inner"); err != nil || v != 2 {
		t.Fatalf("inner = %d, err %v", v, err)
	}
	d.PopScope()
	// "outer" was stashed into the pushed scope and discarded with it
	if _, err := d.String("outer"); err == nil {
		t.Fatalf("outer survived PopScope")
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus([]byte("error id=0 msg=ok"))
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}
	if !st.OK() || st.Msg != "ok" {
		t.Fatalf("status = %+v", st)
	}

	st, err = ParseStatus([]byte(`error id=2568 msg=insufficient\sclient\spermissions failed_permid=4 extra_msg=hint`))
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}
	if st.OK() || st.ID != 2568 || st.Msg != "insufficient client permissions" || st.ExtraMsg != "hint" {
		t.Fatalf("status = %+v", st)
	}

	if _, err = ParseStatus([]byte("warning id=0 msg=ok")); err == nil {
		t.Fatalf("ParseStatus accepted a non-status line")
	}
}
