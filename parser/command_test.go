package parser

import (
	"bytes"
	"testing"
)

func TestCommandVerbOnly(t *testing.T) {
	if got := NewCommand("version").String(); got != "version" {
		t.Fatalf("Command = %q", got)
	}
}

func TestCommandArgs(t *testing.T) {
	cmd := NewCommand("login").
		Arg("client_login_name", "serveradmin").
		Arg("client_login_password", "se cr|et")

	want := `login client_login_name=serveradmin client_login_password=se\scr\pet`
	if got := cmd.String(); got != want {
		t.Fatalf("Command = %q, expected %q", got, want)
	}
}

func TestCommandTypedArgs(t *testing.T) {
	cmd := NewCommand("channeledit").
		ArgInt("cid", 42).
		ArgBool("channel_flag_permanent", true).
		ArgBool("channel_flag_password", false).
		ArgFloat("channel_priority", 0.5)

	want := "channeledit cid=42 channel_flag_permanent=1 channel_flag_password=0 channel_priority=0.5"
	if got := cmd.String(); got != want {
		t.Fatalf("Command = %q, expected %q", got, want)
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := NewCommand("clientlist").
		Flag("uid", true).
		Flag("away", false).
		Flag("voice", true)

	if got := cmd.String(); got != "clientlist -uid -voice" {
		t.Fatalf("Command = %q", got)
	}
}

func TestCommandOptArgs(t *testing.T) {
	pw := "secret"
	cmd := NewCommand("clientmove").
		ArgInt("clid", 1).
		ArgInt("cid", 2).
		OptArg("cpw", &pw).
		OptArg("other", nil).
		OptArgInt("n", nil).
		OptArgBool("b", nil)

	if got := cmd.String(); got != "clientmove clid=1 cid=2 cpw=secret" {
		t.Fatalf("Command = %q", got)
	}
}

func TestCommandLists(t *testing.T) {
	cmd := NewCommand("clientmove").
		ArgIntList("clid", []int{1, 2, 3}).
		ArgInt("cid", 10)

	if got := cmd.String(); got != "clientmove clid=1|clid=2|clid=3 cid=10" {
		t.Fatalf("Command = %q", got)
	}

	cmd = NewCommand("x").ArgList("name", []string{"a b", "c"})
	if got := cmd.String(); got != `x name=a\sb|name=c` {
		t.Fatalf("Command = %q", got)
	}

	// empty lists are no-ops
	cmd = NewCommand("x").ArgIntList("clid", nil).ArgList("name", nil).ArgInt("cid", 1)
	if got := cmd.String(); got != "x cid=1" {
		t.Fatalf("Command = %q", got)
	}
}

type permEntry struct {
	id    string
	value int
}

func (p permEntry) EncodeList(c *Command) {
	c.Arg("permsid", p.id).ArgInt("permvalue", p.value)
}

func TestCommandMultiList(t *testing.T) {
	cmd := NewCommand("channeladdperm").
		ArgInt("cid", 7).
		MultiList([]ListEncoder{
			permEntry{"b_channel_join", 1},
			permEntry{"i_channel_needed_talk_power", 50},
		})

	want := "channeladdperm cid=7 permsid=b_channel_join permvalue=1|permsid=i_channel_needed_talk_power permvalue=50"
	if got := cmd.String(); got != want {
		t.Fatalf("Command = %q, expected %q", got, want)
	}
}

func TestCommandRaw(t *testing.T) {
	cmd := NewCommand("servernotifyregister").Raw("event=server")
	if got := cmd.String(); got != "servernotifyregister event=server" {
		t.Fatalf("Command = %q", got)
	}
}

func TestCommandBytesTerminator(t *testing.T) {
	b := NewCommand("version").Bytes()
	if !bytes.Equal(b, []byte("version\n\r")) {
		t.Fatalf("Bytes = %q", b)
	}

	// the terminator is appended per dispatch, never accumulated
	cmd := NewCommand("version")
	cmd.Bytes()
	if !bytes.Equal(cmd.Bytes(), []byte("version\n\r")) {
		t.Fatalf("Bytes not stable: %q", cmd.Bytes())
	}
}
