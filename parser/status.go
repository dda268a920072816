package parser

// Status is the parsed form of the terminating line of a response. An ID of
// zero means the command succeeded.
type Status struct {
	ID       int
	Msg      string
	ExtraMsg string
}

// OK reports whether the status signals success.
func (s Status) OK() bool {
	return s.ID == 0
}

// ParseStatus decodes a status line of the form
// "error id=0 msg=ok" with an optional extra_msg.
func ParseStatus(line []byte) (Status, error) {
	d := NewDecoder(line)

	name, err := d.DecodeName()
	if err != nil {
		return Status{}, err
	}
	if name != "error" {
		return Status{}, &UnexpectedTokenError{Token: name, Want: "error"}
	}

	var st Status
	if st.ID, err = d.Int("id"); err != nil {
		return Status{}, err
	}
	if st.Msg, err = d.String("msg"); err != nil {
		return Status{}, err
	}
	if st.ExtraMsg, err = d.StringDefault("extra_msg", ""); err != nil {
		return Status{}, err
	}
	return st, nil
}
