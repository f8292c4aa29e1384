package payload

import (
	"fmt"
	"strings"
)

// Instruction is one typed operation destined for a terminal. The queue only
// ever stores the encoded form; terminals decode it with their own protocol
// handler, so the wire format lives behind Encoder and can be swapped out.
type Instruction interface {
	Op() string
}

type UpsertUser struct {
	Code       string
	Name       string
	Privilege  int
	Credential string
	CardNumber string
}

func (UpsertUser) Op() string { return "UPSERT_USER" }

type DeleteUser struct {
	Code string
}

func (DeleteUser) Op() string { return "DELETE_USER" }

// ClearAll wipes the user table on a terminal before a full resync.
type ClearAll struct{}

func (ClearAll) Op() string { return "CLEAR_ALL" }

type Encoder interface {
	Encode(Instruction) (string, error)
}

// LineEncoder renders the line-oriented key=value format the terminal fleet
// speaks: first line is the op, each field on its own line.
type LineEncoder struct{}

func (LineEncoder) Encode(in Instruction) (string, error) {
	var b strings.Builder
	b.WriteString("OP=")
	b.WriteString(in.Op())

	writeField := func(key, value string) {
		b.WriteByte('\n')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(sanitize(value))
	}

	switch v := in.(type) {
	case UpsertUser:
		if v.Code == "" {
			return "", fmt.Errorf("upsert user: empty code")
		}
		writeField("CODE", v.Code)
		writeField("NAME", v.Name)
		writeField("PRI", fmt.Sprintf("%d", v.Privilege))
		writeField("PASSWD", v.Credential)
		writeField("CARD", v.CardNumber)
	case DeleteUser:
		if v.Code == "" {
			return "", fmt.Errorf("delete user: empty code")
		}
		writeField("CODE", v.Code)
	case ClearAll:
	default:
		return "", fmt.Errorf("unknown instruction %T", in)
	}
	return b.String(), nil
}

// sanitize keeps the one-field-per-line framing intact.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
