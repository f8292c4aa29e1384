package payload

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestEncodeUpsertUser(t *testing.T) {
	is := is.New(t)

	enc := LineEncoder{}
	out, err := enc.Encode(UpsertUser{Code: "1042", Name: "Aye Chan", Privilege: 0, Credential: "9988", CardNumber: "0005551042"})
	is.NoErr(err)

	lines := strings.Split(out, "\n")
	is.Equal(lines[0], "OP=UPSERT_USER")
	is.Equal(lines[1], "CODE=1042")
	is.Equal(lines[2], "NAME=Aye Chan")
	is.Equal(lines[3], "PRI=0")
	is.Equal(lines[4], "PASSWD=9988")
	is.Equal(lines[5], "CARD=0005551042")
}

func TestEncodeDeleteUser(t *testing.T) {
	is := is.New(t)

	out, err := LineEncoder{}.Encode(DeleteUser{Code: "77"})
	is.NoErr(err)
	is.Equal(out, "OP=DELETE_USER\nCODE=77")
}

func TestEncodeClearAll(t *testing.T) {
	is := is.New(t)

	out, err := LineEncoder{}.Encode(ClearAll{})
	is.NoErr(err)
	is.Equal(out, "OP=CLEAR_ALL")
}

func TestEncodeRejectsEmptyCode(t *testing.T) {
	is := is.New(t)

	_, err := LineEncoder{}.Encode(UpsertUser{Name: "no code"})
	is.True(err != nil)

	_, err = LineEncoder{}.Encode(DeleteUser{})
	is.True(err != nil)
}

func TestEncodeSanitizesNewlines(t *testing.T) {
	is := is.New(t)

	out, err := LineEncoder{}.Encode(UpsertUser{Code: "1", Name: "two\nlines"})
	is.NoErr(err)
	is.Equal(len(strings.Split(out, "\n")), 6)
}
