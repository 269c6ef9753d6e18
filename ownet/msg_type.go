package ownet

import "strconv"

// MsgType is the message type code carried in the type field of a request header.
type MsgType int32

const (
	MsgError       MsgType = 0
	MsgNop         MsgType = 1
	MsgRead        MsgType = 2
	MsgWrite       MsgType = 3
	MsgDir         MsgType = 4
	MsgSize        MsgType = 5
	MsgPresent     MsgType = 6
	MsgDirAll      MsgType = 7
	MsgGet         MsgType = 8
	MsgDirAllSlash MsgType = 9
	MsgGetSlash    MsgType = 10
)

var msgTypeNames = [...]string{
	MsgError:       "error",
	MsgNop:         "nop",
	MsgRead:        "read",
	MsgWrite:       "write",
	MsgDir:         "dir",
	MsgSize:        "size",
	MsgPresent:     "present",
	MsgDirAll:      "dirall",
	MsgGet:         "get",
	MsgDirAllSlash: "dirallslash",
	MsgGetSlash:    "getslash",
}

// String returns the lower-case name of the message type.
func (t MsgType) String() string {
	if t >= 0 && int(t) < len(msgTypeNames) {
		return msgTypeNames[t]
	}

	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is one of the defined message types.
func (t MsgType) Valid() bool {
	return t >= MsgError && t <= MsgGetSlash
}
