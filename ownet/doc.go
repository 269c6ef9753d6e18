// Package ownet provides the packet codec of the owserver network protocol, the protocol spoken by
// the 1-Wire bus bridge daemon of OWFS.
//
// Every frame starts with a fixed 24-byte header made of six big-endian 32-bit integers, followed by
// an optional payload. The package builds outgoing request frames, decodes incoming response headers
// and defines the types shared by the rest of the module.
//
// Message Types:
// The package defines constants for every message type understood by owserver:
//   - MsgNop:  Ping, used to check that the link is alive.
//   - MsgRead, MsgWrite: Read or write the value of a property.
//   - MsgDir, MsgDirAll, MsgDirAllSlash: Directory listings.
//   - MsgPresent: Check whether a path exists on the bus.
//   - MsgSize, MsgGet, MsgGetSlash: Size query and combined read/dir requests.
//
// Flags:
// Flag values are fixed 32-bit masks combined with FlagsFrom. Groups such as the temperature scale,
// pressure scale and address display format are exclusive by convention only; combining two values
// of the same group is not rejected.
//
// Error Resolution:
// A negative return code in a response header is reported as a *ProtocolError carrying the absolute
// code. ErrorTable translates such codes into text using the catalog published by the server at
// ReturnCodesPath.
//
// The package has no side effects and performs no I/O.
package ownet
