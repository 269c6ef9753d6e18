// Package owclient implements the client side of the owserver protocol on top of the codec
// provided by the ownet package.
//
// Session:
// A Session is an immutable value holding the connection configuration, the default request flags
// and at most one open connection. Every operation returns the updated Session, which the caller
// threads through subsequent calls. The connection is created on the first command, kept while the
// server grants persistence, and closed as soon as a response arrives without the persistence bit.
// When an exchange fails because the server closed the socket, the session reconnects and retries
// exactly once; a second failure is reported to the caller.
//
// A Session is not safe for concurrent use. Either serialize access, use one Session per goroutine,
// or use Client, which guards a single Session with a mutex.
//
// Commands:
//   - Ping: NOP request, checks that the link is alive.
//   - Present: reports whether a path exists; a protocol error means "not present".
//   - Dir: lists the entries below a path, in server order.
//   - Read: returns the raw value of a property.
//   - Write: writes a value; booleans and ownet.On/ownet.Off are sent as "1" or "0".
//
// Errors:
// Commands return *ownet.ProtocolError for negative return codes and *ownet.TransportError for
// socket failures. Client resolves protocol error codes to text using the server's catalog.
package owclient
