package ownet

import (
	"bytes"
	"errors"
	"strconv"
)

// ReturnCodesPath is the path where owserver publishes its error catalog.
const ReturnCodesPath = "/settings/return_codes/text.ALL"

// ErrorTable maps absolute return codes to text. It is read-only once built and safe for
// concurrent use. The zero value and a nil *ErrorTable are valid empty tables.
type ErrorTable struct {
	texts []string
}

// BuildErrorTable parses a NUL-terminated, comma-separated catalog. The text at index i
// describes code i.
func BuildErrorTable(catalog []byte) *ErrorTable {
	catalog = bytes.TrimRight(catalog, "\x00")
	if len(catalog) == 0 {
		return &ErrorTable{}
	}

	parts := bytes.Split(catalog, []byte{','})
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = string(p)
	}

	return &ErrorTable{texts: texts}
}

// Len returns the number of codes in the table.
func (t *ErrorTable) Len() int {
	if t == nil {
		return 0
	}

	return len(t.texts)
}

// Lookup returns the text of code, or "Unknown error <code>" when the table has no entry for it.
// Negative codes are looked up by their absolute value.
func (t *ErrorTable) Lookup(code int32) string {
	if code < 0 {
		code = -code
	}
	if t != nil && int(code) < len(t.texts) {
		return t.texts[code]
	}

	return "Unknown error " + strconv.Itoa(int(code))
}

// Resolve fills in the text of a *ProtocolError wrapped by err. Other errors are returned as is.
func (t *ErrorTable) Resolve(err error) error {
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Text != "" {
		return err
	}

	return &ProtocolError{Code: pe.Code, Text: t.Lookup(pe.Code)}
}
