package ownet

import "fmt"

// Switch is the on/off symbol accepted as a write value.
type Switch bool

const (
	On  Switch = true
	Off Switch = false
)

// EncodeValue converts a write value to the bytes sent to the server.
//
// Booleans and switches become "1" or "0". Byte slices and strings are sent as is.
// Any other type returns an error wrapping ErrInvalidValue.
func EncodeValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case bool:
		return boolBytes(val), nil
	case Switch:
		return boolBytes(bool(val)), nil
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
	}
}

func boolBytes(b bool) []byte {
	if b {
		return []byte{'1'}
	}

	return []byte{'0'}
}
