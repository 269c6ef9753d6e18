package ownet

import (
	"fmt"
	"strings"
)

// Flag is a 32-bit mask carried in the flags field of the header.
//
// Requests use it to ask for options, responses use it to report what the server granted.
type Flag uint32

const (
	FlagIncludeSpecialDirs Flag = 0x00000001
	FlagBusRet             Flag = 0x00000002
	FlagPersistence        Flag = 0x00000004
	FlagAlias              Flag = 0x00000008
	FlagSafeMode           Flag = 0x00000010
	FlagUncached           Flag = 0x00000020
	FlagOwnet              Flag = 0x00000100
)

// Temperature scale group.
const (
	TempCelsius    Flag = 0x00000000
	TempFahrenheit Flag = 0x00010000
	TempKelvin     Flag = 0x00020000
	TempRankine    Flag = 0x00030000
)

// Pressure scale group.
const (
	PressureMbar Flag = 0x00000000
	PressureAtm  Flag = 0x00040000
	PressureMmHg Flag = 0x00080000
	PressureInHg Flag = 0x000C0000
	PressurePsi  Flag = 0x00100000
	PressurePa   Flag = 0x00140000
)

// Device address display group.
const (
	FormatFdotI     Flag = 0x00000000
	FormatFI        Flag = 0x01000000
	FormatFdotIdotC Flag = 0x02000000
	FormatFdotIC    Flag = 0x03000000
	FormatFIdotC    Flag = 0x04000000
	FormatFIC       Flag = 0x05000000
)

var flagNames = map[string]Flag{
	"include_special_dirs": FlagIncludeSpecialDirs,
	"bus_ret":              FlagBusRet,
	"persistence":          FlagPersistence,
	"alias":                FlagAlias,
	"safemode":             FlagSafeMode,
	"uncached":             FlagUncached,
	"ownet":                FlagOwnet,

	"celsius":    TempCelsius,
	"fahrenheit": TempFahrenheit,
	"kelvin":     TempKelvin,
	"rankine":    TempRankine,

	"mbar": PressureMbar,
	"atm":  PressureAtm,
	"mmhg": PressureMmHg,
	"inhg": PressureInHg,
	"psi":  PressurePsi,
	"pa":   PressurePa,

	"f.i":   FormatFdotI,
	"fi":    FormatFI,
	"f.i.c": FormatFdotIdotC,
	"f.ic":  FormatFdotIC,
	"fi.c":  FormatFIdotC,
	"fic":   FormatFIC,
}

// FlagsFrom ORs every flag into base. The order of flags does not affect the result.
func FlagsFrom(base Flag, flags ...Flag) Flag {
	for _, f := range flags {
		base |= f
	}

	return base
}

// Has reports whether every bit of mask is set in f.
func (f Flag) Has(mask Flag) bool {
	return f&mask == mask
}

// ParseFlag returns the flag with the given name, e.g. "persistence" or "fahrenheit".
// Names are case-insensitive. An unknown name returns an error wrapping ErrUnknownFlag.
func ParseFlag(name string) (Flag, error) {
	f, ok := flagNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
	}

	return f, nil
}

// ParseFlags parses and combines the named flags.
func ParseFlags(names []string) (Flag, error) {
	var result Flag
	for _, name := range names {
		f, err := ParseFlag(name)
		if err != nil {
			return 0, err
		}
		result |= f
	}

	return result, nil
}

// String returns the flag as a hex mask.
func (f Flag) String() string {
	return fmt.Sprintf("0x%08X", uint32(f))
}
