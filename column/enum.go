package column

import (
	"encoding/binary"

	"github.com/cloudflare/ch-native/chtype"
	"github.com/pkg/errors"
)

// validateEnum checks that every row's underlying integer value is
// present in t's mapping, surfacing the "enum key absent from mapping"
// reader error condition the component design names.
func validateEnum(t chtype.Type, values []byte) error {
	known := make(map[int16]struct{}, len(t.EnumValues))
	for _, v := range t.EnumValues {
		known[v.Value] = struct{}{}
	}
	width := 1
	if t.Kind == chtype.KindEnum16 {
		width = 2
	}
	rows := len(values) / width
	for i := 0; i < rows; i++ {
		var v int16
		if width == 1 {
			v = int16(int8(values[i]))
		} else {
			v = int16(binary.LittleEndian.Uint16(values[i*2 : i*2+2]))
		}
		if _, ok := known[v]; !ok {
			return errors.Errorf("column: enum value %d absent from mapping for %s", v, chtype.Print(t))
		}
	}
	return nil
}
