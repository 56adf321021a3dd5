// Package formid resolves plugin-relative FormIDs into load order qualified
// identifiers.
//
// A raw FormID is a uint32 whose high byte selects a plugin slot: slots
// 0..n-1 name the file's n masters in declaration order and slot n names the
// file itself. Raw values from different files must never be compared
// directly; resolve them first.
package formid

import (
	"fmt"

	"github.com/ssargent/espkit/pkg/codec"
)

const (
	slotShift = 24
	localMask = 0x00FFFFFF
)

// ID is a resolved FormID. Two IDs are equal iff they name the same object.
type ID struct {
	Plugin uint32 `json:"plugin"`
	Local  uint32 `json:"local"`
}

// IsNull reports whether the ID is the null reference.
func (id ID) IsNull() bool {
	return id == ID{}
}

func (id ID) String() string {
	return fmt.Sprintf("%02X:%06X", id.Plugin, id.Local)
}

// Slot returns the plugin slot byte of a raw FormID.
func Slot(raw uint32) uint32 {
	return raw >> slotShift
}

// Local returns the object bits of a raw FormID.
func Local(raw uint32) uint32 {
	return raw & localMask
}

// Resolve maps raw, read from the plugin at load order index self, through
// that plugin's masters (given as load order indexes). A slot equal to the
// master count names the plugin itself. The null FormID resolves to the
// zero ID.
func Resolve(raw uint32, self uint32, masters []uint32) (ID, error) {
	if raw == 0 {
		return ID{}, nil
	}
	slot := Slot(raw)
	switch {
	case slot == uint32(len(masters)):
		return ID{Plugin: self, Local: Local(raw)}, nil
	case slot < uint32(len(masters)):
		return ID{Plugin: masters[slot], Local: Local(raw)}, nil
	}
	return ID{}, &codec.Error{Kind: codec.KindUnresolvedMaster, Want: int(slot), Have: len(masters)}
}
