// FILE: ziplog/src/internal/core/types.go
package core

// Slot names one of the six writers owned by a sink group
type Slot string

const (
	SlotMain             Slot = "main"
	SlotError            Slot = "error"
	SlotErrorDetails     Slot = "errorDetails"
	SlotMainJSON         Slot = "mainJson"
	SlotErrorDetailsJSON Slot = "errorDetailsJson"
	SlotDetailsJSON      Slot = "detailsJson"
)

// Slots lists every slot in write order
var Slots = []Slot{
	SlotMain,
	SlotError,
	SlotErrorDetails,
	SlotMainJSON,
	SlotErrorDetailsJSON,
	SlotDetailsJSON,
}

// FileName returns the on-disk file name of the slot
func (s Slot) FileName() string {
	switch s {
	case SlotMain:
		return "main.log"
	case SlotError:
		return "error.log"
	case SlotErrorDetails:
		return "error-details.log"
	case SlotMainJSON:
		return "main.json.log"
	case SlotErrorDetailsJSON:
		return "error-details.json.log"
	case SlotDetailsJSON:
		return "details.json.log"
	default:
		return string(s) + ".log"
	}
}

// ErrorOnly reports whether the slot only receives entries at the error level or above
func (s Slot) ErrorOnly() bool {
	return s == SlotError || s == SlotErrorDetails || s == SlotErrorDetailsJSON
}

// Valid reports whether s is one of the known slots
func (s Slot) Valid() bool {
	for _, known := range Slots {
		if s == known {
			return true
		}
	}
	return false
}

// KeepDays maps a slot name to the number of days its rotated files are kept.
// A value of 0 disables the slot entirely.
type KeepDays map[string]int

// Get returns the retention for slot and whether it was set
func (k KeepDays) Get(slot Slot) (int, bool) {
	if k == nil {
		return 0, false
	}
	v, ok := k[string(slot)]
	return v, ok
}

// DefaultKeepDays is the retention used for slots no configuration mentions
var DefaultKeepDays = KeepDays{
	string(SlotMain):             14,
	string(SlotError):            30,
	string(SlotErrorDetails):     30,
	string(SlotMainJSON):         14,
	string(SlotErrorDetailsJSON): 30,
	string(SlotDetailsJSON):      7,
}
