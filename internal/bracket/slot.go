package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type SlotKind uint8

const (
	SlotEmpty SlotKind = iota
	SlotBye
	SlotParticipant
)

func (k SlotKind) String() string {
	switch k {
	case SlotBye:
		return "bye"
	case SlotParticipant:
		return "participant"
	default:
		return "empty"
	}
}

// Slot is one side of a match: not yet decided, a bye, or a participant.
// The zero value is an empty slot.
type Slot struct {
	kind SlotKind
	id   string
}

var Bye = Slot{kind: SlotBye}

func Participant(id string) Slot {
	return Slot{kind: SlotParticipant, id: id}
}

func (s Slot) Kind() SlotKind      { return s.kind }
func (s Slot) IsEmpty() bool       { return s.kind == SlotEmpty }
func (s Slot) IsBye() bool         { return s.kind == SlotBye }
func (s Slot) IsParticipant() bool { return s.kind == SlotParticipant }

// ID returns the participant identifier and whether the slot holds one.
func (s Slot) ID() (string, bool) {
	return s.id, s.kind == SlotParticipant
}

func (s Slot) String() string {
	if s.kind == SlotParticipant {
		return s.id
	}
	return "<" + s.kind.String() + ">"
}

// Stored as NULL for empty, "bye" for a bye and "p:<id>" for a participant so
// a participant literally named "bye" survives a round trip.
const (
	byeValue          = "bye"
	participantPrefix = "p:"
)

func (s Slot) Value() (driver.Value, error) {
	switch s.kind {
	case SlotEmpty:
		return nil, nil
	case SlotBye:
		return byeValue, nil
	default:
		return participantPrefix + s.id, nil
	}
}

func (s *Slot) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = Slot{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Slot", src)
	}

	switch {
	case raw == byeValue:
		*s = Bye
	case strings.HasPrefix(raw, participantPrefix):
		*s = Participant(strings.TrimPrefix(raw, participantPrefix))
	default:
		return fmt.Errorf("invalid slot value %q", raw)
	}
	return nil
}

type slotJSON struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON{Kind: s.kind.String(), ID: s.id})
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Slot{}
		return nil
	}
	var v slotJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "", "empty":
		*s = Slot{}
	case "bye":
		*s = Bye
	case "participant":
		*s = Participant(v.ID)
	default:
		return fmt.Errorf("invalid slot kind %q", v.Kind)
	}
	return nil
}
