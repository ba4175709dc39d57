package visualquery

import (
	"encoding/json"
	"strings"

	"hermannm.dev/enumnames"
)

// Direction is the sort order of an ORDER BY entry.
type Direction uint8

const (
	DirectionAscending Direction = iota + 1
	DirectionDescending
)

var directionNames = enumnames.NewMap(map[Direction]string{
	DirectionAscending:  "ASC",
	DirectionDescending: "DESC",
})

func (direction Direction) IsValid() bool {
	return directionNames.ContainsEnumValue(direction)
}

// String returns the SQL keyword. An unset direction sorts ascending.
func (direction Direction) String() string {
	return directionNames.GetNameOrFallback(direction, "ASC")
}

func (direction Direction) MarshalJSON() ([]byte, error) {
	if !direction.IsValid() {
		return directionNames.MarshalToNameJSON(DirectionAscending)
	}
	return directionNames.MarshalToNameJSON(direction)
}

// UnmarshalJSON matches the keyword case-insensitively. Anything it does not
// recognise leaves the direction unset.
func (direction *Direction) UnmarshalJSON(bytes []byte) error {
	*direction = 0
	var name string
	if err := json.Unmarshal(bytes, &name); err != nil {
		return nil
	}
	normalized, err := json.Marshal(strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return nil
	}
	var parsed Direction
	if err := directionNames.UnmarshalFromNameJSON(normalized, &parsed); err == nil {
		*direction = parsed
	}
	return nil
}
