package models

import "encoding/json"

// Player is a monitored player whose cards the scanner searches for.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sport  Sport  `json:"sport"`
	Active bool   `json:"active"`
}

func (p *Player) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := pickField(raw, "id"); ok {
		p.ID = asString(v)
	}
	if v, ok := pickField(raw, "name"); ok {
		p.Name = asString(v)
	}
	if v, ok := pickField(raw, "sport"); ok {
		p.Sport = Sport(asString(v))
	}
	if v, ok := pickField(raw, "active", "is_active", "isActive"); ok {
		p.Active = asBool(v)
	}
	return nil
}

// Team is an entry in the remote team catalog. Importing a team creates
// players server-side; the team itself has no local lifecycle.
type Team struct {
	Name  string `json:"name"`
	Sport Sport  `json:"sport"`
}
