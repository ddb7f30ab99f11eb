package scenario

import (
	"encoding/json"
	"fmt"
)

// scenarioDescriptor mirrors the JSON document a scenario arrives as. The
// modifications stay raw until the discriminant has been read.
type scenarioDescriptor struct {
	ID            string            `json:"id"`
	Description   string            `json:"description"`
	Modifications []json.RawMessage `json:"modifications"`
	FeedChecksums map[string]uint32 `json:"feedChecksums"`
}

// UnmarshalModification decodes a single modification descriptor. The "type"
// field selects the concrete modification; an unknown type is an error so
// that a misspelled descriptor cannot silently become a no-op.
func UnmarshalModification(data []byte) (Modification, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parsing modification: %w", err)
	}

	var mod Modification
	switch head.Type {
	case TypeAdjustSpeed:
		mod = &AdjustSpeed{}
	case TypeAdjustDwellTime:
		mod = &AdjustDwellTime{}
	case TypeRemoveStops:
		mod = &RemoveStops{}
	case TypeAddStops:
		mod = &AddStops{}
	case TypeInsertStop:
		mod = &InsertStop{}
	case TypeAdjustFrequency:
		// Trips not captured by a frequency entry are dropped unless the
		// descriptor explicitly says to keep them.
		mod = &AdjustFrequency{DropTripsOutsideTimePeriod: true}
	case TypeAddTrips:
		mod = &AddTrips{}
	case "":
		return nil, fmt.Errorf("modification has no type field")
	default:
		return nil, fmt.Errorf("unknown modification type %q", head.Type)
	}

	if err := json.Unmarshal(data, mod); err != nil {
		return nil, fmt.Errorf("parsing %s modification: %w", head.Type, err)
	}
	return mod, nil
}

// ParseScenario decodes a scenario JSON document, including all of its
// modifications.
func ParseScenario(data []byte) (*Scenario, error) {
	var desc scenarioDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	s := &Scenario{
		ID:            desc.ID,
		Description:   desc.Description,
		FeedChecksums: desc.FeedChecksums,
	}
	for i, raw := range desc.Modifications {
		mod, err := UnmarshalModification(raw)
		if err != nil {
			return nil, fmt.Errorf("modification %d: %w", i, err)
		}
		s.Modifications = append(s.Modifications, mod)
	}
	return s, nil
}
