package liquidity

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/liquidity/date"
	"github.com/rs/zerolog/log"
)

// Target is the weight of a fund in the target model.
type Target struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Percent Percent `json:"percent"`
}

// Provision is a provision line already parsed from an administrator report.
// Value is signed, negative for outflows.
type Provision struct {
	Description   string    `json:"description"`
	OperationDate date.Date `json:"operation_date"`
	SettleDate    date.Date `json:"settlement_date"`
	Value         Money     `json:"value"`
}

// Snapshot is the structured input of every run: the portfolio as of today
// with its pending movements and target model.
type Snapshot struct {
	// Today is the simulation start. A zero date means the current day.
	Today      date.Date   `json:"today"`
	Caixa      Money       `json:"caixa"`
	NAV        Money       `json:"nav"`
	Positions  []Position  `json:"positions"`
	Catalog    Catalog     `json:"catalog,omitempty"`
	Targets    []Target    `json:"targets,omitempty"`
	Movements  []Movement  `json:"movements,omitempty"`
	Provisions []Provision `json:"provisions,omitempty"`
}

// On returns the snapshot's today, or fallback when it has none.
func (s *Snapshot) On(fallback date.Date) date.Date {
	if s.Today.IsZero() {
		return fallback
	}
	return s.Today
}

// CashSet returns the cash-equivalent codes of the snapshot positions.
func (s *Snapshot) CashSet() CashSet {
	set, _ := CashEquivalents(s.Positions, nil)
	return set
}

// EffectiveCash returns CAIXA plus the cash-equivalent positions.
func (s *Snapshot) EffectiveCash() Money {
	return EffectiveCash(s.Caixa, s.Positions, s.CashSet())
}

// DecodeSnapshot reads a JSON snapshot.
//
// Movements are decoded one at a time. A movement that does not decode, has
// a negative value or settles before its request is skipped with a warning,
// the rest of the snapshot is kept.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var raw struct {
		Snapshot
		Movements []json.RawMessage `json:"movements,omitempty"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	s := raw.Snapshot
	s.Movements = make([]Movement, 0, len(raw.Movements))
	for i, data := range raw.Movements {
		m, err := decodeMovement(data)
		if err != nil {
			log.Warn().Err(err).Int("movement", i).Msg("skipping invalid movement")
			continue
		}
		s.Movements = append(s.Movements, m)
	}
	return &s, nil
}

// decodeMovement decodes one pending movement and checks it can be simulated.
func decodeMovement(data []byte) (Movement, error) {
	var m Movement
	if err := json.Unmarshal(data, &m); err != nil {
		return m, err
	}
	if m.Value.IsNegative() {
		return m, fmt.Errorf("%s has a negative value %v", m.FundName, m.Value)
	}
	if !m.SettleDate.IsZero() && !m.RequestDate.IsZero() && m.SettleDate.Before(m.RequestDate) {
		return m, fmt.Errorf("%s settles on %v before its request on %v", m.FundName, m.SettleDate, m.RequestDate)
	}
	return m, nil
}

// DecodeCatalog reads a liquidation catalog from JSON. When selector is not
// empty it is a jsonpath expression that selects the array of rows inside a
// larger export, "$.data.funds" for instance.
func DecodeCatalog(r io.Reader, selector string) (Catalog, error) {
	var c Catalog
	if selector == "" {
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return nil, fmt.Errorf("decoding catalog: %w", err)
		}
		return c, nil
	}

	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	rows, err := jsonpath.Get(selector, doc)
	if err != nil {
		return nil, fmt.Errorf("selecting catalog rows %q: %w", selector, err)
	}
	// a selector ending on a single array comes back wrapped in a list of one
	if list, ok := rows.([]any); ok && len(list) == 1 {
		if inner, ok := list[0].([]any); ok {
			rows = inner
		}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("selecting catalog rows %q: %w", selector, err)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog rows %q: %w", selector, err)
	}
	return c, nil
}
