package location

import (
	"context"
	"fmt"
	"sort"
)

// Directory looks up administrative geography
type Directory interface {
	Commune(ctx context.Context, insee string) (*Commune, error)
	Epci(ctx context.Context, code string) (*EPCI, error)
	EpciCommunes(ctx context.Context, code string) ([]Commune, error)
	ListEpcis(ctx context.Context) ([]EPCI, error)
}

// StaticDirectory is an in-memory Directory, used when geography is loaded
// from a workbook rather than the database
type StaticDirectory struct {
	communes map[string]Commune
	epcis    map[string]EPCI
}

// NewStaticDirectory indexes the given communes and EPCIs
func NewStaticDirectory(communes []Commune, epcis []EPCI) *StaticDirectory {
	d := &StaticDirectory{
		communes: make(map[string]Commune, len(communes)),
		epcis:    make(map[string]EPCI, len(epcis)),
	}
	for _, c := range communes {
		d.communes[c.Insee] = c
	}
	for _, e := range epcis {
		d.epcis[e.Code] = e
	}
	return d
}

// Commune returns the commune with the given INSEE code
func (d *StaticDirectory) Commune(ctx context.Context, insee string) (*Commune, error) {
	c, ok := d.communes[insee]
	if !ok {
		return nil, fmt.Errorf("commune %s: %w", insee, ErrUnknownTerritory)
	}
	return &c, nil
}

// Epci returns the EPCI with the given SIREN code
func (d *StaticDirectory) Epci(ctx context.Context, code string) (*EPCI, error) {
	e, ok := d.epcis[code]
	if !ok {
		return nil, fmt.Errorf("epci %s: %w", code, ErrUnknownTerritory)
	}
	return &e, nil
}

// EpciCommunes returns the member communes of an EPCI sorted by INSEE code.
// Communes are matched on their EPCI code, falling back to the member list.
func (d *StaticDirectory) EpciCommunes(ctx context.Context, code string) ([]Commune, error) {
	epci, err := d.Epci(ctx, code)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []Commune
	for _, c := range d.communes {
		if c.Epci == code {
			out = append(out, c)
			seen[c.Insee] = true
		}
	}
	for _, insee := range epci.Members {
		if seen[insee] {
			continue
		}
		if c, ok := d.communes[insee]; ok {
			out = append(out, c)
			seen[insee] = true
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Insee < out[j].Insee })
	return out, nil
}

// ListEpcis returns every EPCI sorted by name
func (d *StaticDirectory) ListEpcis(ctx context.Context) ([]EPCI, error) {
	out := make([]EPCI, 0, len(d.epcis))
	for _, e := range d.epcis {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
