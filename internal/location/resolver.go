package location

import (
	"context"
	"fmt"
)

// arrondissements lists the municipal arrondissements of Lyon, Marseille and
// Paris. Land cover and forest data are published at arrondissement level while
// ZPC is published for the parent commune.
var arrondissements = map[string][]string{
	"69123": {
		"69381", "69382", "69383", "69384", "69385", "69386",
		"69387", "69388", "69389",
	},
	"13055": {
		"13201", "13202", "13203", "13204", "13205", "13206",
		"13207", "13208", "13209", "13210", "13211", "13212",
		"13213", "13214", "13215", "13216",
	},
	"75056": {
		"75101", "75102", "75103", "75104", "75105", "75106",
		"75107", "75108", "75109", "75110", "75111", "75112",
		"75113", "75114", "75115", "75116", "75117", "75118",
		"75119", "75120",
	},
}

// Arrondissements returns the arrondissement INSEE codes of a commune, if any
func Arrondissements(insee string) []string {
	return append([]string(nil), arrondissements[insee]...)
}

// Resolver turns a territory request into the list of communes to compute
type Resolver struct {
	directory Directory
}

// NewResolver creates a new resolver over a geography directory
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve combines the communes of the requested EPCIs with the extra
// communes, without duplicates, then expands arrondissements. When exactly one
// EPCI is requested it is attached to the location.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Location, error) {
	if len(req.Epcis) == 0 && len(req.Communes) == 0 {
		return nil, fmt.Errorf("empty territory request: %w", ErrUnknownTerritory)
	}

	loc := &Location{}
	seen := make(map[string]bool)

	for _, code := range req.Epcis {
		epci, err := r.directory.Epci(ctx, code)
		if err != nil {
			return nil, err
		}
		if len(req.Epcis) == 1 {
			loc.Epci = epci
		}
		members, err := r.directory.EpciCommunes(ctx, code)
		if err != nil {
			return nil, err
		}
		for _, c := range members {
			if !seen[c.Insee] {
				seen[c.Insee] = true
				loc.Communes = append(loc.Communes, c)
			}
		}
	}

	for _, insee := range req.Communes {
		if seen[insee] {
			continue
		}
		c, err := r.directory.Commune(ctx, insee)
		if err != nil {
			return nil, err
		}
		seen[insee] = true
		loc.Communes = append(loc.Communes, *c)
	}

	loc.Communes = ExpandArrondissements(loc.Communes)
	return loc, nil
}

// ExpandArrondissements appends the arrondissements of Lyon, Marseille and
// Paris after the communes list. Arrondissements inherit the ZPC and EPCI of
// their parent commune and carry no population of their own.
func ExpandArrondissements(communes []Commune) []Commune {
	out := append([]Commune(nil), communes...)
	present := make(map[string]bool, len(communes))
	for _, c := range communes {
		present[c.Insee] = true
	}
	for _, c := range communes {
		for _, insee := range arrondissements[c.Insee] {
			if present[insee] {
				continue
			}
			present[insee] = true
			out = append(out, Commune{
				Insee:          insee,
				Name:           fmt.Sprintf("%s %s", c.Name, insee),
				Epci:           c.Epci,
				ZPC:            c.ZPC,
				Region:         c.Region,
				Department:     c.Department,
				Arrondissement: true,
			})
		}
	}
	return out
}
