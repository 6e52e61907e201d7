package location

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// ErrUnknownTerritory is returned when a commune or EPCI code cannot be found
var ErrUnknownTerritory = errors.New("unknown territory")

// Commune is a French municipality (or a municipal arrondissement) with the
// codes used to key reference data
type Commune struct {
	Insee      string `json:"insee"`
	Name       string `json:"nom,omitempty"`
	Epci       string `json:"epci,omitempty"`
	ZPC        string `json:"zpc,omitempty"`
	Region     string `json:"region,omitempty"`
	Department string `json:"departement,omitempty"`
	Population int    `json:"population,omitempty"`
	// Arrondissement marks communes added by the municipal arrondissement expansion
	Arrondissement bool `json:"arrondissement,omitempty"`
}

// EPCI is an intermunicipal grouping
type EPCI struct {
	Code       string   `json:"code"`
	Name       string   `json:"nom"`
	Members    []string `json:"membres"`
	Population int      `json:"populationTotale"`
}

// Location is a resolved territory: the communes the engines iterate over
type Location struct {
	Epci     *EPCI     `json:"epci,omitempty"`
	Communes []Commune `json:"communes"`
}

// Code returns the territory code used in cache keys and exports
func (l *Location) Code() string {
	if l.Epci != nil {
		return l.Epci.Code
	}
	if len(l.Communes) == 1 {
		return l.Communes[0].Insee
	}
	codes := make([]string, 0, len(l.Communes))
	for _, c := range l.Communes {
		if !c.Arrondissement {
			codes = append(codes, c.Insee)
		}
	}
	return strings.Join(codes, "+")
}

// Population sums the population of the communes of the location
func (l *Location) Population() int {
	total := 0
	for _, c := range l.Communes {
		total += c.Population
	}
	return total
}

// Request names the territories to resolve
type Request struct {
	Epcis    []string `json:"epcis,omitempty"`
	Communes []string `json:"communes,omitempty"`
}

// CommuneRecord is the persisted commune row
type CommuneRecord struct {
	Insee      string `gorm:"primaryKey;size:5"`
	Name       string `gorm:"not null"`
	Epci       string `gorm:"size:9;index"`
	ZPC        string `gorm:"column:zpc;size:16"`
	Region     string `gorm:"size:3"`
	Department string `gorm:"size:3"`
	Population int
}

// TableName overrides the gorm table name
func (CommuneRecord) TableName() string {
	return "communes"
}

// ToCommune converts the record to the domain type
func (r CommuneRecord) ToCommune() Commune {
	return Commune{
		Insee:      r.Insee,
		Name:       r.Name,
		Epci:       r.Epci,
		ZPC:        r.ZPC,
		Region:     r.Region,
		Department: r.Department,
		Population: r.Population,
	}
}

// EpciRecord is the persisted EPCI row, members stored as a postgres text array
type EpciRecord struct {
	Code       string         `gorm:"primaryKey;size:9"`
	Name       string         `gorm:"not null;index"`
	Members    pq.StringArray `gorm:"type:text[]"`
	Population int
}

// TableName overrides the gorm table name
func (EpciRecord) TableName() string {
	return "epcis"
}

// ToEPCI converts the record to the domain type
func (r EpciRecord) ToEPCI() EPCI {
	return EPCI{
		Code:       r.Code,
		Name:       r.Name,
		Members:    []string(r.Members),
		Population: r.Population,
	}
}
