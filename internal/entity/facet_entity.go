package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Facet is a named filter dimension with the values a document must carry.
type Facet struct {
	Id     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Values []string  `json:"values"`
}

func NewFacet(name string, values ...string) Facet {
	return Facet{
		Id:     uuid.New(),
		Name:   name,
		Values: append([]string{}, values...),
	}
}

func (f Facet) HasValue(value string) bool {
	for _, v := range f.Values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
