// Package tasks holds the closed set of conservation-activity types the
// verification pipeline can score.
package tasks

import (
	"errors"
	"fmt"
	"sort"
)

// Type identifies a supported conservation activity
type Type string

const (
	TypePlantation         Type = "plantation"
	TypeWasteManagement    Type = "waste_management"
	TypeStrayAnimalFeeding Type = "stray_animal_feeding"
)

// ErrUnknownTask is returned when a submission claims a task type
// outside the registry.
var ErrUnknownTask = errors.New("unknown task type")

// Definition binds a task type to its detector, reward and the entity
// classes that must appear together in the frame.
type Definition struct {
	Type             Type     `json:"type"`
	Label            string   `json:"label"`
	Points           int      `json:"points"`
	DetectorRef      string   `json:"detector_ref"`
	RequiredEntities []string `json:"required_entities"`
}

// ActivityEntity returns the activity-specific entity class, i.e. every
// required entity except "person".
func (d Definition) ActivityEntity() string {
	for _, e := range d.RequiredEntities {
		if e != EntityPerson {
			return e
		}
	}
	return ""
}

// EntityPerson is the entity class every task requires alongside its
// activity-specific class.
const EntityPerson = "person"

// Registry is the read-only task lookup table. It is populated once at
// startup and never mutated afterwards.
type Registry struct {
	defs map[Type]Definition
}

// NewRegistry builds the default registry.
func NewRegistry() *Registry {
	r, err := NewRegistryFrom(DefaultDefinitions())
	if err != nil {
		// Defaults are static; a failure here is a programming error.
		panic(err)
	}
	return r
}

// NewRegistryFrom builds a registry from explicit definitions,
// validating each entry.
func NewRegistryFrom(defs []Definition) (*Registry, error) {
	m := make(map[Type]Definition, len(defs))
	for _, d := range defs {
		if d.Type == "" {
			return nil, fmt.Errorf("task definition with empty type")
		}
		if _, dup := m[d.Type]; dup {
			return nil, fmt.Errorf("duplicate task definition %q", d.Type)
		}
		if d.Points <= 0 {
			return nil, fmt.Errorf("task %q: points must be positive, got %d", d.Type, d.Points)
		}
		if d.DetectorRef == "" {
			return nil, fmt.Errorf("task %q: missing detector reference", d.Type)
		}
		hasPerson := false
		for _, e := range d.RequiredEntities {
			if e == EntityPerson {
				hasPerson = true
			}
		}
		if !hasPerson || len(d.RequiredEntities) < 2 {
			return nil, fmt.Errorf("task %q: required entities must include %q and an activity class", d.Type, EntityPerson)
		}
		m[d.Type] = d
	}
	return &Registry{defs: m}, nil
}

// DefaultDefinitions returns the built-in task set.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Type:             TypePlantation,
			Label:            "Tree Plantation",
			Points:           30,
			DetectorRef:      "plantation_yolov11",
			RequiredEntities: []string{EntityPerson, "plantation"},
		},
		{
			Type:             TypeWasteManagement,
			Label:            "Waste Collection",
			Points:           20,
			DetectorRef:      "waste_collection_yolov11",
			RequiredEntities: []string{EntityPerson, "collecting-waste"},
		},
		{
			Type:             TypeStrayAnimalFeeding,
			Label:            "Stray Animal Feeding",
			Points:           15,
			DetectorRef:      "animal_feeding_yolov11",
			RequiredEntities: []string{EntityPerson, "animal_feeding"},
		},
	}
}

// Resolve looks up the definition for a task type.
func (r *Registry) Resolve(t Type) (Definition, error) {
	d, ok := r.defs[t]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownTask, t)
	}
	return d, nil
}

// All returns every definition ordered by task type.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
