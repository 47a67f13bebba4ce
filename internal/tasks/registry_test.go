package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFixedPointValues(t *testing.T) {
	registry := NewRegistry()

	cases := []struct {
		taskType Type
		points   int
	}{
		{TypePlantation, 30},
		{TypeWasteManagement, 20},
		{TypeStrayAnimalFeeding, 15},
	}
	for _, tc := range cases {
		def, err := registry.Resolve(tc.taskType)
		require.NoError(t, err)
		assert.Equal(t, tc.points, def.Points)
		assert.Equal(t, tc.taskType, def.Type)
		assert.NotEmpty(t, def.DetectorRef)
		assert.Contains(t, def.RequiredEntities, EntityPerson)
	}
}

func TestResolveUnknownTask(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve("tree_hugging")
	assert.ErrorIs(t, err, ErrUnknownTask)

	_, err = registry.Resolve("")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestNewRegistryFromValidation(t *testing.T) {
	valid := Definition{
		Type:             "composting",
		Label:            "Composting",
		Points:           10,
		DetectorRef:      "compost_v1",
		RequiredEntities: []string{EntityPerson, "compost"},
	}

	cases := []struct {
		name   string
		mutate func(Definition) []Definition
	}{
		{"zero points", func(d Definition) []Definition {
			d.Points = 0
			return []Definition{d}
		}},
		{"missing detector ref", func(d Definition) []Definition {
			d.DetectorRef = ""
			return []Definition{d}
		}},
		{"no person entity", func(d Definition) []Definition {
			d.RequiredEntities = []string{"compost", "bin"}
			return []Definition{d}
		}},
		{"single entity", func(d Definition) []Definition {
			d.RequiredEntities = []string{EntityPerson}
			return []Definition{d}
		}},
		{"duplicate type", func(d Definition) []Definition {
			return []Definition{d, d}
		}},
		{"empty type", func(d Definition) []Definition {
			d.Type = ""
			return []Definition{d}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistryFrom(tc.mutate(valid))
			assert.Error(t, err)
		})
	}

	r, err := NewRegistryFrom([]Definition{valid})
	require.NoError(t, err)
	def, err := r.Resolve("composting")
	require.NoError(t, err)
	assert.Equal(t, "compost", def.ActivityEntity())
}

func TestAllOrdered(t *testing.T) {
	registry := NewRegistry()

	all := registry.All()
	require.Len(t, all, 3)
	assert.Equal(t, TypePlantation, all[0].Type)
	assert.Equal(t, TypeStrayAnimalFeeding, all[1].Type)
	assert.Equal(t, TypeWasteManagement, all[2].Type)
}
