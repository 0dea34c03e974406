package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	data := []byte(`
items:
  - name: "Puppy Bowl Pickup"
    title: "Truck ad with puppies"
    category: auto
    attributes:
      brand: Ridgeline Motors
      length_sec: 60
  - id: 2b8f6f0c-1d0e-4a8e-9a3c-55d5c0a1e111
    name: "Cola Polar Bears"
    title: "Bears share a soda"
`)
	items, err := parseCatalog(data)
	require.NoError(t, err)
	require.Len(t, items, 2)

	want := uuid.NewSHA1(catalogNamespace, []byte("puppy bowl pickup")).String()
	assert.Equal(t, want, items[0].ID)
	assert.Equal(t, "Ridgeline Motors", items[0].Attributes["brand"])
	assert.Equal(t, "2b8f6f0c-1d0e-4a8e-9a3c-55d5c0a1e111", items[1].ID)

	again, err := parseCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, again[0].ID)
}

func TestParseCatalogRejects(t *testing.T) {
	tests := map[string]string{
		"missing title": "items:\n  - name: A\n",
		"duplicate":     "items:\n  - {name: A, title: x}\n  - {name: a, title: y}\n",
		"bad id":        "items:\n  - {id: nope, name: A, title: x}\n",
		"not yaml":      "items: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseCatalog([]byte(data))
			assert.Error(t, err)
		})
	}
}
