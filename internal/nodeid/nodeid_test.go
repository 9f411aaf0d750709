package nodeid

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_New_Format(t *testing.T) {
	id := NewGenerator().New("dataModel")

	require.True(t, strings.HasPrefix(id, "dataModel-"), "id %q", id)
	assert.Len(t, id, len("dataModel-")+26)
	assert.Equal(t, "dataModel", TypeOf(id))
}

func TestGenerator_New_UniqueWithinOneMillisecond(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGeneratorWith(func() time.Time { return frozen }, bytes.NewReader(bytes.Repeat([]byte{7}, 1<<16)))

	seen := make(map[string]struct{})
	var prev string
	for i := 0; i < 1000; i++ {
		id := g.New("preCheck")
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s at %d", id, i)
		seen[id] = struct{}{}
		assert.Greater(t, id, prev, "ids must sort in creation order")
		prev = id
	}
}

func TestTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGeneratorWith(func() time.Time { return at }, bytes.NewReader(bytes.Repeat([]byte{1}, 64)))

	got, ok := Time(g.New("prerequisite"))
	require.True(t, ok)
	assert.True(t, at.Equal(got.UTC()))

	_, ok = Time("prerequisite-1712000000000-42")
	assert.False(t, ok, "legacy ids carry no ULID")
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "analysisResult", TypeOf("analysisResult-1712000000000-42"))
	assert.Equal(t, "", TypeOf("orphan"))
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"generated", New("dataModel"), true},
		{"legacy timestamp", "dataModel-1712000000000", false},
		{"no prefix", "01ARZ3NDEKTSV4RRFFQ69G5FAV", false},
		{"empty prefix", "-01ARZ3NDEKTSV4RRFFQ69G5FAV", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.id))
		})
	}
}
