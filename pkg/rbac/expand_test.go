package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testKeys = []string{"tasks.view", "tasks.create", "users.view"}

func TestAllKeys(t *testing.T) {
	keys := AllKeys([]FeatureKeys{
		{ModuleID: "tasks", FeatureIDs: []string{"view", "create"}},
		{ModuleID: "users", FeatureIDs: []string{"view", ""}},
		{ModuleID: "empty"},
	})
	assert.Equal(t, testKeys, keys)
}

func TestExpand(t *testing.T) {
	t.Run("global wildcard expands to every key", func(t *testing.T) {
		assert.Equal(t, Grants{"tasks.view": true, "tasks.create": true, "users.view": true},
			Expand([]string{"*"}, testKeys))
	})

	t.Run("wildcard after other tokens still expands to every key", func(t *testing.T) {
		got := Expand([]string{"tasks.view", "*"}, testKeys)
		assert.Equal(t, Grants{"tasks.view": true, "tasks.create": true, "users.view": true}, got)
		assert.NotContains(t, got, "*")
	})

	t.Run("module wildcard", func(t *testing.T) {
		assert.Equal(t, Grants{"tasks.view": true, "tasks.create": true},
			Expand([]string{"tasks.*"}, testKeys))
	})

	t.Run("module wildcard does not match prefix of another module", func(t *testing.T) {
		got := Expand([]string{"task.*"}, []string{"tasks.view", "task.view"})
		assert.Equal(t, Grants{"task.view": true}, got)
	})

	t.Run("exact tokens pass through verbatim", func(t *testing.T) {
		assert.Equal(t, Grants{"tasks.view": true, "reports.export": true},
			Expand([]string{"tasks.view", "reports.export"}, testKeys))
	})

	t.Run("no tokens", func(t *testing.T) {
		assert.Empty(t, Expand(nil, testKeys))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("wildcard is replaced with explicit keys", func(t *testing.T) {
		got := Normalize(Grants{"*": true}, testKeys)
		assert.Equal(t, Grants{"tasks.view": true, "tasks.create": true, "users.view": true}, got)
	})

	t.Run("all alias is replaced too", func(t *testing.T) {
		got := Normalize(Grants{"all": true, "tasks.view": true}, testKeys)
		assert.NotContains(t, got, "all")
		assert.Len(t, got, 3)
	})

	t.Run("module wildcard is kept", func(t *testing.T) {
		in := Grants{"tasks.*": true}
		got := Normalize(in, testKeys)
		assert.Equal(t, Grants{"tasks.*": true}, got)
		got["users.view"] = true
		assert.NotContains(t, in, "users.view", "Normalize must copy")
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, Grants{}, Normalize(nil, testKeys))
	})
}

func TestActiveKeys(t *testing.T) {
	assert.Equal(t, []string{"a.b", "c.d"}, ActiveKeys(Grants{"c.d": true, "a.b": true, "x.y": false}))
}
