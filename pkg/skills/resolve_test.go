package skills

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSourceMode(t *testing.T) {
	remote := &ResolvedSkill{ID: "remote-skill"}
	local := &ResolvedSkill{ID: "local-skill", Local: true, LocalPath: ".claude/skills/local-skill/"}

	tests := []struct {
		name       string
		skill      *ResolvedSkill
		selections map[string]string
		expected   SourceMode
	}{
		{"remote by default", remote, nil, SourceRemote},
		{"local by default", local, nil, SourceLocalDefault},
		{"remote selection overrides local flag", local, map[string]string{"local-skill": "acme-marketplace"}, SourceForcedRemote},
		{"local selection forces local", remote, map[string]string{"remote-skill": SourceLocal}, SourceForcedLocal},
		{"selection for another skill is ignored", local, map[string]string{"remote-skill": "acme"}, SourceLocalDefault},
		{"empty selection is ignored", remote, map[string]string{"remote-skill": ""}, SourceRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := ResolveSourceMode(tt.skill, tt.selections)
			assert.Equal(t, tt.expected, mode)
			assert.Equal(t, tt.expected == SourceLocalDefault || tt.expected == SourceForcedLocal, mode.IsLocal())
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown ids are skipped", func(t *testing.T) {
		f := newFixture(t)
		f.addRemote(t, "web-framework-react", "skills/web/framework/web-framework-react/", "# React")

		resolutions, err := f.manager.Resolve(ctx, []string{"missing", "web-framework-react"}, f.matrix, nil)
		require.NoError(t, err)
		require.Len(t, resolutions, 1)
		assert.Equal(t, "web-framework-react", resolutions[0].Skill.ID)
		assert.Equal(t, SourceRemote, resolutions[0].Mode)
		assert.Equal(t, filepath.Join(f.registryDir, "src", "skills", "web", "framework", "web-framework-react"), resolutions[0].SourcePath)
	})

	t.Run("aliases resolve to their skill", func(t *testing.T) {
		f := newFixture(t)
		f.addRemote(t, "web-framework-react", "skills/web/framework/web-framework-react/", "# React")
		f.matrix.Aliases["react"] = "web-framework-react"

		resolutions, err := f.manager.Resolve(ctx, []string{"react"}, f.matrix, nil)
		require.NoError(t, err)
		require.Len(t, resolutions, 1)
		assert.Equal(t, "web-framework-react", resolutions[0].Skill.ID)
	})

	t.Run("duplicate ids and aliases resolve once", func(t *testing.T) {
		f := newFixture(t)
		f.addRemote(t, "web-framework-react", "skills/web/framework/web-framework-react/", "# React")
		f.addRemote(t, "api-hono", "skills/api/framework/api-hono/", "# Hono")
		f.matrix.Aliases["react"] = "web-framework-react"

		resolutions, err := f.manager.Resolve(ctx, []string{"react", "api-hono", "web-framework-react", "api-hono"}, f.matrix, nil)
		require.NoError(t, err)
		require.Len(t, resolutions, 2)
		assert.Equal(t, "web-framework-react", resolutions[0].Skill.ID)
		assert.Equal(t, "api-hono", resolutions[1].Skill.ID)
	})

	t.Run("order follows the request", func(t *testing.T) {
		f := newFixture(t)
		ids := []string{"e-skill", "c-skill", "a-skill", "d-skill", "b-skill"}
		for _, id := range ids {
			f.addRemote(t, id, "skills/test/"+id+"/", "# "+id)
		}

		resolutions, err := f.manager.Resolve(ctx, ids, f.matrix, nil)
		require.NoError(t, err)
		require.Len(t, resolutions, len(ids))
		for i, id := range ids {
			assert.Equal(t, id, resolutions[i].Skill.ID)
		}
	})

	t.Run("local skill resolves to project path", func(t *testing.T) {
		f := newFixture(t)
		f.addLocal(t, "my-skill", "my-skill", "# Mine")

		resolutions, err := f.manager.Resolve(ctx, []string{"my-skill"}, f.matrix, nil)
		require.NoError(t, err)
		require.Len(t, resolutions, 1)
		assert.True(t, resolutions[0].Local())
		assert.Equal(t, f.localDir("my-skill"), resolutions[0].SourcePath)
	})

	t.Run("forced remote on a local-only skill is skipped", func(t *testing.T) {
		f := newFixture(t)
		f.addLocal(t, "my-skill", "my-skill", "# Mine")

		resolutions, err := f.manager.Resolve(ctx, []string{"my-skill"}, f.matrix, map[string]string{"my-skill": "acme"})
		require.NoError(t, err)
		assert.Empty(t, resolutions)
	})

	t.Run("traversal aborts", func(t *testing.T) {
		f := newFixture(t)
		f.matrix.Skills["evil"] = &ResolvedSkill{ID: "evil", Path: "../../etc/"}

		_, err := f.manager.Resolve(ctx, []string{"evil"}, f.matrix, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPathTraversal))
	})
}
