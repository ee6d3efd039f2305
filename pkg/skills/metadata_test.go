package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = orig })
}

func TestReadForkedFromMetadata(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		record, err := ReadForkedFromMetadata(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("file without forked_from", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, MetadataFileName), "cli_name: React\n")

		record, err := ReadForkedFromMetadata(dir)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("record present", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, MetadataFileName), `forked_from:
  skill_id: web-framework-react
  content_hash: abc1234
  date: "2025-01-02"
`)

		record, err := ReadForkedFromMetadata(dir)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "web-framework-react", record.SkillID)
		assert.Equal(t, "abc1234", record.ContentHash)
		assert.Equal(t, "2025-01-02", record.Date)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, MetadataFileName), "forked_from: [unterminated\n")

		_, err := ReadForkedFromMetadata(dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedMetadata))
	})
}

func TestInjectForkedFromMetadata(t *testing.T) {
	fixedNow(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	t.Run("creates sidecar file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, InjectForkedFromMetadata(dir, "api-hono", "1234abc"))

		record, err := ReadForkedFromMetadata(dir)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, ForkedFromRecord{SkillID: "api-hono", ContentHash: "1234abc", Date: "2026-03-04"}, *record)
	})

	t.Run("preserves header comment and unrelated fields", func(t *testing.T) {
		dir := t.TempDir()
		header := "# yaml-language-server: $schema=../../schemas/metadata.schema.json"
		writeFile(t, filepath.Join(dir, MetadataFileName), header+`
cli_name: React
author: "@vince"
tags:
  - web
forked_from:
  skill_id: old-id
  content_hash: "0000000"
  date: "2020-01-01"
`)

		require.NoError(t, InjectForkedFromMetadata(dir, "web-framework-react", "fedcba9"))

		content, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
		require.NoError(t, err)
		lines := strings.Split(string(content), "\n")
		assert.Equal(t, header, lines[0])
		assert.Equal(t, 1, strings.Count(string(content), "yaml-language-server"))

		var parsed map[string]any
		require.NoError(t, yaml.Unmarshal(content, &parsed))
		assert.Equal(t, "React", parsed["cli_name"])
		assert.Equal(t, "@vince", parsed["author"])
		assert.Equal(t, []any{"web"}, parsed["tags"])

		record, err := ReadForkedFromMetadata(dir)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "web-framework-react", record.SkillID)
		assert.Equal(t, "fedcba9", record.ContentHash)
		assert.Equal(t, "2026-03-04", record.Date)
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, MetadataFileName), "# schema\ncli_name: Hono\n")

		require.NoError(t, InjectForkedFromMetadata(dir, "api-hono", "1234abc"))
		first, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
		require.NoError(t, err)

		require.NoError(t, InjectForkedFromMetadata(dir, "api-hono", "1234abc"))
		second, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	})

	t.Run("malformed yaml is not overwritten", func(t *testing.T) {
		dir := t.TempDir()
		original := "cli_name: [broken\n"
		writeFile(t, filepath.Join(dir, MetadataFileName), original)

		err := InjectForkedFromMetadata(dir, "api-hono", "1234abc")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedMetadata))

		content, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
		require.NoError(t, err)
		assert.Equal(t, original, string(content))
	})

	t.Run("non-mapping document", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, MetadataFileName), "- a\n- b\n")

		err := InjectForkedFromMetadata(dir, "api-hono", "1234abc")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedMetadata))
	})
}
