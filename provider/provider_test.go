package provider_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/shuakami/konfig"
	"github.com/shuakami/konfig/provider"
)

var (
	_ konfig.Provider[map[string]any] = provider.JSON[map[string]any]{}
	_ konfig.Provider[map[string]any] = provider.YAML[map[string]any]{}
	_ konfig.Provider[map[string]any] = provider.TOML[map[string]any]{}
)

type codec interface {
	IsValid(path string) bool
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		name     string
		provider codec
		path     string
		valid    bool
	}{
		{"json", provider.JSON[any]{}, "config.json", true},
		{"json upper", provider.JSON[any]{}, "dir/CONFIG.JSON", true},
		{"json wrong ext", provider.JSON[any]{}, "config.yml", false},
		{"json no ext", provider.JSON[any]{}, "config", false},
		{"json suffix only in dir", provider.JSON[any]{}, "conf.json/settings", false},
		{"yml", provider.YAML[any]{}, "config.yml", true},
		{"yaml", provider.YAML[any]{}, "a/b/config.yaml", true},
		{"yaml wrong ext", provider.YAML[any]{}, "config.toml", false},
		{"toml", provider.TOML[map[string]any]{}, "config.toml", true},
		{"toml wrong ext", provider.TOML[map[string]any]{}, "config.json", false},
		{"empty", provider.TOML[map[string]any]{}, "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.valid, c.provider.IsValid(c.path))
		})
	}
}

func TestEmptyDocumentIsAbsent(t *testing.T) {
	for _, input := range []string{"", "  \n\t\n"} {
		j, err := provider.JSON[map[string]any]{}.Deserialize(strings.NewReader(input))
		require.NoError(t, err)
		assert.Nil(t, j)

		y, err := provider.YAML[map[string]any]{}.Deserialize(strings.NewReader(input))
		require.NoError(t, err)
		assert.Nil(t, y)

		tm, err := provider.TOML[map[string]any]{}.Deserialize(strings.NewReader(input))
		require.NoError(t, err)
		assert.Nil(t, tm)
	}
}

func TestJSONEmptyObject(t *testing.T) {
	v, err := provider.JSON[any]{}.Deserialize(strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, v)
}

func TestMalformedInput(t *testing.T) {
	_, err := provider.JSON[map[string]any]{}.Deserialize(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = provider.YAML[map[string]any]{}.Deserialize(strings.NewReader("a: [1, 2"))
	assert.Error(t, err)

	_, err = provider.TOML[map[string]any]{}.Deserialize(strings.NewReader("a = = 1"))
	assert.Error(t, err)
}

func TestJSONIndent(t *testing.T) {
	var buf bytes.Buffer
	err := provider.JSON[map[string]any]{Indent: "  "}.Serialize(&buf, map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	buf.Reset()
	err = provider.JSON[map[string]any]{}.Serialize(&buf, map[string]any{"url": "a<b>&c"})
	require.NoError(t, err)
	assert.Equal(t, "{\"url\":\"a<b>&c\"}\n", buf.String())
}

func TestYAMLBlockStyle(t *testing.T) {
	var buf bytes.Buffer
	snapshot := map[string]any{
		"server": map[string]any{"port": 8080},
		"tags":   []any{"a", "b"},
	}
	require.NoError(t, provider.YAML[map[string]any]{}.Serialize(&buf, snapshot))
	assert.Equal(t, "server:\n  port: 8080\ntags:\n  - a\n  - b\n", buf.String())
}

func TestTOMLStruct(t *testing.T) {
	type server struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	}
	type config struct {
		Name   string `toml:"name"`
		Server server `toml:"server"`
	}

	p := provider.TOML[config]{}
	in := config{Name: "demo", Server: server{Host: "localhost", Port: 8080}}

	var buf bytes.Buffer
	require.NoError(t, p.Serialize(&buf, in))
	assert.Contains(t, buf.String(), "[server]")

	out, err := p.Deserialize(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRoundTrip(t *testing.T) {
	keys := rapid.StringMatching(`k[a-z0-9_]{0,7}`)
	values := rapid.StringMatching(`[a-zA-Z0-9 _.-]{0,16}`)

	check := func(t *testing.T, p konfig.Provider[map[string]string]) {
		rapid.Check(t, func(rt *rapid.T) {
			in := rapid.MapOfN(keys, values, 1, 8).Draw(rt, "snapshot")

			var buf bytes.Buffer
			if err := p.Serialize(&buf, in); err != nil {
				rt.Fatalf("serialize: %v", err)
			}
			out, err := p.Deserialize(&buf)
			if err != nil {
				rt.Fatalf("deserialize %q: %v", buf.String(), err)
			}
			if len(out) != len(in) {
				rt.Fatalf("expected %d keys, got %d", len(in), len(out))
			}
			for k, v := range in {
				if out[k] != v {
					rt.Fatalf("key %q: expected %q, got %q", k, v, out[k])
				}
			}
		})
	}

	t.Run("json", func(t *testing.T) { check(t, provider.JSON[map[string]string]{Indent: "\t"}) })
	t.Run("yaml", func(t *testing.T) { check(t, provider.YAML[map[string]string]{}) })
	t.Run("toml", func(t *testing.T) { check(t, provider.TOML[map[string]string]{}) })
}
