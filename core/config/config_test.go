package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "myshell> ", cfg.Prompt)
	assert.Equal(t, 100, cfg.HistorySize)
	assert.Equal(t, []string{"SHELL=/bin/myshell", "VERSION=v7+"}, cfg.Environ())
}

func TestDefaultConfig_NoStorage(t *testing.T) {
	cfg := Default()

	_, _, err := cfg.HistoryPath()
	assert.ErrorIs(t, err, ErrNoStorage)

	_, err = cfg.OpenEventLog()
	assert.ErrorIs(t, err, ErrNoStorage)

	_, err = cfg.ReadEventLog()
	assert.ErrorIs(t, err, ErrNoStorage)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(c *Configuration)
		wantErr string
	}{
		"default": {
			mutate: func(c *Configuration) {},
		},
		"bad-color": {
			mutate:  func(c *Configuration) { c.Color = "sometimes" },
			wantErr: "color",
		},
		"empty-prompt": {
			mutate:  func(c *Configuration) { c.Prompt = "" },
			wantErr: "prompt",
		},
		"zero-history": {
			mutate:  func(c *Configuration) { c.HistorySize = 0 },
			wantErr: "history_size",
		},
		"bad-variable-name": {
			mutate:  func(c *Configuration) { c.Variables = append(c.Variables, Variable{Name: "A-B"}) },
			wantErr: "name",
		},
		"duplicate-variable": {
			mutate:  func(c *Configuration) { c.Variables = append(c.Variables, Variable{Name: "SHELL"}) },
			wantErr: "variables",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
