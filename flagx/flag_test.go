package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate values",
			args:    []string{"serve", "-a", ":9090", "-x", "1", "-d", "file.db"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-a", ":9090", "-d", "file.db"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=conf.json", "-other=1"},
			allowed: []string{"-config"},
			want:    []string{"-config=conf.json"},
		},
		{
			name:    "flag without value",
			args:    []string{"-a", "-d", "x"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "1"},
			allowed: nil,
			want:    []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterArgs(tc.args, tc.allowed))
		})
	}
}

func TestJsonConfigFlag(t *testing.T) {
	assert.Equal(t, "a.json", JsonConfigFlag([]string{"serve", "-c", "a.json"}))
	assert.Equal(t, "b.json", JsonConfigFlag([]string{"-config=b.json", "-a", ":1"}))
	assert.Equal(t, "", JsonConfigFlag([]string{"-a", ":1"}))
}
