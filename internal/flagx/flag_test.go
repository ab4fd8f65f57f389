package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	client := []string{"-a", "-g", "-d", "-v"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "keeps owned flags with their values",
			args:    []string{"-c", "client.yaml", "-a", "http://127.0.0.1:8080", "-d", "cache.db"},
			allowed: client,
			want:    []string{"-a", "http://127.0.0.1:8080", "-d", "cache.db"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=server.json", "-k=secret"},
			allowed: []string{"-k"},
			want:    []string{"-k=secret"},
		},
		{
			name:    "boolean flag does not swallow the next flag",
			args:    []string{"-v", "-g", "localhost:50051"},
			allowed: client,
			want:    []string{"-v", "-g", "localhost:50051"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-d"},
			allowed: client,
			want:    []string{"-d"},
		},
		{
			name:    "dash value in equals form is kept",
			args:    []string{"-d=-weird.db"},
			allowed: client,
			want:    []string{"-d=-weird.db"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-a", "http://one", "-a", "http://two"},
			allowed: client,
			want:    []string{"-a", "http://one", "-a", "http://two"},
		},
		{
			name:    "nothing owned",
			args:    []string{"-x", "1", "positional"},
			allowed: client,
			want:    []string{},
		},
		{
			name:    "no args",
			args:    nil,
			allowed: client,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-c", "/etc/citybreaks/client.json"}, "/etc/citybreaks/client.json"},
		{[]string{"-config", "server.yaml", "-a", ":8080"}, "server.yaml"},
		{[]string{"-a", "http://x", "-config=/etc/cb.yml"}, "/etc/cb.yml"},
		{[]string{"-c", "one.json", "-config", "two.json"}, "two.json"},
		{[]string{"-a", ":8080", "-v"}, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfigFileFlag(tt.args), "args %v", tt.args)
	}
}
