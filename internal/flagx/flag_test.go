package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "-config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "separate value kept with the flag",
			args: []string{"-c", "conf.json", "-u", "https://x"},
			want: []string{"-c", "conf.json"},
		},
		{
			name: "equals form kept whole",
			args: []string{"-config=alt.json", "-u", "https://x"},
			want: []string{"-config=alt.json"},
		},
		{
			name: "order preserved across spellings",
			args: []string{"-config=first.json", "-c", "second.json", "-w", "1"},
			want: []string{"-config=first.json", "-c", "second.json"},
		},
		{
			name: "unrelated flags and positionals dropped",
			args: []string{"-w", "1", "-u=https://x", "positional"},
			want: []string{},
		},
		{
			name: "trailing flag without value survives",
			args: []string{"-c"},
			want: []string{"-c"},
		},
		{
			name: "next flag is not mistaken for a value",
			args: []string{"-c", "-w"},
			want: []string{"-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short flag", []string{"cmd", "-c", "conf.json"}, "conf.json"},
		{"long flag", []string{"cmd", "-config", "other.json"}, "other.json"},
		{"equals form", []string{"cmd", "-config=eq.json"}, "eq.json"},
		{"absent", []string{"cmd", "-u", "https://x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, JsonConfigFlags())
		})
	}
}
