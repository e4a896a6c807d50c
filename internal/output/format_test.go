package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	color.NoColor = true

	tests := map[string]struct {
		print func(*bytes.Buffer)
		want  string
	}{
		"success": {
			print: func(b *bytes.Buffer) { PrintSuccess(b, "Added %s: %s", "feature", "Login") },
			want:  "✓ Added feature: Login\n",
		},
		"warning": {
			print: func(b *bytes.Buffer) { PrintWarning(b, "unknown config key %q", "x") },
			want:  "Warning: unknown config key \"x\"\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
