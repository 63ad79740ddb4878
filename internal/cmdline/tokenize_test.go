package cmdline

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty",
			in:   "",
			want: []string{},
		},
		{
			name: "plain words",
			in:   "a b c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "single token",
			in:   "app.exe",
			want: []string{"app.exe"},
		},
		{
			name: "path with space then flag",
			in:   `C:\Program Files\app.exe --flag`,
			want: []string{`C:\Program Files\app.exe`, "--flag"},
		},
		{
			name: "path with space at end",
			in:   `C:\Program Files\app.exe`,
			want: []string{`C:\Program Files\app.exe`},
		},
		{
			name: "path break before flag token",
			in:   `C:\Program Files --flag`,
			want: []string{`C:\Program Files`, "--flag"},
		},
		{
			name: "path without spaces plus args",
			in:   `C:\windows\notepad.exe readme.txt`,
			want: []string{`C:\windows\notepad.exe`, "readme.txt"},
		},
		{
			name: "multiple embedded spaces",
			in:   `C:\Program Files\My App\run.exe -v`,
			want: []string{`C:\Program Files\My App\run.exe`, "-v"},
		},
		{
			name: "flag value splits without backslash hint",
			in:   "--name some value",
			want: []string{"--name", "some", "value"},
		},
		{
			name: "leading space ignored at true start",
			in:   " a b",
			want: []string{"a", "b"},
		},
		{
			name: "trailing space flushes nothing",
			in:   "a b ",
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizeKeepsBackslashes(t *testing.T) {
	got := Tokenize(`C:\a\b.exe`)
	if len(got) != 1 || got[0] != `C:\a\b.exe` {
		t.Errorf("backslashes not retained: %#v", got)
	}
}
