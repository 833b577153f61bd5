package discord

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		want Command
		ok   bool
	}{
		{"link", CommandLink, true},
		{"LINK", CommandLink, true},
		{"unlink", CommandUnlink, true},
		{"Unlink", CommandUnlink, true},
		{"relink", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCommand(tt.name)
		if ok != tt.ok {
			t.Errorf("ParseCommand(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseCommand(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	if got := CommandLink.String(); got != "link" {
		t.Errorf("CommandLink.String() = %q, want %q", got, "link")
	}
	if got := CommandUnlink.String(); got != "unlink" {
		t.Errorf("CommandUnlink.String() = %q, want %q", got, "unlink")
	}
}

func TestDefinitionsMatchParseCommand(t *testing.T) {
	for _, def := range Definitions() {
		if _, ok := ParseCommand(def.Name); !ok {
			t.Errorf("registered command %q has no dispatch mapping", def.Name)
		}
	}
}
