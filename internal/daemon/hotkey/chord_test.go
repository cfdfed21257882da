package hotkey

import (
	"strings"
	"testing"

	hook "github.com/robotn/gohook"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantKey  string
		wantErr  bool
		errMatch string
	}{
		{name: "simple", raw: "Ctrl+G", want: "ctrl+g", wantKey: "g"},
		{name: "mac default", raw: "Cmd+G", want: "cmd+g", wantKey: "g"},
		{name: "alias control", raw: "Control+Space", want: "ctrl+space", wantKey: "space"},
		{name: "alias super", raw: "Super+F5", want: "cmd+f5", wantKey: "f5"},
		{name: "alias option", raw: "Option+Shift+R", want: "alt+shift+r", wantKey: "r"},
		{name: "bare key", raw: "f9", want: "f9", wantKey: "f9"},
		{name: "padded parts", raw: " ctrl + g ", want: "ctrl+g", wantKey: "g"},
		{name: "duplicate modifier collapsed", raw: "ctrl+control+g", want: "ctrl+g", wantKey: "g"},
		{name: "empty", raw: "", wantErr: true, errMatch: "must not be empty"},
		{name: "blank", raw: "   ", wantErr: true, errMatch: "must not be empty"},
		{name: "only modifiers", raw: "ctrl+shift", wantErr: true, errMatch: "no main key"},
		{name: "trailing plus", raw: "ctrl+", wantErr: true, errMatch: "empty part"},
		{name: "two main keys", raw: "a+b", wantErr: true, errMatch: "more than one main key"},
		{name: "unknown key", raw: "ctrl+bogus", wantErr: true, errMatch: "unknown key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChord(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChord(%q) error = nil, want error", tt.raw)
				}
				if !strings.Contains(err.Error(), tt.errMatch) {
					t.Errorf("ParseChord(%q) error = %q, want match %q", tt.raw, err.Error(), tt.errMatch)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChord(%q) error = %v", tt.raw, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseChord(%q).String() = %q, want %q", tt.raw, got.String(), tt.want)
			}
			if got.key != tt.wantKey {
				t.Errorf("ParseChord(%q).key = %q, want %q", tt.raw, got.key, tt.wantKey)
			}
			if got.code != hook.Keycode[tt.wantKey] {
				t.Errorf("ParseChord(%q).code = %d, want %d", tt.raw, got.code, hook.Keycode[tt.wantKey])
			}
		})
	}
}

func TestModsSatisfied(t *testing.T) {
	chord, err := ParseChord("ctrl+g")
	if err != nil {
		t.Fatalf("ParseChord() error = %v", err)
	}

	down := map[uint16]bool{}
	if chord.modsSatisfied(down) {
		t.Error("modsSatisfied() = true with no keys down")
	}

	down[hook.Keycode["ctrl"]] = true
	if !chord.modsSatisfied(down) {
		t.Error("modsSatisfied() = false with left ctrl down")
	}

	// Right-side variant satisfies the same group.
	delete(down, hook.Keycode["ctrl"])
	if rctrl, ok := hook.Keycode["rctrl"]; ok {
		down[rctrl] = true
		if !chord.modsSatisfied(down) {
			t.Error("modsSatisfied() = false with right ctrl down")
		}
	}

	// Extra modifiers held do not block the match.
	down[hook.Keycode["shift"]] = true
	down[hook.Keycode["ctrl"]] = true
	if !chord.modsSatisfied(down) {
		t.Error("modsSatisfied() = false with extra shift held")
	}
}

func TestBareKeyChordNeedsNoModifiers(t *testing.T) {
	chord, err := ParseChord("f9")
	if err != nil {
		t.Fatalf("ParseChord() error = %v", err)
	}
	if !chord.modsSatisfied(map[uint16]bool{}) {
		t.Error("modsSatisfied() = false for chord without modifiers")
	}
}
