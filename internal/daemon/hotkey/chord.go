// Package hotkey listens for the global push-to-talk chord.
package hotkey

import (
	"fmt"
	"strings"

	hook "github.com/robotn/gohook"
)

// Chord is a parsed hotkey: zero or more modifier groups plus exactly
// one main key.
type Chord struct {
	mods []string
	key  string
	code uint16
}

// modifierAliases normalizes the spellings users put in settings files.
var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"cmd":     "cmd",
	"command": "cmd",
	"super":   "cmd",
	"meta":    "cmd",
	"win":     "cmd",
	"windows": "cmd",
}

// modifierCodes maps a canonical modifier group to every keycode that
// satisfies it. Left/right variants of a modifier are interchangeable.
var modifierCodes = map[string][]uint16{
	"ctrl":  codesFor("ctrl", "lctrl", "rctrl"),
	"shift": codesFor("shift", "lshift", "rshift"),
	"alt":   codesFor("alt", "lalt", "ralt"),
	"cmd":   codesFor("cmd", "lcmd", "rcmd"),
}

func codesFor(names ...string) []uint16 {
	var out []uint16
	for _, n := range names {
		if c, ok := hook.Keycode[n]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ParseChord parses a "+"-separated hotkey like "Ctrl+G". Case and
// surrounding whitespace are ignored.
func ParseChord(raw string) (Chord, error) {
	if strings.TrimSpace(raw) == "" {
		return Chord{}, fmt.Errorf("hotkey must not be empty")
	}

	var c Chord
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			return Chord{}, fmt.Errorf("hotkey has an empty part")
		}
		if group, ok := modifierAliases[part]; ok {
			if !seen[group] {
				seen[group] = true
				c.mods = append(c.mods, group)
			}
			continue
		}
		code, ok := hook.Keycode[part]
		if !ok {
			return Chord{}, fmt.Errorf("unknown key %q", part)
		}
		if c.key != "" {
			return Chord{}, fmt.Errorf("more than one main key")
		}
		c.key = part
		c.code = code
	}

	if c.key == "" {
		return Chord{}, fmt.Errorf("no main key")
	}
	return c, nil
}

// String renders the canonical lower-case form, modifiers first.
func (c Chord) String() string {
	return strings.Join(append(append([]string(nil), c.mods...), c.key), "+")
}

// modsSatisfied reports whether every required modifier group has at
// least one of its keys down. Extra held modifiers do not block a match.
func (c Chord) modsSatisfied(down map[uint16]bool) bool {
	for _, group := range c.mods {
		any := false
		for _, code := range modifierCodes[group] {
			if down[code] {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}
