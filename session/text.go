package session

import (
	"strconv"
	"strings"

	"github.com/cooldogedev/crossplay/java/protocol"
)

// formatColours maps Java colour names to Bedrock formatting codes.
var formatColours = map[string]string{
	"black":        "§0",
	"dark_blue":    "§1",
	"dark_green":   "§2",
	"dark_aqua":    "§3",
	"dark_red":     "§4",
	"dark_purple":  "§5",
	"gold":         "§6",
	"gray":         "§7",
	"dark_gray":    "§8",
	"blue":         "§9",
	"green":        "§a",
	"aqua":         "§b",
	"red":          "§c",
	"light_purple": "§d",
	"yellow":       "§e",
	"white":        "§f",
}

// translations holds the English text of the translation keys servers commonly send.
var translations = map[string]string{
	"chat.type.text":                         "<%s> %s",
	"chat.type.text.narrate":                 "%s says %s",
	"chat.type.announcement":                 "[%s] %s",
	"chat.type.emote":                        "* %s %s",
	"chat.type.admin":                        "[%s: %s]",
	"commands.message.display.incoming":      "%s whispers to you: %s",
	"commands.message.display.outgoing":      "You whisper to %s: %s",
	"multiplayer.player.joined":              "%s joined the game",
	"multiplayer.player.joined.renamed":      "%s (formerly known as %s) joined the game",
	"multiplayer.player.left":                "%s left the game",
	"multiplayer.disconnect.kicked":          "Kicked by an operator",
	"multiplayer.disconnect.server_shutdown": "Server closed",
	"death.attack.generic":                   "%s died",
	"death.attack.player":                    "%s was slain by %s",
	"death.attack.mob":                       "%s was slain by %s",
	"death.attack.fall":                      "%s hit the ground too hard",
	"death.attack.outOfWorld":                "%s fell out of the world",
	"death.attack.drown":                     "%s drowned",
	"death.attack.lava":                      "%s tried to swim in lava",
	"death.attack.inFire":                    "%s went up in flames",
	"death.attack.onFire":                    "%s burned to death",
	"death.attack.starve":                    "%s starved to death",
	"death.attack.explosion":                 "%s blew up",
	"death.attack.arrow":                     "%s was shot by %s",
	"death.fell.accident.generic":            "%s fell from a high place",
	"chat.disabled.missingProfileKey":        "Chat disabled due to missing profile public key.",
}

type textStyle struct {
	colour     string
	bold       bool
	italic     bool
	obfuscated bool
}

// inherit returns the style of a component with the properties in c set over the style s of its parent.
func (s textStyle) inherit(c map[string]any) textStyle {
	if colour, ok := c["color"].(string); ok {
		s.colour = formatColours[colour]
	}
	flag := func(name string, v *bool) {
		if b, ok := c[name].(int8); ok {
			*v = b != 0
		}
	}
	flag("bold", &s.bold)
	flag("italic", &s.italic)
	flag("obfuscated", &s.obfuscated)
	return s
}

// codes returns the formatting codes that switch from plain text to the style.
func (s textStyle) codes() string {
	out := "§r" + s.colour
	if s.bold {
		out += "§l"
	}
	if s.italic {
		out += "§o"
	}
	if s.obfuscated {
		out += "§k"
	}
	return out
}

// textRenderer writes text components as Bedrock text, emitting formatting codes only where the style of
// the text changes.
type textRenderer struct {
	sb      strings.Builder
	current textStyle
}

func (r *textRenderer) write(s string, st textStyle) {
	if s == "" {
		return
	}
	if st != r.current {
		r.sb.WriteString(st.codes())
		r.current = st
	}
	r.sb.WriteString(s)
}

func (r *textRenderer) render(v any, st textStyle) {
	switch v := v.(type) {
	case string:
		r.write(v, st)
	case []any:
		for _, c := range v {
			r.render(c, st)
		}
	case map[string]any:
		if inner, ok := v[""]; ok {
			// Elements of lists with mixed tag types are wrapped in a compound with an empty key.
			r.render(inner, st)
			return
		}
		st = st.inherit(v)
		switch {
		case v["text"] != nil:
			r.render(v["text"], st)
		case v["translate"] != nil:
			key, _ := v["translate"].(string)
			args, _ := v["with"].([]any)
			r.translate(key, v["fallback"], args, st)
		case v["keybind"] != nil:
			r.render(v["keybind"], st)
		case v["selector"] != nil:
			r.render(v["selector"], st)
		case v["score"] != nil:
			if score, ok := v["score"].(map[string]any); ok {
				r.render(score["name"], st)
			}
		}
		if extra, ok := v["extra"].([]any); ok {
			r.render(extra, st)
		}
	case int8, int16, int32, int64:
		r.write(strconv.FormatInt(toInt64(v), 10), st)
	}
}

// translate writes the English text of a translation key with its arguments filled in.
func (r *textRenderer) translate(key string, fallback any, args []any, st textStyle) {
	format, ok := translations[key]
	if !ok {
		if fb, isString := fallback.(string); isString {
			format = fb
		} else if len(args) == 0 {
			r.write(key, st)
			return
		} else {
			format = key + strings.Repeat(" %s", len(args))
		}
	}
	next := 0
	for len(format) > 0 {
		i := strings.IndexByte(format, '%')
		if i < 0 || i == len(format)-1 {
			r.write(format, st)
			return
		}
		r.write(format[:i], st)
		format = format[i+1:]
		if format[0] == '%' {
			r.write("%", st)
			format = format[1:]
			continue
		}
		idx, positional := next, false
		if j := strings.Index(format, "$s"); j > 0 {
			if n, err := strconv.Atoi(format[:j]); err == nil {
				idx, format, positional = n-1, format[j+2:], true
			}
		}
		if !positional {
			if format[0] != 's' {
				r.write("%", st)
				continue
			}
			format = format[1:]
			next++
		}
		if idx >= 0 && idx < len(args) {
			r.render(args[idx], st)
		}
	}
}

func toInt64(v any) int64 {
	switch v := v.(type) {
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// renderText renders a network NBT text component as text shown to a Bedrock client. A component that
// cannot be decoded renders as an empty string.
func renderText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	v, err := protocol.DecodeNetworkNBT(b)
	if err != nil {
		return ""
	}
	return renderValue(v)
}

func renderValue(v any) string {
	r := &textRenderer{}
	r.render(v, textStyle{})
	return strings.TrimPrefix(r.sb.String(), "§r")
}
