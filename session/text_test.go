package session

import (
	"testing"

	"github.com/cooldogedev/crossplay/java/protocol"
)

func TestRenderValue(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{name: "string", v: "plain", want: "plain"},
		{name: "colour", v: map[string]any{"text": "hi", "color": "red"}, want: "§chi"},
		{
			name: "translation",
			v:    map[string]any{"translate": "chat.type.text", "with": []any{"Steve", "hello"}},
			want: "<Steve> hello",
		},
		{
			name: "positional arguments",
			v:    map[string]any{"translate": "custom.key", "fallback": "%2$s then %1$s", "with": []any{"a", "b"}},
			want: "b then a",
		},
		{
			name: "escaped percent",
			v:    map[string]any{"translate": "custom.key", "fallback": "100%% done"},
			want: "100% done",
		},
		{name: "unknown key", v: map[string]any{"translate": "custom.key"}, want: "custom.key"},
		{
			name: "unknown key with arguments",
			v:    map[string]any{"translate": "custom.key", "with": []any{"x"}},
			want: "custom.key x",
		},
		{
			name: "extra inherits style",
			v:    map[string]any{"text": "a", "extra": []any{map[string]any{"text": "b", "bold": int8(1)}}},
			want: "a§r§lb",
		},
		{name: "number argument", v: map[string]any{"translate": "death.attack.generic", "with": []any{int32(5)}}, want: "5 died"},
		{name: "mixed list", v: []any{map[string]any{"": "x"}, map[string]any{"": int32(1)}}, want: "x1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderValue(tt.v); got != tt.want {
				t.Fatalf("renderValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	if got := renderText(nil); got != "" {
		t.Fatalf("renderText(nil) = %q", got)
	}
	if got := renderText([]byte{0xff, 0x00}); got != "" {
		t.Fatalf("renderText of invalid NBT = %q", got)
	}
	b, err := protocol.EncodeNetworkNBT(map[string]any{"translate": "multiplayer.player.left", "with": []any{"Alex"}, "color": "yellow"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := renderText(b), "§eAlex left the game"; got != want {
		t.Fatalf("renderText() = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Fatalf("truncate() = %q, want hé", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate() = %q, want short", got)
	}
}
