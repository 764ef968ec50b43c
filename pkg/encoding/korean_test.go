package encoding

import "testing"

func TestEUCKRToUTF8(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"ascii", []byte("3DDATA/TERRAIN/grass.dds"), "3DDATA/TERRAIN/grass.dds"},
		{"hangul", []byte{0xC7, 0xD1, 0xB1, 0xDB}, "한글"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EUCKRToUTF8(tt.data); got != tt.want {
				t.Errorf("EUCKRToUTF8(%v) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

func TestUTF8ToEUCKR_RoundTrip(t *testing.T) {
	for _, s := range []string{"주논", "zant 마을", "plain"} {
		if got := EUCKRToUTF8(UTF8ToEUCKR(s)); got != s {
			t.Errorf("round trip of %q gave %q", s, got)
		}
	}
}

func TestNullTerminated(t *testing.T) {
	data := append([]byte("start"), 0, 0, 'x')
	if got := NullTerminated(data); got != "start" {
		t.Errorf("expected %q, got %q", "start", got)
	}
	if got := NullTerminated([]byte("abc")); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}
}
