package types

import "testing"

func TestMode_Languages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode   Mode
		source string
		target string
	}{
		{ModeENToAR, "en", "ar"},
		{ModeARToEN, "ar", "en"},
	}
	for _, tt := range tests {
		if got := tt.mode.SourceLanguage(); got != tt.source {
			t.Errorf("%s source=%q, want %q", tt.mode, got, tt.source)
		}
		if got := tt.mode.TargetLanguage(); got != tt.target {
			t.Errorf("%s target=%q, want %q", tt.mode, got, tt.target)
		}
	}
}

func TestMode_Toggle(t *testing.T) {
	t.Parallel()

	if ModeENToAR.Toggle() != ModeARToEN || ModeARToEN.Toggle() != ModeENToAR {
		t.Error("Toggle must swap the two directions")
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	if m, err := ParseMode("EN->AR"); err != nil || m != ModeENToAR {
		t.Errorf("ParseMode(EN->AR)=%q,%v", m, err)
	}
	if m, err := ParseMode("AR->EN"); err != nil || m != ModeARToEN {
		t.Errorf("ParseMode(AR->EN)=%q,%v", m, err)
	}
	for _, bad := range []string{"", "en->ar", "EN-AR", "FR->EN"} {
		if _, err := ParseMode(bad); err == nil {
			t.Errorf("ParseMode(%q) should fail", bad)
		}
	}
}
