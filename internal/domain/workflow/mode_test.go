package workflow

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{"generate", "generate", ModeGenerate, false},
		{"test", "test", ModeTest, false},
		{"uppercase", "GENERATE", ModeGenerate, false},
		{"whitespace", "  test  ", ModeTest, false},
		{"unknown", "repair", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMode) {
					t.Fatalf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestModeArtifactFilename(t *testing.T) {
	if got := ModeGenerate.ArtifactFilename(); got != "test_generated.py" {
		t.Errorf("generate filename = %q", got)
	}
	if got := ModeTest.ArtifactFilename(); got != "test_user_code.py" {
		t.Errorf("test filename = %q", got)
	}
}

func TestModeIsValid(t *testing.T) {
	if !ModeGenerate.IsValid() || !ModeTest.IsValid() {
		t.Error("known modes should be valid")
	}
	if Mode("other").IsValid() {
		t.Error("unknown mode should be invalid")
	}
}
