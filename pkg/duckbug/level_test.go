package duckbug

import "testing"

func TestLevels(t *testing.T) {
	want := []Level{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	got := Levels()
	if len(got) != len(want) {
		t.Fatalf("Levels() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Levels()[%d] = %s, want %s", i, got[i], want[i])
		}
		if !got[i].Valid() {
			t.Errorf("%s should be valid", got[i])
		}
	}
	if Level("TRACE").Valid() {
		t.Error("TRACE should not be valid")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"WARN", LevelWarn, false},
		{" Error ", LevelError, false},
		{"fatal", LevelFatal, false},
		{"warning", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
