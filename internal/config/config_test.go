package config

import "testing"

func TestParseRequiresExactlyOneRoot(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Error("expected a usage error with no root argument")
	}
	if _, err := Parse([]string{"/a", "/b"}); err == nil {
		t.Error("expected a usage error with two positional arguments")
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"/media"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Root != "/media" {
		t.Errorf("Root = %q, want /media", cfg.Root)
	}
	if cfg.FilefragPath != "filefrag" {
		t.Errorf("FilefragPath = %q, want filefrag", cfg.FilefragPath)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("LogDir = %q, want logs", cfg.LogDir)
	}
	if len(cfg.Exclude) != 0 {
		t.Errorf("Exclude = %v, want empty", cfg.Exclude)
	}
}

func TestParseExcludePatterns(t *testing.T) {
	cfg, err := Parse([]string{"-exclude", "**/.DS_Store,**/*.part", "/media"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"**/.DS_Store", "**/*.part"}
	if len(cfg.Exclude) != len(want) {
		t.Fatalf("Exclude = %v, want %v", cfg.Exclude, want)
	}
	for i := range want {
		if cfg.Exclude[i] != want[i] {
			t.Errorf("Exclude[%d] = %q, want %q", i, cfg.Exclude[i], want[i])
		}
	}
}
