package logging

import "testing"

func TestNew(t *testing.T) {
	cases := []struct {
		level, format string
		ok            bool
	}{
		{"", "", true},
		{"debug", "console", true},
		{"WARN", "json", true},
		{"loud", "json", false},
		{"info", "xml", false},
	}
	for _, tc := range cases {
		log, err := New(tc.level, tc.format)
		if (err == nil) != tc.ok {
			t.Fatalf("New(%q, %q) err=%v", tc.level, tc.format, err)
		}
		if err == nil {
			_ = log.Sync()
		}
	}

	log, _ := New("warn", "json")
	if log.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled at warn level")
	}
}
