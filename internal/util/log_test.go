package util

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogLevel(LevelInfo)
		SetLogOutput(os.Stderr)
	})

	SetLogLevel(LevelInfo)
	DebugLog("hidden %d", 1)
	InfoLog("Make dir %s", "/out/A")
	WarnLog("Pattern not matched for file %s", "/in/x.mp3")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug message shown at info level: %q", out)
	}
	if !strings.Contains(out, "Make dir /out/A") {
		t.Errorf("Missing info message: %q", out)
	}
	if !strings.Contains(out, "Pattern not matched for file /in/x.mp3") {
		t.Errorf("Missing warning: %q", out)
	}

	buf.Reset()
	SetQuiet(true)
	if !IsQuiet() {
		t.Error("Expected IsQuiet after SetQuiet(true)")
	}
	WarnLog("suppressed")
	ErrorLog("fatal thing")
	out = buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("Warning shown in quiet mode: %q", out)
	}
	if !strings.Contains(out, "fatal thing") {
		t.Errorf("Error missing in quiet mode: %q", out)
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("Expected IsVerbose after SetVerbose(true)")
	}
}
