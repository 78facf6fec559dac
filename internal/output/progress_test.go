package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner(buf, "Loading suites")

	s.Start()
	s.Start()
	s.Stop()

	if got := buf.String(); got != "Loading suites...\n" {
		t.Errorf("non-TTY spinner output = %q, want a single line", got)
	}
}

func TestSpinner_StopWithMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner(buf, "Loading suites")

	s.Start()
	s.UpdateMessage("Indexing")
	s.StopWithMessage("Loaded 3 suites")

	if !strings.HasSuffix(buf.String(), "Loaded 3 suites\n") {
		t.Errorf("output = %q, want final message", buf.String())
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	buf := &bytes.Buffer{}
	NewSpinner(buf, "idle").Stop()
	if buf.Len() != 0 {
		t.Errorf("Stop() before Start() wrote %q", buf.String())
	}
}
