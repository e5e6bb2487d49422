package statsview

import "testing"

func TestURL(t *testing.T) {
	s := &Server{addr: DefaultAddress}
	if got, want := s.URL(), "http://localhost:12600/debug/statsview"; got != want {
		t.Errorf("s.URL(): got=%s, want=%s", got, want)
	}
}
