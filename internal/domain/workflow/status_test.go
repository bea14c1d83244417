package workflow

import "testing"

func TestStatusIsValid(t *testing.T) {
	valid := []Status{
		StatusSuccess, StatusCodeBug, StatusTestBug, StatusAmbiguity,
		StatusStuckLoop, StatusMaxIterations, StatusError,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("DONE").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestStatusResumable(t *testing.T) {
	if StatusSuccess.Resumable() {
		t.Error("SUCCESS should not carry a checkpoint")
	}
	for _, s := range []Status{
		StatusCodeBug, StatusTestBug, StatusAmbiguity,
		StatusStuckLoop, StatusMaxIterations, StatusError,
	} {
		if !s.Resumable() {
			t.Errorf("%s should carry a checkpoint", s)
		}
	}
}
