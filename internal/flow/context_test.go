package flow

import "testing"

func TestAppContextAuthLifecycle(t *testing.T) {
	app := NewAppContext()
	if app.Session().Authenticated() {
		t.Error("new context must start unauthenticated")
	}

	app.SetAuth("T1", "L1", "sid=1")
	s := app.Session()
	if s.AuthToken != "T1" || s.LogoutToken != "L1" || s.Cookie != "sid=1" {
		t.Errorf("unexpected session: %+v", s)
	}

	app.ClearAuth()
	s = app.Session()
	if s.AuthToken != "" || s.Cookie != "" {
		t.Error("token and cookie must be cleared together")
	}
}

func TestProcessingFlagLastWriterWins(t *testing.T) {
	app := NewAppContext()
	if app.Processing() {
		t.Error("processing must start false")
	}
	app.SetProcessing(true)
	app.SetProcessing(false)
	app.SetProcessing(true)
	if !app.Processing() {
		t.Error("last write should win")
	}
	app.SetProcessing(false)
	if app.Processing() {
		t.Error("last write should win")
	}
}
