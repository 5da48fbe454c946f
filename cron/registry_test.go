package cron

import "testing"

func TestRegisterAndUnregister(t *testing.T) {
	called := false
	Register("testjob", "@every 1m", func(args ...string) {
		called = true
	})
	t.Cleanup(func() { Unregister("testjob") })

	jobs := Jobs()
	j, ok := jobs["testjob"]
	if !ok {
		t.Fatal("expected testjob registered")
	}
	if j.Schedule != "@every 1m" {
		t.Errorf("schedule = %q, want @every 1m", j.Schedule)
	}
	j.Run()
	if !called {
		t.Error("job function not invoked")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dupjob", "@hourly", func(args ...string) {})
	t.Cleanup(func() { Unregister("dupjob") })

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("dupjob", "@hourly", func(args ...string) {})
}
