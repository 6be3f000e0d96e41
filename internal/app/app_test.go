package app

import (
	"testing"

	"hamexam_backend/internal/config"
	"hamexam_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestReloadConfigRunsCallbacks(t *testing.T) {
	logger.Log = zap.NewNop()

	a := &App{Config: &config.Config{}}

	var got *config.Config
	a.RegisterConfigCallback(func(c *config.Config) { got = c })

	next := &config.Config{}
	next.RateLimit.AIPerMinute = 12
	a.ReloadConfig(next)

	if a.Config != next {
		t.Fatal("App.Config not swapped to reloaded config")
	}
	if got == nil {
		t.Fatal("registered callback not invoked")
	}
	if got.RateLimit.AIPerMinute != 12 {
		t.Fatalf("callback saw AIPerMinute = %d, want 12", got.RateLimit.AIPerMinute)
	}
}

func TestReloadConfigCallbackOrder(t *testing.T) {
	logger.Log = zap.NewNop()

	a := &App{Config: &config.Config{}}

	var order []int
	a.RegisterConfigCallback(func(*config.Config) { order = append(order, 1) })
	a.RegisterConfigCallback(func(*config.Config) { order = append(order, 2) })

	a.ReloadConfig(&config.Config{})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("callbacks ran as %v, want [1 2]", order)
	}
}
