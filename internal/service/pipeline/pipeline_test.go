package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunStopsAtFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	stage := func(name string, err error) Stage {
		return Stage{Name: name, Run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	err := Run(context.Background(), []Stage{
		stage("clean", nil),
		stage("load", boom),
		stage("charts", nil),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !strings.Contains(err.Error(), "stage load") {
		t.Fatalf("error must name the stage: %v", err)
	}
	if strings.Join(ran, ",") != "clean,load" {
		t.Fatalf("unexpected stages run: %v", ran)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Run(ctx, []Stage{{Name: "fetch", Run: func(context.Context) error {
		called = true
		return nil
	}}})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected canceled run without stages, got %v", err)
	}
}
