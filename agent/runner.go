package agent

import (
	"context"

	"github.com/hairizuan-noorazman/qa-agent/browser"
)

// Runner drives one agent conversation over a page and returns the agent's
// final text. The task is the complete, secret-free instruction; the runner
// owns the observe-act loop.
type Runner interface {
	Run(ctx context.Context, task string, page browser.Page) (string, error)
}

// FakeRunner returns canned replies for tests and records the tasks it was
// handed.
type FakeRunner struct {
	Reply string
	Err   error
	Tasks []string
}

func (r *FakeRunner) Run(ctx context.Context, task string, page browser.Page) (string, error) {
	r.Tasks = append(r.Tasks, task)
	if r.Err != nil {
		return "", r.Err
	}
	return r.Reply, nil
}
