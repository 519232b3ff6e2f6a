package execution

import (
	"context"
	"sync"

	"github.com/hairizuan-noorazman/qa-agent/suite"
	"github.com/hairizuan-noorazman/qa-agent/testrun"
)

// Summary aggregates the verdicts of one suite-wide execution.
type Summary struct {
	Suite   string             `json:"suite"`
	Total   int                `json:"total"`
	Pass    int                `json:"pass"`
	Fail    int                `json:"fail"`
	Timeout int                `json:"timeout"`
	Error   int                `json:"error"`
	Runs    []*testrun.TestRun `json:"runs"`
}

func (s *Summary) add(run *testrun.TestRun) {
	s.Total++
	s.Runs = append(s.Runs, run)
	switch run.Verdict {
	case testrun.VerdictPass:
		s.Pass++
	case testrun.VerdictFail:
		s.Fail++
	case testrun.VerdictTimeout:
		s.Timeout++
	default:
		s.Error++
	}
}

// RunSuite executes every case of a suite through a bounded worker pool.
// Cases are independent: each gets its own subprocess or browser context,
// so a slow or crashing case never blocks the others beyond pool capacity.
func (c *Coordinator) RunSuite(ctx context.Context, suiteName string) (*Summary, error) {
	s, err := c.suites.GetByName(ctx, suiteName)
	if err != nil {
		return nil, err
	}

	work := make(chan suite.TestCase)
	summary := &Summary{Suite: suiteName}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < c.config.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for tc := range work {
				run, err := c.RunCase(ctx, suiteName, tc.ID)
				if err != nil {
					c.logger.Error(ctx, "case execution failed", map[string]interface{}{
						"suite":   suiteName,
						"case_id": tc.ID,
						"worker":  worker,
						"error":   err.Error(),
					})
					// Count the attempt as an error even when no record
					// could be written.
					run = &testrun.TestRun{
						SuiteName: suiteName,
						CaseID:    tc.ID,
						CaseTitle: tc.Title,
						Verdict:   testrun.VerdictError,
						Output:    err.Error(),
					}
				}
				mu.Lock()
				summary.add(run)
				mu.Unlock()
			}
		}(i)
	}

	for _, tc := range s.Cases {
		select {
		case work <- tc:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return summary, ctx.Err()
		}
	}
	close(work)
	wg.Wait()

	c.logger.Info(ctx, "suite execution completed", map[string]interface{}{
		"suite":   suiteName,
		"total":   summary.Total,
		"pass":    summary.Pass,
		"fail":    summary.Fail,
		"timeout": summary.Timeout,
		"error":   summary.Error,
	})
	return summary, nil
}
