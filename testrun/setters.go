package testrun

// SetVerdict returns an UpdateSetter that sets the run's verdict.
func SetVerdict(verdict Verdict) UpdateSetter {
	return func(tr *TestRun) error {
		if !verdict.IsValid() {
			return ErrInvalidVerdict
		}
		tr.Verdict = verdict
		return nil
	}
}

// SetOutput returns an UpdateSetter that sets the run's output, truncated
// to the record cap.
func SetOutput(output string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.Output = truncateOutput(output)
		return nil
	}
}

// SetScriptKey returns an UpdateSetter that records which script artifact
// the run executed.
func SetScriptKey(key string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.ScriptKey = key
		return nil
	}
}
