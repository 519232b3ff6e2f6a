package suite

import "time"

// SetDescription returns an UpdateSetter that sets the suite's description.
func SetDescription(description string) UpdateSetter {
	return func(s *Suite) error {
		s.Description = description
		return nil
	}
}

// SetConfig returns an UpdateSetter that replaces the suite's generation
// configuration.
func SetConfig(config SuiteConfig) UpdateSetter {
	return func(s *Suite) error {
		if config.TargetURL == "" {
			return ErrInvalidTargetURL
		}
		s.Config = config
		return nil
	}
}

// SetGeneration returns an UpdateSetter that records the outcome of one
// generation run: the extracted cases, the script key per case, and the
// generation timestamp, replaced together so the suite never mixes cases
// from one run with scripts from another.
func SetGeneration(cases Cases, scripts Scripts, at time.Time) UpdateSetter {
	return func(s *Suite) error {
		s.Cases = cases
		s.Scripts = scripts
		s.GeneratedAt = &at
		return nil
	}
}

// SetScript returns an UpdateSetter that repoints one case's current script.
func SetScript(caseID, key string) UpdateSetter {
	return func(s *Suite) error {
		if s.Scripts == nil {
			s.Scripts = Scripts{}
		}
		s.Scripts[caseID] = key
		return nil
	}
}
