package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/qa-agent/extractor"
	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/scriptgen"
	"github.com/hairizuan-noorazman/qa-agent/suite"
)

// ErrGenerationPanic is returned when a generation run panicked; the crash
// reporter has the details.
var ErrGenerationPanic = errors.New("generation run panicked")

// GenerateRequest names the suite to (re)generate. TargetURL and Goal are
// required on first generation and override the stored config when set.
type GenerateRequest struct {
	SuiteName   string
	Description string
	TargetURL   string
	Goal        string
}

// Pipeline is the generation service: explore, extract, materialize,
// persist. One call handles one suite, sequentially.
type Pipeline struct {
	config       Config
	suites       suite.Store
	explorer     *Explorer
	materializer *scriptgen.Materializer
	identity     *identity.Identity
	crashes      *logger.CrashReporter
	logger       logger.Logger
}

func NewPipeline(
	config Config,
	suites suite.Store,
	explorer *Explorer,
	materializer *scriptgen.Materializer,
	id *identity.Identity,
	crashes *logger.CrashReporter,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		config:       config.withDefaults(),
		suites:       suites,
		explorer:     explorer,
		materializer: materializer,
		identity:     id,
		crashes:      crashes,
		logger:       log,
	}
}

// Generate runs the full generation flow for one suite and returns the
// updated record. An exploration failure (other than a secret leak) still
// persists a diagnostic case, so the caller never gets an empty suite back.
func (p *Pipeline) Generate(ctx context.Context, req GenerateRequest) (out *suite.Suite, err error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.TimeLimit)
	defer cancel()

	defer func() {
		if recovered := recover(); recovered != nil {
			p.crashes.Report(ctx, "generation", recovered, map[string]interface{}{
				"suite": req.SuiteName,
			})
			out, err = nil, ErrGenerationPanic
		}
	}()

	s, err := p.loadOrCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	spec := TaskSpec{Goal: s.Config.Goal, TargetURL: s.Config.TargetURL}
	reply, exploreErr := p.explorer.Explore(ctx, p.identity, spec)
	if exploreErr != nil {
		if errors.Is(exploreErr, ErrSecretLeak) {
			return nil, exploreErr
		}
		return p.persistDiagnostic(ctx, s, exploreErr)
	}

	cases, strategy := extractor.Extract(reply)
	p.logger.Info(ctx, "test cases extracted", map[string]interface{}{
		"suite":    s.Name,
		"cases":    len(cases),
		"strategy": string(strategy),
	})

	target := scriptgen.Target{
		TargetURL: s.Config.TargetURL,
		LoginURL:  p.identity.LoginURL(),
		Username:  s.Config.Username,
	}
	scripts, err := p.materializer.MaterializeAll(ctx, s.Name, cases, target)
	if err != nil {
		return nil, fmt.Errorf("materialize scripts: %w", err)
	}

	if err := p.suites.Update(ctx, s.Name, suite.SetGeneration(cases, scripts, time.Now().UTC())); err != nil {
		return nil, fmt.Errorf("persist generation: %w", err)
	}
	return p.suites.GetByName(ctx, s.Name)
}

// loadOrCreate fetches the suite record, creating it on first generation.
// Request fields override the stored config when set.
func (p *Pipeline) loadOrCreate(ctx context.Context, req GenerateRequest) (*suite.Suite, error) {
	s, err := p.suites.GetByName(ctx, req.SuiteName)
	if errors.Is(err, suite.ErrSuiteNotFound) {
		s = &suite.Suite{
			Name:        req.SuiteName,
			Description: req.Description,
			Config: suite.SuiteConfig{
				TargetURL: req.TargetURL,
				Goal:      req.Goal,
				Username:  p.identity.Handle(),
			},
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if err := p.suites.Create(ctx, s); err != nil {
			return nil, fmt.Errorf("create suite: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load suite: %w", err)
	}

	config := s.Config
	if req.TargetURL != "" {
		config.TargetURL = req.TargetURL
	}
	if req.Goal != "" {
		config.Goal = req.Goal
	}
	if config != s.Config {
		if err := p.suites.Update(ctx, s.Name, suite.SetConfig(config)); err != nil {
			return nil, fmt.Errorf("update suite config: %w", err)
		}
		s.Config = config
	}
	return s, nil
}

// persistDiagnostic records an exploration failure as one reviewable case.
// The error text carries no secret material: the login flow never puts
// secrets in errors.
func (p *Pipeline) persistDiagnostic(ctx context.Context, s *suite.Suite, cause error) (*suite.Suite, error) {
	p.logger.Error(ctx, "exploration failed, recording diagnostic case", map[string]interface{}{
		"suite": s.Name,
		"error": cause.Error(),
	})

	cases := suite.Cases{{
		ID:    "ERR",
		Title: "Exploration failed",
		Steps: []suite.Step{{ActionText: fmt.Sprintf("Review the failure: %v", cause)}},
	}}
	if err := p.suites.Update(ctx, s.Name, suite.SetGeneration(cases, suite.Scripts{}, time.Now().UTC())); err != nil {
		return nil, fmt.Errorf("persist diagnostic case: %w", err)
	}
	return p.suites.GetByName(ctx, s.Name)
}
