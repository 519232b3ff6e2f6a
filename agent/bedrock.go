package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/selector"
)

const (
	bedrockAnthropicVersion = "bedrock-2023-05-31"
	bedrockMaxTokens        = 4096

	// observationElementCap bounds how many element descriptors one
	// observation carries. Large pages would otherwise blow the prompt.
	observationElementCap = 60
)

// observedSelectors is the probe used to build page observations: the
// interactable surface an agent can meaningfully act on.
const observedSelectors = "a, button, input, select, textarea, [role='button']"

// BedrockRunner drives a Claude model on AWS Bedrock through a bounded
// observe-act loop. Each turn sends the task plus a digest of the current
// page; the model answers with one JSON action, which is applied through
// the selector resolver. The loop ends when the model reports done or the
// iteration cap / context deadline hits.
type BedrockRunner struct {
	client        *bedrockruntime.Client
	modelID       string
	maxIterations int
	resolver      *selector.Resolver
	logger        logger.Logger
}

// NewBedrockRunner builds a runner from agent configuration. Static
// credentials are used when configured, the default AWS chain otherwise.
func NewBedrockRunner(ctx context.Context, cfg Config, resolver *selector.Resolver, log logger.Logger) (*BedrockRunner, error) {
	cfg = cfg.withDefaults()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.BedrockRegion),
	}
	if cfg.BedrockAccessKey != "" && cfg.BedrockSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.BedrockAccessKey, cfg.BedrockSecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &BedrockRunner{
		client:        bedrockruntime.NewFromConfig(awsCfg),
		modelID:       cfg.BedrockModel,
		maxIterations: cfg.MaxIterations,
		resolver:      resolver,
		logger:        log,
	}, nil
}

// action is the model's per-turn reply.
type action struct {
	Action   string `json:"action"`
	Selector string `json:"selector,omitempty"`
	Value    string `json:"value,omitempty"`
	Done     bool   `json:"done,omitempty"`
	Result   string `json:"result,omitempty"`
}

// Run implements Runner.
func (r *BedrockRunner) Run(ctx context.Context, task string, page browser.Page) (string, error) {
	transcript := []string{task}

	for i := 0; i < r.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		observation, err := r.observe(ctx, page)
		if err != nil {
			return "", fmt.Errorf("observe page: %w", err)
		}

		reply, err := r.invoke(ctx, transcript, observation)
		if err != nil {
			return "", err
		}
		transcript = append(transcript, observation, reply)

		act, err := parseAction(reply)
		if err != nil {
			r.logger.Warn(ctx, "unparseable agent action, treating reply as final", map[string]interface{}{
				"iteration": i,
			})
			return reply, nil
		}
		if act.Done {
			return act.Result, nil
		}

		if err := r.apply(ctx, page, act); err != nil {
			// Report the failure back; the model gets to recover.
			transcript = append(transcript, fmt.Sprintf("Action failed: %v", err))
			r.logger.Debug(ctx, "agent action failed", map[string]interface{}{
				"action":    act.Action,
				"iteration": i,
				"error":     err.Error(),
			})
		}
	}

	return "", fmt.Errorf("agent did not finish within %d iterations", r.maxIterations)
}

// observe builds a compact digest of the current page: URL, title, and one
// descriptor line per interactable element.
func (r *BedrockRunner) observe(ctx context.Context, page browser.Page) (string, error) {
	title, err := page.Title(ctx)
	if err != nil {
		return "", err
	}
	elements, err := page.Elements(ctx, observedSelectors)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current page: %s\nTitle: %s\nInteractable elements:\n", page.URL(), title)
	count := 0
	for _, el := range elements {
		if count >= observationElementCap {
			b.WriteString("... (more elements truncated)\n")
			break
		}
		ok, err := el.Interactable()
		if err != nil || !ok {
			continue
		}
		desc, err := el.Describe()
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", desc)
		count++
	}
	b.WriteString(`
Reply with exactly one JSON object:
{"action": "click|fill|goto|wait", "selector": "<css>", "value": "<text for fill, URL for goto>", "done": false}
or, when finished:
{"action": "none", "done": true, "result": "<your final output>"}`)
	return b.String(), nil
}

// invoke sends the transcript plus observation to the model and returns its
// text reply.
func (r *BedrockRunner) invoke(ctx context.Context, transcript []string, observation string) (string, error) {
	prompt := strings.Join(append(append([]string{}, transcript...), observation), "\n\n")

	requestBody := map[string]interface{}{
		"anthropic_version": bedrockAnthropicVersion,
		"max_tokens":        bedrockMaxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
				},
			},
		},
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal Bedrock request: %w", err)
	}

	output, err := r.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(r.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", fmt.Errorf("invoke Bedrock model: %w", err)
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("unmarshal Bedrock response: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty Bedrock response")
	}
	return strings.TrimSpace(response.Content[0].Text), nil
}

// parseAction decodes one action object from a model reply, tolerating
// markdown fences around the JSON.
func parseAction(reply string) (*action, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var act action
	if err := json.Unmarshal([]byte(text), &act); err != nil {
		return nil, err
	}
	if act.Action == "" && !act.Done {
		return nil, fmt.Errorf("action object missing action field")
	}
	return &act, nil
}

// apply executes one action on the page.
func (r *BedrockRunner) apply(ctx context.Context, page browser.Page, act *action) error {
	switch act.Action {
	case "click":
		_, err := r.resolver.Click(ctx, page, []string{act.Selector})
		return err
	case "fill":
		_, err := r.resolver.Fill(ctx, page, []string{act.Selector}, act.Value)
		return err
	case "goto":
		if err := page.Goto(ctx, act.Value); err != nil {
			return err
		}
		return page.WaitSettle(ctx)
	case "wait", "none", "":
		return page.WaitSettle(ctx)
	default:
		return fmt.Errorf("unknown action %q", act.Action)
	}
}
