// Package operations routes free-text queries to the staff, camera,
// and door engines. A prefix like "door:" forces an engine; otherwise
// keyword and shape heuristics decide, with a fallback chain reserved
// for queries no heuristic can place.
package operations

import (
	"context"
	"errors"
	"strings"

	"github.com/Barry1701/AutoAgent/internal/config"
	"github.com/Barry1701/AutoAgent/internal/observability"
	"github.com/Barry1701/AutoAgent/internal/retrieval"
)

// Agent is the contract every lookup engine satisfies.
type Agent interface {
	Answer(ctx context.Context, query string) (string, bool, error)
	Invalidate(ctx context.Context) error
	Name() string
}

// prefixOverrides map explicit query prefixes to an intent.
var prefixOverrides = []struct {
	prefix string
	intent retrieval.Intent
}{
	{"staff:", retrieval.IntentStaff},
	{"camera:", retrieval.IntentCamera},
	{"cameras:", retrieval.IntentCamera},
	{"door:", retrieval.IntentDoor},
	{"doors:", retrieval.IntentDoor},
}

const undeterminedMessage = "I couldn't determine what you need. " +
	"Try e.g. 'psa John Smith', '204', or '052A'."

// Router dispatches queries to the right engine.
type Router struct {
	staff      Agent
	cameras    Agent
	doors      Agent
	classifier *retrieval.IntentClassifier
	logger     *observability.Logger
}

// NewRouter wires the three engines behind one dispatch surface.
func NewRouter(staff, cameras, doors Agent, logger *observability.Logger) *Router {
	return &Router{
		staff:      staff,
		cameras:    cameras,
		doors:      doors,
		classifier: retrieval.NewIntentClassifier(),
		logger:     logger.WithAgent("operations_agent"),
	}
}

// Name identifies the router to the CLI.
func (r *Router) Name() string { return "operations_agent" }

// Invalidate drops every engine's cached table. The first error is
// returned after all engines have been tried.
func (r *Router) Invalidate(ctx context.Context) error {
	var firstErr error
	for _, a := range []Agent{r.staff, r.cameras, r.doors} {
		if err := a.Invalidate(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Answer dispatches the query. An explicit prefix pins the engine. A
// classified intent dispatches to its engine alone, even when that
// engine finds nothing. Only an unclassifiable query walks the door,
// camera, staff fallback chain.
func (r *Router) Answer(ctx context.Context, query string) (string, bool, error) {
	if agent, rest, ok := r.overridden(query); ok {
		r.logger.Debug().Str("engine", agent.Name()).Msg("Prefix override")
		return agent.Answer(ctx, rest)
	}

	intent := r.classifier.Classify(query)
	r.logger.Debug().Str("intent", string(intent)).Msg("Classified query")
	if agent := r.agentFor(intent); agent != nil {
		return agent.Answer(ctx, query)
	}

	for _, agent := range []Agent{r.doors, r.cameras, r.staff} {
		text, matched, err := agent.Answer(ctx, query)
		if err != nil {
			// An unconfigured engine must not break the chain for the
			// ones that are configured.
			if errors.Is(err, config.ErrMissingValue) {
				r.logger.Warn().Err(err).Str("engine", agent.Name()).Msg("Engine not configured, skipping")
				continue
			}
			return "", false, err
		}
		if matched {
			return text, true, nil
		}
	}
	return undeterminedMessage, false, nil
}

// overridden strips a recognized prefix and returns the pinned engine.
func (r *Router) overridden(query string) (Agent, string, bool) {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)
	for _, o := range prefixOverrides {
		if strings.HasPrefix(lower, o.prefix) {
			rest := strings.TrimSpace(trimmed[len(o.prefix):])
			return r.agentFor(o.intent), rest, true
		}
	}
	return nil, "", false
}

func (r *Router) agentFor(intent retrieval.Intent) Agent {
	switch intent {
	case retrieval.IntentStaff:
		return r.staff
	case retrieval.IntentCamera:
		return r.cameras
	case retrieval.IntentDoor:
		return r.doors
	default:
		return nil
	}
}
