package console

import (
	"context"

	"github.com/TimurManjosov/apollo/internal/engine"
	"github.com/TimurManjosov/apollo/internal/rollout"
	"github.com/TimurManjosov/apollo/internal/telemetry"
)

// Evaluate resolves ref (id or key) and evaluates it against ectx. An unknown
// ref yields a NOT_FOUND result rather than an error. ectx is not modified.
func (c *Console) Evaluate(ctx context.Context, ref string, ectx engine.Context, explain bool) engine.Result {
	_, span := telemetry.StartSpan(ctx, "console.evaluate", "toggle.ref", ref)
	defer span.End()

	t, err := c.Lookup(ref)
	if err != nil {
		res := engine.Result{Reason: engine.ReasonNotFound}
		telemetry.Evaluations.WithLabelValues(string(res.Reason)).Inc()
		return res
	}

	evalCtx := make(engine.Context, len(ectx)+1)
	for k, v := range ectx {
		evalCtx[k] = v
	}
	if c.opts.TrafficBucketing {
		rollout.AssignTraffic(evalCtx, t.Key, c.opts.TrafficSalt)
	}

	var res engine.Result
	if explain {
		res = engine.Explain(&t, evalCtx)
	} else {
		res = engine.Evaluate(&t, evalCtx)
	}
	telemetry.Evaluations.WithLabelValues(string(res.Reason)).Inc()
	return res
}
