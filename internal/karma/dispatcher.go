package karma

import (
	"context"
	"fmt"
	"time"

	"github.com/datagrail/karmabot/internal/domain"
	"github.com/datagrail/karmabot/internal/logging"
	"github.com/datagrail/karmabot/internal/metrics"
)

// EventDispatcher orchestrates the pipeline for one inbound event:
// admit through the ledger, scan for tokens, then run the karma flow or the
// reload flow. Dispatch never panics the transport: internal failures are
// logged and counted, and the webhook acks regardless.
type EventDispatcher struct {
	ledger        domain.EventLedger
	resolver      *EntityResolver
	mutator       *KarmaMutator
	refresher     *DirectoryRefresher
	notifier      domain.Notifier
	reloadCommand string
}

func NewEventDispatcher(
	ledger domain.EventLedger,
	resolver *EntityResolver,
	mutator *KarmaMutator,
	refresher *DirectoryRefresher,
	notifier domain.Notifier,
	reloadCommand string,
) *EventDispatcher {
	return &EventDispatcher{
		ledger:        ledger,
		resolver:      resolver,
		mutator:       mutator,
		refresher:     refresher,
		notifier:      notifier,
		reloadCommand: reloadCommand,
	}
}

// Dispatch processes one decoded event. Token processing within an event is
// strictly sequential: a later token may reference an entity a prior token
// just changed, so extraction order is notification order.
func (d *EventDispatcher) Dispatch(ctx context.Context, ev domain.InboundEvent) error {
	start := time.Now()
	defer func() {
		metrics.EventProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	if !ev.IsPlainMessage() {
		metrics.EventsTotal.WithLabelValues("ignored").Inc()
		return nil
	}

	admitted, err := d.ledger.Admit(ctx, ev.EventID())
	if err != nil {
		// Without the ledger we cannot prove first delivery; drop the event
		// rather than risk double-scoring a retry.
		metrics.EventsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("dedup admission for %s: %w", ev.EventID(), err)
	}
	if !admitted {
		metrics.EventsTotal.WithLabelValues("duplicate").Inc()
		logging.WithEvent(ev.EventID()).Debug("Dropping duplicate delivery")
		return nil
	}

	if tokens := ScanTokens(ev.Text); len(tokens) > 0 {
		metrics.EventsTotal.WithLabelValues("karma").Inc()
		d.runKarmaFlow(ctx, ev, tokens)
		return nil
	}

	if ev.Text == d.reloadCommand {
		metrics.EventsTotal.WithLabelValues("reload").Inc()
		return d.runReloadFlow(ctx, ev)
	}

	metrics.EventsTotal.WithLabelValues("no_tokens").Inc()
	return nil
}

// runKarmaFlow processes each token independently: a failure on one token
// must not prevent processing of subsequent tokens.
func (d *EventDispatcher) runKarmaFlow(ctx context.Context, ev domain.InboundEvent, tokens []Token) {
	author := ev.AuthorToken()
	log := logging.WithEvent(ev.EventID())

	for _, token := range tokens {
		if token.Entity == "" {
			// Malformed upstream input like a bare "++": no scoring key.
			metrics.TokensTotal.WithLabelValues("empty").Inc()
			continue
		}

		res, err := d.resolver.Resolve(ctx, token.Entity, author)
		if err != nil {
			metrics.TokensTotal.WithLabelValues("resolve_error").Inc()
			log.Error("Entity resolution failed", "entity", token.Entity, "error", err)
			continue
		}

		text, err := d.mutator.Apply(ctx, res, token.Delta)
		if err != nil {
			metrics.TokensTotal.WithLabelValues("store_error").Inc()
			log.Error("Karma mutation failed", "entity", res.Entity, "error", err)
			continue
		}

		if err := d.notifier.PostMessage(ctx, ev.ChannelID, text); err != nil {
			metrics.TokensTotal.WithLabelValues("post_error").Inc()
			log.Error("Failed to post notification", "entity", res.Entity, "error", err)
			continue
		}

		if res.IsSelf {
			metrics.TokensTotal.WithLabelValues("self").Inc()
		} else {
			metrics.TokensTotal.WithLabelValues("applied").Inc()
		}
	}
}

func (d *EventDispatcher) runReloadFlow(ctx context.Context, ev domain.InboundEvent) error {
	count, err := d.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("directory refresh: %w", err)
	}

	if err := d.notifier.PostMessage(ctx, ev.ChannelID, reloadedMessage(count)); err != nil {
		return fmt.Errorf("failed to post reload confirmation: %w", err)
	}
	return nil
}
