// Command scenario drives one full certification pipeline against the
// in-memory stub engine: a visitor scrolls the feed and dwells on an expert,
// the expert submits a demande, a manager approves it, and the engine
// activates the badge and notification jobs, including a duplicate
// creer-badge activation to exercise the ledger's idempotency.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"certflow/badge"
	"certflow/demande"
	"certflow/engagement"
	"certflow/engine"
	"certflow/feed"
	"certflow/notification"
	"certflow/visitor"
	"certflow/worker"
)

const visiteurID = "visiteur-1"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.DebugLevel).With().Timestamp().Logger()

	stub := engine.NewStub()
	gateway := engine.NewGateway(stub, engine.WithLogger(logger))
	registry := visitor.NewRegistry()

	demandeRepo := demande.NewMemRepository()
	badgeRepo := badge.NewMemRepository()
	demandeSvc := demande.NewService(demandeRepo)
	badgeSvc := badge.NewService(badgeRepo, badge.NewPreuveEvaluator(badge.StaticPreuves{"competence-go": 6}))

	dispatcher := worker.NewDispatcher(stub, worker.WithWorkers(2), worker.WithLogger(logger))
	handlers := worker.NewHandlers(demandeSvc, badgeSvc, notification.NewLogNotifier(logger), logger)
	handlers.RegisterAll(dispatcher)

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		_ = dispatcher.Run(ctx, stub.Jobs())
	}()

	// The visitor arrives: an engine instance starts and is correlated.
	instanceKey := stub.StartInstance(visiteurID)
	registry.Register(visiteurID, instanceKey)
	logger.Info().Int64("instance_key", instanceKey).Msg("visitor correlated")

	// The visitor scrolls the feed and dwells on the expert's card.
	feedSvc := feed.NewService(demoFeed(), gateway).WithLogger(logger)
	batch, err := feedSvc.Scroll(ctx, feed.ScrollParams{VisiteurID: visiteurID})
	if err != nil {
		logger.Fatal().Err(err).Msg("scroll")
	}
	logger.Info().Int("items", len(batch.PileContenu)).Str("next_cursor", batch.NextCursor).Msg("feed batch served")

	dwellSvc := engagement.NewService(gateway).WithLogger(logger)
	duree := int64(12_000)
	if _, err := dwellSvc.Dwell(ctx, engagement.DwellParams{
		VisiteurID: visiteurID, ItemID: batch.PileContenu[0].ID, EventType: engagement.DwellStart,
	}); err != nil {
		logger.Fatal().Err(err).Msg("dwell start")
	}
	res, err := dwellSvc.Dwell(ctx, engagement.DwellParams{
		VisiteurID: visiteurID, ItemID: batch.PileContenu[0].ID, EventType: engagement.DwellStop, DureeDwellMs: &duree,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("dwell stop")
	}
	logger.Info().Float64("score", res.Engagement.ScoreEngagement).Msg("engagement scored")

	// The expert submits, the manager approves.
	d, err := demandeSvc.Soumettre(ctx, demande.SoumissionParams{ExpertID: "expert-1", CompetenceID: "competence-go"})
	if err != nil {
		logger.Fatal().Err(err).Msg("soumettre")
	}
	if _, err := demandeSvc.Approuver(ctx, d.ID); err != nil {
		logger.Fatal().Err(err).Msg("approuver")
	}

	// The engine reaches the badge task and, being at-least-once, delivers it
	// twice.
	vars := engine.Variables{worker.VarDemandeID: d.ID, worker.VarExpertID: d.ExpertID}
	first := stub.Activate(worker.JobCreerBadge, vars)
	second := stub.Activate(worker.JobCreerBadge, vars)
	for _, job := range []engine.Job{first, second} {
		if !stub.WaitOutcome(job.Key, 5*time.Second) {
			logger.Fatal().Int64("job_key", job.Key).Msg("job did not settle")
		}
	}

	b, err := badgeSvc.FindByDemandeID(ctx, d.ID)
	if err != nil {
		logger.Fatal().Err(err).Msg("badge lookup")
	}
	logger.Info().Str("badge_id", b.ID).Str("niveau", b.Niveau.String()).Msg("badge issued exactly once")

	// Notification job completes even though delivery is a stub.
	notify := stub.Activate(worker.JobNotifierApprobation, engine.Variables{
		worker.VarDemandeID: d.ID, worker.VarExpertID: d.ExpertID, worker.VarBadgeID: b.ID,
	})
	if !stub.WaitOutcome(notify.Key, 5*time.Second) {
		logger.Fatal().Msg("notification job did not settle")
	}

	// Terminal signal for this visitor: sever the correlation.
	registry.Unregister(visiteurID)
	stub.Close()
	<-dispatchDone

	logger.Info().
		Int("messages_published", len(stub.Published(""))).
		Int("registry_size", registry.Len()).
		Msg("scenario complete")
	os.Exit(0)
}

func demoFeed() feed.StaticSource {
	items := make(feed.StaticSource, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, feed.Item{
			ID:       "item-" + string(rune('a'+i)),
			ExpertID: "expert-1",
			Titre:    "Expert Go publié",
		})
	}
	return items
}
