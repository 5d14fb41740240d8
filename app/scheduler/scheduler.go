package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lgarnier/fleetwatch/app/database"
	"github.com/lgarnier/fleetwatch/app/feed"
	"github.com/lgarnier/fleetwatch/app/metrics"
	"github.com/lgarnier/fleetwatch/app/notify"
	"github.com/lgarnier/fleetwatch/app/status"
)

// fetcher and parser are the feed pipeline seams; satisfied by feed.Fetcher
// and feed.Parser.
type fetcher interface {
	Fetch(ctx context.Context, url string, priorHash string, priorSeen *time.Time) (*feed.FetchResult, error)
}

type parser interface {
	Parse(data []byte, sourceURL string) ([]feed.Item, error)
}

// dispatcher routes significant transitions; satisfied by notify.Dispatcher.
type dispatcher interface {
	Dispatch(ctx context.Context, event notify.Event) (attempted, failed int)
}

// Scheduler runs one polling loop per guild. Each loop ticks on its guild's
// configured interval with fresh jitter every tick, polls the guild's
// vehicles sequentially, and dispatches notifications for significant
// status transitions. Loops are independent: a slow or failing guild never
// delays another.
type Scheduler struct {
	vehicles   database.VehicleRepository
	states     database.StateRepository
	configs    database.GuildConfigRepository
	fetcher    fetcher
	parser     parser
	dispatcher dispatcher
	recorder   *metrics.Recorder

	defaultPollingSec int

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	guilds  map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func New(vehicles database.VehicleRepository, states database.StateRepository,
	configs database.GuildConfigRepository, fetcher fetcher, parser parser,
	dispatcher dispatcher, recorder *metrics.Recorder, defaultPollingSec int) *Scheduler {
	return &Scheduler{
		vehicles:          vehicles,
		states:            states,
		configs:           configs,
		fetcher:           fetcher,
		parser:            parser,
		dispatcher:        dispatcher,
		recorder:          recorder,
		defaultPollingSec: defaultPollingSec,
		guilds:            make(map[string]context.CancelFunc),
	}
}

// Start launches a polling loop for every guild that has vehicles. Calling
// Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Warn("Scheduler already running, ignoring start")
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	guildIDs, err := s.vehicles.GetDistinctGuildIDs()
	if err != nil {
		slog.Error("Failed to load guild list, starting with none", "error", err)
	}
	for _, guildID := range guildIDs {
		s.startGuildLocked(guildID)
	}

	slog.Info("Scheduler started", "guilds", len(guildIDs))
}

// Stop cancels every polling loop and waits for them to finish. Stopping a
// stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.guilds = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// StartGuild launches a polling loop for one guild, typically after its
// first vehicle is registered. Already-polled guilds are left alone.
func (s *Scheduler) StartGuild(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	if _, ok := s.guilds[guildID]; ok {
		return
	}
	s.startGuildLocked(guildID)
	slog.Info("Guild polling started", "guild_id", guildID)
}

// StopGuild cancels one guild's polling loop, typically after its last
// vehicle is removed.
func (s *Scheduler) StopGuild(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.guilds[guildID]; ok {
		cancel()
		delete(s.guilds, guildID)
		slog.Info("Guild polling stopped", "guild_id", guildID)
	}
}

// RestartGuild bounces a guild's loop so a changed polling interval takes
// effect on the next tick.
func (s *Scheduler) RestartGuild(guildID string) {
	s.StopGuild(guildID)
	s.StartGuild(guildID)
}

// GuildCount returns the number of guilds currently being polled.
func (s *Scheduler) GuildCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.guilds)
}

func (s *Scheduler) startGuildLocked(guildID string) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.guilds[guildID] = cancel
	s.wg.Add(1)
	go s.runGuild(ctx, guildID)
}

func (s *Scheduler) runGuild(ctx context.Context, guildID string) {
	defer s.wg.Done()

	timer := time.NewTimer(StartupDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		ok := s.pollGuild(ctx, guildID)
		if s.recorder != nil {
			s.recorder.RecordPoll(ok, time.Since(start))
		}

		timer.Reset(NextPollingDelay(s.guildPollingSec(guildID)))
	}
}

// guildPollingSec resolves a guild's configured interval, falling back to
// the process default when the guild has no config.
func (s *Scheduler) guildPollingSec(guildID string) int {
	config, err := s.configs.GetGuildConfig(guildID)
	if err != nil {
		slog.Warn("Failed to load guild config, using default interval",
			"guild_id", guildID, "error", err)
		return s.defaultPollingSec
	}
	if config == nil || config.PollingSec == 0 {
		return s.defaultPollingSec
	}
	return config.PollingSec
}

// pollGuild polls every vehicle of a guild sequentially. A failing vehicle
// is logged and skipped; the tick continues with the rest.
func (s *Scheduler) pollGuild(ctx context.Context, guildID string) bool {
	vehicles, err := s.vehicles.GetVehiclesWithState(guildID)
	if err != nil {
		slog.Error("Failed to load vehicles for poll", "guild_id", guildID, "error", err)
		return false
	}

	ok := true
	for _, vehicle := range vehicles {
		if ctx.Err() != nil {
			return false
		}
		if err := s.pollVehicleSafe(ctx, vehicle); err != nil {
			ok = false
			slog.Error("Vehicle poll failed",
				"guild_id", guildID, "vehicle", vehicle.Name, "error", err)
		}
	}
	return ok
}

// pollVehicleSafe converts a panic in one vehicle's poll into an error so
// the rest of the tick proceeds.
func (s *Scheduler) pollVehicleSafe(ctx context.Context, vehicle database.VehicleWithState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during poll: %v", r)
		}
	}()
	return s.pollVehicle(ctx, vehicle)
}

// pollVehicle runs the fetch, parse, detect, persist, dispatch pipeline for
// one vehicle. Unchanged content short-circuits before parsing; the payload
// fingerprint is the authoritative change signal.
func (s *Scheduler) pollVehicle(ctx context.Context, vehicle database.VehicleWithState) error {
	var priorHash, priorStatus string
	var priorSeen *time.Time
	if vehicle.State != nil {
		priorHash = vehicle.State.LastPayloadHash
		priorStatus = vehicle.State.LastStatus
		seen := vehicle.State.LastSeenAt
		priorSeen = &seen
	}

	result, err := s.fetcher.Fetch(ctx, vehicle.RSSURL, priorHash, priorSeen)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if result.Fingerprint == priorHash {
		slog.Debug("Feed payload unchanged",
			"guild_id", vehicle.GuildID, "vehicle", vehicle.Name)
		return nil
	}

	items, err := s.parser.Parse(result.Content, vehicle.RSSURL)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		slog.Warn("Feed has no items",
			"guild_id", vehicle.GuildID, "vehicle", vehicle.Name, "url", vehicle.RSSURL)
		return nil
	}

	current := items[0]
	newStatus := status.Normalize(current.Status)

	err = s.states.UpsertState(database.VehicleState{
		GuildID:         vehicle.GuildID,
		Name:            vehicle.Name,
		LastStatus:      string(newStatus),
		LastSeenAt:      result.FetchedAt,
		LastPayloadHash: result.Fingerprint,
	})
	if err != nil {
		return err
	}

	if !status.IsSignificant(priorStatus, newStatus) {
		slog.Debug("Status transition not significant",
			"guild_id", vehicle.GuildID, "vehicle", vehicle.Name,
			"old", priorStatus, "new", newStatus)
		return nil
	}

	slog.Info("Significant status transition",
		"guild_id", vehicle.GuildID, "vehicle", vehicle.Name,
		"old", priorStatus, "new", newStatus,
		"priority", status.PriorityOf(newStatus))

	attempted, failed := s.dispatcher.Dispatch(ctx, notify.Event{
		GuildID:    vehicle.GuildID,
		Vehicle:    vehicle.Name,
		OldStatus:  priorStatus,
		NewStatus:  newStatus,
		ObservedAt: current.UpdatedAt,
		SourceURL:  vehicle.RSSURL,
	})
	if failed > 0 {
		slog.Warn("Notification delivery partially failed",
			"guild_id", vehicle.GuildID, "vehicle", vehicle.Name,
			"attempted", attempted, "failed", failed)
	}
	return nil
}
