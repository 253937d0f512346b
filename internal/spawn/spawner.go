// Package spawn brings monsters into a session on a fixed interval.
package spawn

import (
	"math/rand"
	"slices"
	"strconv"
	"time"

	"campfire/internal/config"
	"campfire/internal/entity"
	"campfire/internal/event"
	xlog "campfire/internal/log"
	"campfire/internal/metrics"
	"campfire/internal/object"

	"github.com/rs/zerolog"
)

// MonsterSpawned is published after a monster joins the registry.
type MonsterSpawned struct {
	UID       int
	MonsterID int
	Name      string
	X, Y      float64
}

func (MonsterSpawned) EventName() string { return "monster.spawned" }

// Spawner owns the spawn timer and monster selection. It is driven by the
// session loop and is not safe for concurrent use.
type Spawner struct {
	table    config.Lookup
	registry *object.Registry
	bus      *event.Bus
	rng      *rand.Rand

	enabled     bool
	random      bool
	interval    time.Duration
	minInterval time.Duration
	ids         []int
	x, y        float64
	maxAlive    int

	elapsed time.Duration
	cursor  int
	logger  zerolog.Logger
}

// New creates a spawner from settings. table is the Monster table; rng may be
// nil for a time-seeded source.
func New(s config.SpawnSettings, table config.Lookup, reg *object.Registry, bus *event.Bus, rng *rand.Rand) *Spawner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	sp := &Spawner{
		table:       table,
		registry:    reg,
		bus:         bus,
		rng:         rng,
		enabled:     s.Enabled,
		random:      s.Random,
		minInterval: max(s.MinInterval, time.Millisecond),
		ids:         slices.Clone(s.MonsterIDs),
		x:           s.X,
		y:           s.Y,
		maxAlive:    s.MaxAlive,
		logger:      xlog.WithComponent("spawn"),
	}
	sp.SetInterval(s.Interval)
	return sp
}

func (s *Spawner) Enabled() bool           { return s.enabled }
func (s *Spawner) Interval() time.Duration { return s.interval }
func (s *Spawner) MonsterIDs() []int       { return slices.Clone(s.ids) }

// Start restarts the spawn timer.
func (s *Spawner) Start() {
	s.elapsed = 0
}

// Stop disables spawning until SetEnabled(true).
func (s *Spawner) Stop() {
	s.enabled = false
}

// SetEnabled toggles spawning. Enabling restarts the timer.
func (s *Spawner) SetEnabled(enabled bool) {
	s.enabled = enabled
	if enabled {
		s.Start()
	}
}

// SetInterval changes the spawn interval, never going below the minimum.
func (s *Spawner) SetInterval(d time.Duration) {
	if d < s.minInterval {
		s.logger.Debug().
			Str("event", "spawn.interval_clamped").
			Dur("requested", d).
			Dur("min", s.minInterval).
			Msg("spawn interval below minimum")
		d = s.minInterval
	}
	s.interval = d
}

// SetMonsterIDs replaces the spawnable monster list.
func (s *Spawner) SetMonsterIDs(ids []int) {
	s.ids = slices.Clone(ids)
	s.cursor = 0
}

// AddMonster appends one id to the spawnable list.
func (s *Spawner) AddMonster(id int) {
	s.ids = append(s.ids, id)
}

// SetPosition moves the spawn point.
func (s *Spawner) SetPosition(x, y float64) {
	s.x, s.y = x, y
}

// SetRandom switches between random and round-robin selection.
func (s *Spawner) SetRandom(random bool) {
	s.random = random
}

// SetTable swaps the Monster table, used after a reload.
func (s *Spawner) SetTable(table config.Lookup) {
	s.table = table
}

// Update advances the timer by dt and spawns when the interval has elapsed.
// It returns the spawned monster, or nil.
func (s *Spawner) Update(dt time.Duration) *entity.Monster {
	if !s.enabled {
		return nil
	}
	s.elapsed += dt
	if s.elapsed < s.interval {
		return nil
	}
	s.elapsed = 0
	return s.spawn()
}

// SpawnNow spawns immediately, without touching the timer.
func (s *Spawner) SpawnNow() *entity.Monster {
	if !s.enabled {
		return nil
	}
	return s.spawn()
}

func (s *Spawner) spawn() *entity.Monster {
	if s.maxAlive > 0 && s.registry.CountKind(object.KindMonster) >= s.maxAlive {
		s.logger.Debug().Str("event", "spawn.capped").Int("max_alive", s.maxAlive).Msg("too many monsters alive")
		return nil
	}
	id := s.pick()
	if id <= 0 {
		return nil
	}
	m, err := entity.NewMonster(id, s.table)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", "spawn.skipped").Int("monster", id).Msg("cannot spawn monster")
		return nil
	}
	s.registry.Register(m)
	metrics.MonstersSpawnedTotal.WithLabelValues(strconv.Itoa(id)).Inc()
	s.logger.Info().
		Str("event", "spawn.spawned").
		Int("uid", m.UID()).
		Int("monster", id).
		Str("name", m.Name()).
		Msg("monster spawned")
	if s.bus != nil {
		event.Publish(s.bus, MonsterSpawned{UID: m.UID(), MonsterID: id, Name: m.Name(), X: s.x, Y: s.y})
	}
	return m
}

func (s *Spawner) pick() int {
	if len(s.ids) == 0 {
		return 0
	}
	if s.random {
		return s.ids[s.rng.Intn(len(s.ids))]
	}
	id := s.ids[s.cursor%len(s.ids)]
	s.cursor = (s.cursor + 1) % len(s.ids)
	return id
}
