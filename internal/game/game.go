// Package game runs one player session: it owns the event bus, the player,
// the inventory, the equip coordinator and the monster spawner, and drives
// them from a single goroutine.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"campfire/internal/config"
	"campfire/internal/entity"
	"campfire/internal/equip"
	"campfire/internal/event"
	"campfire/internal/inventory"
	"campfire/internal/item"
	xlog "campfire/internal/log"
	"campfire/internal/metrics"
	"campfire/internal/object"
	"campfire/internal/spawn"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotStarted     = errors.New("game not started")
	ErrAlreadyStarted = errors.New("game already started")
	ErrStopped        = errors.New("game stopped")
	ErrNoTarget       = errors.New("no monster to attack")
	ErrCoolingDown    = errors.New("attack is cooling down")
	ErrPlayerDead     = errors.New("player is dead")
	ErrNotConsumable  = errors.New("item cannot be consumed")
)

// maxMessages bounds the in-memory message log.
const maxMessages = 50

// Option customises a Game.
type Option func(*Game)

// WithRand sets the random source used for monster selection.
func WithRand(rng *rand.Rand) Option { return func(g *Game) { g.rng = rng } }

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option { return func(g *Game) { g.sessionID = id } }

// WithPlayerName names the player.
func WithPlayerName(name string) Option { return func(g *Game) { g.playerName = name } }

// WithTableUpdates makes Tick swap in tables received on ch.
func WithTableUpdates(ch <-chan *config.Tables) Option { return func(g *Game) { g.reloads = ch } }

// WithClock replaces time.Now for run log timestamps.
func WithClock(now func() time.Time) Option { return func(g *Game) { g.now = now } }

// Game is one session. It is not safe for concurrent use; Run keeps every
// mutation on its own goroutine.
type Game struct {
	settings   config.Settings
	tables     *config.Tables
	sessionID  string
	playerName string
	rng        *rand.Rand
	now        func() time.Time
	reloads    <-chan *config.Tables

	bus      *event.Bus
	catalog  *item.Catalog
	inv      *inventory.Inventory
	player   *entity.Player
	equip    *equip.Coordinator
	registry *object.Registry
	spawner  *spawn.Spawner
	subs     event.Subscriptions

	started bool
	stopped bool
	dead    bool
	elapsed time.Duration
	cursor  int

	messages   []string
	discovered map[int]bool // monster ids killed at least once
	lastHitBy  string
	runLog     RunLog
	logger     zerolog.Logger
}

// New builds a session from settings and tables. Nothing happens until Start.
func New(settings config.Settings, tables *config.Tables, opts ...Option) (*Game, error) {
	if tables == nil {
		return nil, errors.New("game: nil tables")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	g := &Game{
		settings:   settings,
		tables:     tables,
		sessionID:  uuid.NewString(),
		playerName: "Wilson",
		now:        time.Now,
		discovered: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(g.now().UnixNano()))
	}
	g.logger = xlog.ForSession("game", g.sessionID, map[string]string{"player": g.playerName})

	g.bus = event.NewBus(event.WithMaxDepth(settings.Events.MaxDepth), event.WithLogger(g.logger))
	g.catalog = item.NewCatalogFromTables(tables)
	g.inv = inventory.New(settings.Player.InventoryCapacity, g.catalog, g.bus)
	g.player = entity.NewPlayer(g.playerName, settings.Player, g.catalog)
	g.registry = object.NewRegistry()
	g.registry.Register(g.player)
	g.equip = equip.NewCoordinator(g.catalog, g.inv, g.player, g.bus)
	g.spawner = spawn.New(settings.Spawn, tables.MustReader(config.TableMonster), g.registry, g.bus, g.rng)

	g.runLog = RunLog{
		ID:             g.sessionID,
		Player:         g.playerName,
		MonstersKilled: make(map[string]int),
		ItemsUsed:      make(map[string]int),
	}
	return g, nil
}

// Start subscribes the session handlers and hands out the starting kit.
func (g *Game) Start() error {
	switch {
	case g.stopped:
		return ErrStopped
	case g.started:
		return ErrAlreadyStarted
	}
	g.started = true
	g.runLog.StartedAt = g.now()

	g.subs.Add(
		event.Subscribe(g.bus, g.onEquipChanged),
		event.Subscribe(g.bus, g.onMonsterSpawned),
		event.Subscribe(g.bus, g.onMonsterKilled),
		event.Subscribe(g.bus, g.onPlayerHit),
		event.Subscribe(g.bus, g.onPlayerDied),
		event.Subscribe(g.bus, g.onItemConsumed),
	)

	for _, id := range g.settings.Player.StartItems {
		if !g.inv.AddItem(id, 1) {
			g.logger.Warn().Str("event", "game.start_item_skipped").Int("item", id).Msg("start item did not fit")
		}
	}
	if err := g.equip.LoadFromSave(g.settings.Player.StartEquipment); err != nil {
		g.logger.Warn().Err(err).Str("event", "game.start_equipment").Msg("some start equipment was skipped")
	}
	g.spawner.Start()
	metrics.SessionsActive.Inc()

	g.logger.Info().Str("event", "game.started").Str("player", g.playerName).Msg("session started")
	g.addMessage("Night is coming. Keep the fire lit.")
	return nil
}

// Tick advances the session by dt.
func (g *Game) Tick(dt time.Duration) {
	if !g.started || g.stopped || dt <= 0 {
		return
	}
	g.applyReloads()
	g.elapsed += dt
	g.player.Update(dt)

	for _, m := range g.Monsters() {
		m.Update(dt)
		if g.dead {
			continue
		}
		dealt, ok := m.Attack(g.player)
		if !ok {
			continue
		}
		event.Publish(g.bus, PlayerHit{
			SourceUID:  m.UID(),
			SourceName: m.Name(),
			Damage:     dealt,
			Health:     g.player.Health(),
		})
	}
	if g.player.Dead() && !g.dead {
		g.dead = true
		event.Publish(g.bus, PlayerDied{Cause: g.lastHitBy})
	}
	if !g.dead {
		g.spawner.Update(dt)
	}
}

// applyReloads swaps in freshly parsed tables, if any are pending.
func (g *Game) applyReloads() {
	if g.reloads == nil {
		return
	}
	select {
	case ts, ok := <-g.reloads:
		if !ok {
			g.reloads = nil
			return
		}
		if ts != nil {
			g.ApplyTables(ts)
		}
	default:
	}
}

// ApplyTables replaces the data tables. Worn equipment is re-resolved so
// new bonuses apply immediately; items that no longer resolve go back to
// the backpack.
func (g *Game) ApplyTables(ts *config.Tables) {
	g.tables = ts
	g.catalog.Reset(ts.MustReader(config.TableItem), ts.MustReader(config.TableEquip))
	g.spawner.SetTable(ts.MustReader(config.TableMonster))

	worn := g.equip.ItemIDs()
	if err := g.equip.LoadFromSave(worn); err != nil {
		g.logger.Warn().Err(err).Str("event", "game.reload_equipment").Msg("equipment no longer resolves after reload")
	}
	g.returnUnworn(worn)
	g.equip.Sync()
	g.logger.Info().Str("event", "game.tables_applied").Msg("data tables reloaded")
	g.addMessage("The world shifts subtly.")
}

// returnUnworn puts every id in worn that is no longer equipped back into
// the inventory.
func (g *Game) returnUnworn(worn []int) {
	still := make(map[int]int)
	for _, id := range g.equip.All() {
		still[id]++
	}
	for _, id := range worn {
		if still[id] > 0 {
			still[id]--
			continue
		}
		name := g.catalog.Name(id)
		if !g.inv.AddItem(id, 1) {
			g.logger.Warn().Str("event", "game.reload_item_dropped").Int("item", id).Msg("unresolved equipment dropped, inventory full")
			g.addMessage(fmt.Sprintf("No room for %s.", name))
			continue
		}
		g.addMessage(fmt.Sprintf("The %s slips back into your pack.", name))
	}
}

// Stop unsubscribes every handler, stops spawning and appends the run log.
// It is safe to call more than once.
func (g *Game) Stop() (RunLog, error) {
	if !g.started {
		return RunLog{}, ErrNotStarted
	}
	if g.stopped {
		return g.runLog, nil
	}
	g.stopped = true
	g.subs.Close()
	g.spawner.Stop()
	metrics.SessionsActive.Dec()

	g.runLog.EndedAt = g.now()
	g.runLog.Survived = g.elapsed
	g.runLog.Died = g.dead
	g.runLog.Equipment = g.equip.ItemIDs()

	err := saveRunLog(g.runLog)
	if err != nil {
		g.logger.Warn().Err(err).Str("event", "game.runlog_failed").Msg("could not save run log")
	}
	g.logger.Info().
		Str("event", "game.stopped").
		Dur("survived", g.elapsed).
		Bool("died", g.dead).
		Msg("session stopped")
	return g.runLog, err
}

// Equip wears itemID from the inventory in its configured slot.
func (g *Game) Equip(itemID int) error {
	if err := g.ready(); err != nil {
		return err
	}
	if !g.catalog.IsEquip(itemID) {
		return fmt.Errorf("%w: %s", equip.ErrNotEquippable, g.catalog.Name(itemID))
	}
	slot, err := g.catalog.SlotOf(itemID)
	if err != nil {
		return fmt.Errorf("%w: %w", equip.ErrNotEquippable, err)
	}
	return g.equip.Equip(itemID, slot)
}

// Unequip returns the item in slot to the inventory.
func (g *Game) Unequip(slot item.Slot) error {
	if err := g.ready(); err != nil {
		return err
	}
	return g.equip.Unequip(slot)
}

// Consume eats or applies one unit of a non-equipment item.
func (g *Game) Consume(itemID int) error {
	if err := g.ready(); err != nil {
		return err
	}
	it, ok := g.catalog.Get(itemID)
	if !ok || it.IsEquip() || (it.Heal <= 0 && it.Food <= 0) {
		return fmt.Errorf("%w: %s", ErrNotConsumable, g.catalog.Name(itemID))
	}
	if !g.inv.RemoveItem(itemID, 1) {
		return fmt.Errorf("%w: %s", equip.ErrNotInInventory, it.Name)
	}
	g.player.Heal(it.Heal)
	g.player.SetHunger(g.player.Hunger() + it.Food)
	event.Publish(g.bus, ItemConsumed{ItemID: itemID, Heal: it.Heal, Food: it.Food})
	return nil
}

// AttackNearest hits the oldest living monster.
func (g *Game) AttackNearest() error {
	if err := g.ready(); err != nil {
		return err
	}
	monsters := g.Monsters()
	if len(monsters) == 0 {
		return ErrNoTarget
	}
	target := monsters[0]
	dealt, ok := g.player.Attack(target)
	if !ok {
		return ErrCoolingDown
	}
	g.runLog.DamageDealt += dealt
	if !target.Dead() {
		g.addMessage(fmt.Sprintf("You hit the %s for %d.", target.Name(), dealt))
		return nil
	}
	g.registry.Unregister(target)
	event.Publish(g.bus, MonsterKilled{
		UID:       target.UID(),
		MonsterID: target.ConfigID(),
		Name:      target.Name(),
		Drops:     target.Drops(),
	})
	return nil
}

// SpawnNow spawns a monster immediately. It returns nil when nothing spawned.
func (g *Game) SpawnNow() *entity.Monster {
	if g.ready() != nil {
		return nil
	}
	return g.spawner.SpawnNow()
}

func (g *Game) ready() error {
	switch {
	case !g.started:
		return ErrNotStarted
	case g.stopped:
		return ErrStopped
	case g.dead:
		return ErrPlayerDead
	}
	return nil
}

func (g *Game) addMessage(msg string) {
	g.messages = append(g.messages, msg)
	if len(g.messages) > maxMessages {
		g.messages = g.messages[len(g.messages)-maxMessages:]
	}
}

// Accessors used by front-ends and tests.

func (g *Game) SessionID() string               { return g.sessionID }
func (g *Game) Bus() *event.Bus                 { return g.bus }
func (g *Game) Player() *entity.Player          { return g.player }
func (g *Game) Inventory() *inventory.Inventory { return g.inv }
func (g *Game) Equipment() *equip.Coordinator   { return g.equip }
func (g *Game) Catalog() *item.Catalog          { return g.catalog }
func (g *Game) Spawner() *spawn.Spawner         { return g.spawner }
func (g *Game) Dead() bool                      { return g.dead }
func (g *Game) Elapsed() time.Duration          { return g.elapsed }
func (g *Game) Messages() []string              { return append([]string(nil), g.messages...) }
func (g *Game) Monsters() []*entity.Monster {
	return object.FindAllAs[*entity.Monster](g.registry, object.KindMonster)
}
