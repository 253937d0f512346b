package game

// MonsterKilled is published when a monster's health reaches zero.
type MonsterKilled struct {
	UID       int
	MonsterID int
	Name      string
	Drops     []int
}

func (MonsterKilled) EventName() string { return "monster.killed" }

// PlayerHit is published after a monster lands a hit on the player.
type PlayerHit struct {
	SourceUID  int
	SourceName string
	Damage     int
	Health     int
}

func (PlayerHit) EventName() string { return "player.hit" }

// PlayerDied is published once when the player's health reaches zero.
type PlayerDied struct {
	Cause string
}

func (PlayerDied) EventName() string { return "player.died" }

// ItemConsumed is published after the player eats or applies an item.
type ItemConsumed struct {
	ItemID int
	Heal   int
	Food   int
}

func (ItemConsumed) EventName() string { return "item.consumed" }
