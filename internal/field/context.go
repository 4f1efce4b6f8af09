package field

import "github.com/banyan-robotics/banyan/internal/task"

// GameContext extends the execution context with game-specific state:
// which locations have been scored at and what game piece the robot is
// carrying.
type GameContext struct {
	*task.Context

	scoredLocations map[string]struct{}
	gamePiece       string
}

// NewGameContext creates a game context over the given tasks.
func NewGameContext(tasks []task.Task) *GameContext {
	return &GameContext{
		Context:         task.NewContext(tasks),
		scoredLocations: make(map[string]struct{}),
	}
}

// AddScoredLocation marks a location as scored.
func (c *GameContext) AddScoredLocation(location string) {
	c.scoredLocations[location] = struct{}{}
}

// HasScored reports whether a location has already been scored at.
func (c *GameContext) HasScored(location string) bool {
	_, ok := c.scoredLocations[location]
	return ok
}

// ScoredCount returns the number of distinct scored locations.
func (c *GameContext) ScoredCount() int {
	return len(c.scoredLocations)
}

// SetGamePiece records the game piece currently carried, empty for none.
func (c *GameContext) SetGamePiece(piece string) {
	c.gamePiece = piece
}

// HasGamePiece reports whether the robot is carrying a game piece.
func (c *GameContext) HasGamePiece() bool {
	return c.gamePiece != ""
}
