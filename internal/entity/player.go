package entity

import "github.com/rocketscienceinc/kalah-backend/internal/kalah"

const BotPlayerID = "bot"

type Player struct {
	ID     string     `json:"id"`
	Side   kalah.Side `json:"side"`
	GameID string     `json:"game_id,omitempty"`
}

func NewBotPlayer(gameID string, side kalah.Side) *Player {
	return &Player{
		ID:     BotPlayerID,
		Side:   side,
		GameID: gameID,
	}
}

func (that *Player) IsBot() bool {
	return that.ID == BotPlayerID
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}
