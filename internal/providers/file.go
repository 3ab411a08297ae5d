package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileFixture serves every provider contract from a single JSON document,
// for offline runs and integration tests.
type FileFixture struct {
	LeagueData  League                    `json:"league"`
	RosterData  []Roster                  `json:"rosters"`
	Scoreboards map[string][]TeamPoints   `json:"scoreboards"`
	BracketData []BracketFinish           `json:"bracket"`
	Players     map[string]PlayerValue    `json:"players"`
	TradeData   []Trade                   `json:"trades"`
	InjuryData  map[string]InjuryReport   `json:"injuries"`
	DemandData  map[string]PositionDemand `json:"demand"`
}

// LoadFixture parses a fixture document from disk.
func LoadFixture(path string) (*FileFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f FileFixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Bundle exposes the fixture through the provider contracts.
func (f *FileFixture) Bundle() Bundle {
	return Bundle{League: f, Valuation: f, Trades: f, Injuries: f, Demand: f}
}

func (f *FileFixture) League(_ context.Context, leagueID string) (*League, error) {
	if leagueID != f.LeagueData.ID {
		return nil, fmt.Errorf("fixture has no league %s", leagueID)
	}
	league := f.LeagueData
	return &league, nil
}

func (f *FileFixture) Rosters(_ context.Context, _ string) ([]Roster, error) {
	return f.RosterData, nil
}

func (f *FileFixture) Scoreboard(_ context.Context, _ string, week int) ([]TeamPoints, error) {
	board, ok := f.Scoreboards[fmt.Sprintf("%d", week)]
	if !ok {
		return nil, fmt.Errorf("fixture has no scoreboard for week %d", week)
	}
	return board, nil
}

func (f *FileFixture) Bracket(_ context.Context, _ string) ([]BracketFinish, error) {
	return f.BracketData, nil
}

func (f *FileFixture) Values(_ context.Context, playerIDs []string) (map[string]PlayerValue, error) {
	out := make(map[string]PlayerValue, len(playerIDs))
	for _, id := range playerIDs {
		if v, ok := f.Players[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *FileFixture) Trades(_ context.Context, _ string) ([]Trade, error) {
	return f.TradeData, nil
}

func (f *FileFixture) Injuries(_ context.Context) (map[string]InjuryReport, error) {
	return f.InjuryData, nil
}

func (f *FileFixture) DemandIndex(_ context.Context, _ string) (map[string]PositionDemand, error) {
	return f.DemandData, nil
}
