package graphs

import (
	"encoding/json"
	"os"

	"github.com/psidex/chargraph/internal/stats"
)

// StatsJSON defines a CliGraphProvider that writes the character ranking and
// its lookup maps to a JSON file. Rows are ranked by interactions.
type StatsJSON struct {
	*Collector
}

var _ CliGraphProvider = (*StatsJSON)(nil)

func NewStatsJSON() *StatsJSON {
	return &StatsJSON{Collector: NewCollector()}
}

func (s *StatsJSON) toJson() ([]byte, error) {
	res := s.Stats()
	res.Rows = stats.Ranked(res.Rows)
	return json.MarshalIndent(res, "", "  ")
}

func (s *StatsJSON) RenderToFile(filename string) error {
	filename = filename + ".stats.json"

	jsonData, err := s.toJson()
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	return err
}
