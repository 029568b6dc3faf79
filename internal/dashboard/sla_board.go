package dashboard

import (
	"rayenna-crm/internal/models"
	"rayenna-crm/internal/sla"
)

type IndicatorCounts struct {
	Green int `json:"green"`
	Amber int `json:"amber"`
	Red   int `json:"red"`
}

func (c *IndicatorCounts) add(ind models.StatusIndicator) {
	switch ind {
	case models.IndicatorAmber:
		c.Amber++
	case models.IndicatorRed:
		c.Red++
	default:
		c.Green++
	}
}

type AtRiskProject struct {
	ID        uint                   `json:"id"`
	Title     string                 `json:"title"`
	Stage     *models.ProjectStage   `json:"stage"`
	Owner     sla.Team               `json:"owner"`
	Indicator models.StatusIndicator `json:"indicator"`
}

type SLABoard struct {
	Overall IndicatorCounts              `json:"overall"`
	ByTeam  map[sla.Team]IndicatorCounts `json:"byTeam"`
	AtRisk  []AtRiskProject              `json:"atRisk"`
}

// BuildSLABoard recomputes indicators for in-flight projects rather than
// trusting the stored cache, which may lag until the next sweep.
func BuildSLABoard(projects []models.Project, engine *sla.Engine) *SLABoard {
	board := &SLABoard{
		ByTeam: map[sla.Team]IndicatorCounts{},
		AtRisk: []AtRiskProject{},
	}
	for i := range projects {
		p := &projects[i]
		if p.Status.IsTerminal() {
			continue
		}
		ind := engine.Evaluate(p)
		owner := sla.Owner(p.Stage)

		board.Overall.add(ind)
		team := board.ByTeam[owner]
		team.add(ind)
		board.ByTeam[owner] = team

		if ind != models.IndicatorGreen {
			board.AtRisk = append(board.AtRisk, AtRiskProject{
				ID:        p.ID,
				Title:     p.Title,
				Stage:     p.Stage,
				Owner:     owner,
				Indicator: ind,
			})
		}
	}
	return board
}
