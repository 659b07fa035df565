package models

// ClientIdentity is the canonical client block produced by the normalizer.
// Email is the durable natural key once resolved; a placeholder is synthesized
// from the name when no email can be found anywhere in the payload.
type ClientIdentity struct {
	ClientID string `json:"client_id,omitempty"`
	Name     string `json:"client_name"`
	Email    string `json:"client_email"`
	Phone    string `json:"client_phone,omitempty"`
}

// CoachIdentity is optional; a roadmap may carry no coach at all.
type CoachIdentity struct {
	CoachID string `json:"coach_id,omitempty"`
	Name    string `json:"coach_name,omitempty"`
	Email   string `json:"coach_email,omitempty"`
}

// RoadmapMeta carries request-level options that are not roadmap content.
type RoadmapMeta struct {
	StartDate   string `json:"start_date,omitempty"` // YYYY-MM-DD or free text
	CycleNumber *int   `json:"cycle_number,omitempty"`
}

// RoadmapHeader holds the content header: contact info plus a raw financial
// snapshot (locale-formatted strings, parsed later by the value parsers).
type RoadmapHeader struct {
	Email              string `json:"email"`
	CompanyName        string `json:"company_name"`
	Address            string `json:"address"`
	Revenue            string `json:"revenue"`
	CashInBank         string `json:"cash_in_bank"`
	ClientsCount       string `json:"clients_count"`
	CollaboratorsCount string `json:"collaborators_count"`
	ConversionRate     string `json:"conversion_rate"`
}

// PillarSection is one of the three fixed strategy slots.
type PillarSection struct {
	CurrentSituation string `json:"current_situation"`
	Actions          string `json:"actions"` // newline-delimited action list
	ExpertTip        string `json:"expert_tip"`
}

type RoadmapVision struct {
	Operations     PillarSection `json:"operations"`
	Acquisition    PillarSection `json:"acquisition"`
	VisionPilotage PillarSection `json:"vision_pilotage"`
}

type StrategicGoals struct {
	FourMonth   string `json:"four_month"`
	TwelveMonth string `json:"twelve_month"`
}

// RoadmapMonth is one month of the plan: four weeks of newline-delimited
// bullet actions. The cardinality is fixed by the domain (4 months x 4 weeks)
// and validated at decode time.
type RoadmapMonth struct {
	Weeks [4]string `json:"weeks"`
}

const (
	MonthsPerPlan = 4
	WeeksPerMonth = 4
	TotalWeeks    = MonthsPerPlan * WeeksPerMonth
)

type RoadmapContent struct {
	Header         RoadmapHeader   `json:"header"`
	Vision         RoadmapVision   `json:"vision"`
	StrategicGoals StrategicGoals  `json:"strategic_goals"`
	MonthlyPlan    [4]RoadmapMonth `json:"monthly_plan"`
}

// WeekActions flattens the monthly plan into the 16 week action blocks,
// 0-indexed (week number = index + 1).
func (c *RoadmapContent) WeekActions() [TotalWeeks]string {
	var out [TotalWeeks]string
	for m := 0; m < MonthsPerPlan; m++ {
		for w := 0; w < WeeksPerMonth; w++ {
			out[m*WeeksPerMonth+w] = c.MonthlyPlan[m].Weeks[w]
		}
	}
	return out
}
