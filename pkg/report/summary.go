package report

import (
	"time"

	"github.com/dd0wney/cluso-gridplan/pkg/pipeline"
)

// Summary is the machine-readable digest of a run.
type Summary struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Elements    int       `json:"elements"`
	Paths       int       `json:"paths"`
	ActivePaths int       `json:"active_paths"`
	Links       int       `json:"links"`
	Connections int       `json:"connections"`
	Served      int       `json:"served"`
	Unserved    []string  `json:"unserved"`
	Objective   float64   `json:"objective"`
	Status      string    `json:"status"`
	SolverNodes int       `json:"solver_nodes"`
	Findings    []Finding `json:"findings,omitempty"`
	Issues      []string  `json:"issues,omitempty"`
}

// Finding is one post-solve constraint violation.
type Finding struct {
	Constraint string `json:"constraint"`
	Severity   string `json:"severity"`
	Element    string `json:"element"`
	Message    string `json:"message"`
}

// Summarize digests a completed run.
func Summarize(res *pipeline.Result) Summary {
	s := Summary{
		RunID:       res.RunID,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		Paths:       len(res.Paths),
		Connections: len(res.Connections),
		Unserved:    []string{},
	}
	if res.Store != nil {
		s.Elements = res.Store.Len()
	}
	if res.Activation != nil {
		s.ActivePaths = len(res.Activation.Active())
	}
	if res.Assignment != nil {
		s.Links = res.Assignment.Links()
	}
	if res.Solution != nil {
		s.Objective = res.Solution.Objective
		s.Status = res.Solution.Status.String()
		s.SolverNodes = res.Solution.Nodes
	}
	if d := res.Diagnosis; d != nil {
		s.Served = len(d.Served)
		s.Unserved = append(s.Unserved, d.Unserved...)
		s.Issues = d.Issues
	}
	if res.Validation != nil {
		for _, v := range res.Validation.Violations {
			s.Findings = append(s.Findings, Finding{
				Constraint: v.Constraint,
				Severity:   v.Severity.String(),
				Element:    v.Element,
				Message:    v.Message,
			})
		}
	}
	return s
}
