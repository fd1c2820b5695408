package plan

import (
	"fmt"

	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/logging"
)

// Diagnosis reports coverage of a solved plan. It never affects control flow.
type Diagnosis struct {
	// Unserved lists customers without an active path, in input order.
	Unserved []string
	// Served maps each served customer to its active path id.
	Served map[string]string
	// Issues records inconsistencies such as a customer with two active paths.
	Issues []string
}

// OK reports whether every customer is served exactly once.
func (d *Diagnosis) OK() bool {
	return len(d.Unserved) == 0 && len(d.Issues) == 0
}

// Diagnose marks the customer of every active path as served.
func Diagnose(h *incidence.Blocks, customers []string, activation *ActivationTable) *Diagnosis {
	d := &Diagnosis{Served: make(map[string]string)}

	for i, id := range h.Rows {
		if !activation.IsActive(id) {
			continue
		}
		c, ok := h.CustomerOf(i)
		if !ok {
			d.Issues = append(d.Issues, fmt.Sprintf("active path %s has no customer", id))
			continue
		}
		if prev, dup := d.Served[c]; dup {
			d.Issues = append(d.Issues, fmt.Sprintf("customer %s has active paths %s and %s", c, prev, id))
			continue
		}
		d.Served[c] = id
	}

	for _, id := range activation.Active() {
		if indexOf(h.Rows, id) < 0 {
			d.Issues = append(d.Issues, fmt.Sprintf("active path %s is not in the incidence matrix", id))
		}
	}

	for _, c := range customers {
		if _, ok := d.Served[c]; !ok {
			d.Unserved = append(d.Unserved, c)
		}
	}
	return d
}

// Report logs one warning per unserved customer and per issue, then a summary.
func (d *Diagnosis) Report(logger logging.Logger) {
	for _, c := range d.Unserved {
		logger.Warn("customer unserved", logging.Customer(c))
	}
	for _, issue := range d.Issues {
		logger.Warn("plan inconsistency", logging.String("issue", issue))
	}
	fields := []logging.Field{
		logging.Int("served", len(d.Served)),
		logging.Int("unserved", len(d.Unserved)),
	}
	if len(d.Unserved) > 0 {
		fields = append(fields, logging.Strings("unserved_customers", d.Unserved))
		logger.Warn("plan leaves customers unserved", fields...)
		return
	}
	logger.Info("all customers served", fields...)
}
