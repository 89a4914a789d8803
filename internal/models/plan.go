package models

// Plan describes the seat limits a workspace subscription grants.
type Plan struct {
	Name         string `json:"name"`
	MaxEmployees int    `json:"max_employees"`
}

const (
	PlanStarter = "starter"
	PlanGrowth  = "growth"
	PlanScale   = "scale"
)

// DefaultPlans returns the built-in plan catalog. Callers may override limits
// from configuration before handing the catalog to services.
func DefaultPlans() map[string]Plan {
	return map[string]Plan{
		PlanStarter: {Name: PlanStarter, MaxEmployees: 2},
		PlanGrowth:  {Name: PlanGrowth, MaxEmployees: 10},
		PlanScale:   {Name: PlanScale, MaxEmployees: 50},
	}
}
