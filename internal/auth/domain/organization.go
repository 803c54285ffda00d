package domain

import (
	"slices"
	"time"
)

// Plan identifiers a tenant can sign up with. Billing details for each plan
// live in the billing service; the auth service only records the selection.
const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanEnterprise = "enterprise"
)

// DefaultPlan is used when signup does not select a plan explicitly.
const DefaultPlan = PlanFree

var plans = []string{PlanFree, PlanStarter, PlanGrowth, PlanEnterprise}

// ValidPlan reports whether p is a known plan identifier.
func ValidPlan(p string) bool {
	return slices.Contains(plans, p)
}

// Organization is a tenant on the platform.
type Organization struct {
	ID        string
	Name      string
	Slug      string // URL-safe identifier, unique across tenants
	Plan      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
