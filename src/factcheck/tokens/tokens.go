// Package tokens implements the check-token economy: every fact check
// spends one token unless the account carries an active subscription.
package tokens

import "strings"

// Starting is the token balance granted to a new session.
const Starting = 20

type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// ParsePlan maps user input to a known plan.
func ParsePlan(s string) (Plan, bool) {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case PlanBasic:
		return PlanBasic, true
	case PlanPro:
		return PlanPro, true
	case PlanEnterprise:
		return PlanEnterprise, true
	case PlanFree, "":
		return PlanFree, true
	}
	return PlanFree, false
}

// Subscribed reports whether the plan waives token spending.
func (p Plan) Subscribed() bool {
	return p == PlanBasic || p == PlanPro || p == PlanEnterprise
}

// APIAccess reports whether the plan includes API key access.
func (p Plan) APIAccess() bool {
	return p == PlanEnterprise
}

// Pack is a purchasable token bundle.
type Pack struct {
	Tokens int    `json:"tokens"`
	Price  string `json:"price"`
}

func Packs() []Pack {
	return []Pack{
		{Tokens: 10, Price: "$4.99"},
		{Tokens: 25, Price: "$9.99"},
		{Tokens: 50, Price: "$17.99"},
	}
}

// ValidPack reports whether n is a purchasable pack size.
func ValidPack(n int) bool {
	for _, p := range Packs() {
		if p.Tokens == n {
			return true
		}
	}
	return false
}

// PlanInfo describes a subscription tier for display.
type PlanInfo struct {
	Plan  Plan     `json:"plan"`
	Price string   `json:"price"`
	Perks []string `json:"perks"`
}

func Plans() []PlanInfo {
	return []PlanInfo{
		{
			Plan:  PlanBasic,
			Price: "$9.99/month",
			Perks: []string{"100 fact-checks per month", "Standard processing", "Email support"},
		},
		{
			Plan:  PlanPro,
			Price: "$19.99/month",
			Perks: []string{"Unlimited fact-checks", "Priority processing", "Email & chat support"},
		},
		{
			Plan:  PlanEnterprise,
			Price: "$49.99/month",
			Perks: []string{"Unlimited fact-checks", "Highest priority processing", "Dedicated support", "API access"},
		},
	}
}

// CanCheck reports whether a check may start on this balance and plan.
func CanCheck(balance int, plan Plan) bool {
	return plan.Subscribed() || balance > 0
}

// Spend debits one token for a check. Subscribed plans spend nothing.
// The returned balance is unchanged when ok is false.
func Spend(balance int, plan Plan) (int, bool) {
	if plan.Subscribed() {
		return balance, true
	}
	if balance > 0 {
		return balance - 1, true
	}
	return balance, false
}
