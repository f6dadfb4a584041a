package merchant

import "strings"

// DefaultReturnPolicyDays applies when the merchant carries no explicit
// policy entry, including unidentified merchants.
const DefaultReturnPolicyDays = 30

// policyEntry holds a lowercase merchant fragment and its return window in
// days. Matching is substring-based so "Walmart Supercenter #1234" still
// resolves.
type policyEntry struct {
	fragment string
	days     int
}

// Ordered table; first matching fragment wins.
var returnPolicies = []policyEntry{
	{"walmart", 90},
	{"target", 90},
	{"costco", 90},
	{"amazon", 30},
	{"best buy", 15},
	{"home depot", 90},
	{"lowes", 90},
	{"tj maxx", 30},
	{"marshalls", 30},
	{"gap", 45},
	{"old navy", 45},
	{"nordstrom", 90},
	{"macy's", 30},
	{"whole foods", 90},
	{"trader joe's", 30},
	{"cvs", 60},
	{"walgreens", 30},
	{"rite aid", 30},
}

// ReturnPolicyDays returns the return window for a merchant name. The lookup
// is case-insensitive and substring-based; unknown merchants get the default.
func ReturnPolicyDays(merchantName string) int {
	name := strings.ToLower(merchantName)
	for _, e := range returnPolicies {
		if strings.Contains(name, e.fragment) {
			return e.days
		}
	}
	return DefaultReturnPolicyDays
}
