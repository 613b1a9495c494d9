package access

import (
	"strings"

	"github.com/edubridge/consultancy-admin/internal/models"
)

// menuPrefix maps a UI path prefix to its menu. Order matters: the first match wins,
// so a more specific prefix must come before a generic one that would also match.
type menuPrefix struct {
	prefix string
	menu   models.Menu
	exact  bool
}

var menuPrefixes = []menuPrefix{
	{prefix: "/", menu: models.MenuDashboard, exact: true},
	{prefix: "/dashboard", menu: models.MenuDashboard},
	{prefix: "/lead", menu: models.MenuLeads},
	{prefix: "/students", menu: models.MenuStudents},
	{prefix: "/agents", menu: models.MenuAgents},
	{prefix: "/invoices", menu: models.MenuInvoice},
	{prefix: "/fees", menu: models.MenuInvoice},
	{prefix: "/office-expenses", menu: models.MenuOfficeExpenses},
	{prefix: "/hostels", menu: models.MenuHostelMess},
	{prefix: "/mess", menu: models.MenuHostelMess},
	{prefix: "/settings", menu: models.MenuSettings},
	{prefix: "/salary", menu: models.MenuSalary},
	{prefix: "/personal-expenses", menu: models.MenuPersonalExpenses},
	{prefix: "/reports", menu: models.MenuReports},
	{prefix: "/universities", menu: models.MenuUniversities},
	{prefix: "/profile", menu: models.MenuProfile},
}

// featureRule is evaluated in order; the first rule with a matching marker wins.
type featureRule struct {
	markers []string
	feature models.Feature
}

var featureRules = []featureRule{
	{markers: []string{"/add", "/create"}, feature: models.FeatureCreate},
	{markers: []string{"/management", "/master", "/requests", "/payroll"}, feature: models.FeatureManage},
	{markers: []string{"/edit", "/update"}, feature: models.FeatureEdit},
	{markers: []string{"/collect", "/payout"}, feature: models.FeatureCreate},
}

// InferMenuFeature derives (menu, feature) from a UI path. It is purely syntactic:
// a renamed or new route must be added to menuPrefixes to stay gated.
// A nil menu means the path is not covered by fine-grained permissions.
func InferMenuFeature(path string) (*models.Menu, models.Feature) {
	p := normalizePath(path)
	return inferMenu(p), inferFeature(p)
}

func normalizePath(path string) string {
	p := strings.ToLower(path)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p
}

func inferMenu(p string) *models.Menu {
	for _, mp := range menuPrefixes {
		if mp.exact {
			if p == mp.prefix {
				menu := mp.menu
				return &menu
			}
			continue
		}
		if strings.HasPrefix(p, mp.prefix) {
			menu := mp.menu
			return &menu
		}
	}
	return nil
}

func inferFeature(p string) models.Feature {
	for _, rule := range featureRules {
		for _, marker := range rule.markers {
			if strings.Contains(p, marker) {
				return rule.feature
			}
		}
	}
	return models.FeatureView
}
