package access

import (
	"github.com/edubridge/consultancy-admin/internal/models"
)

// Route is a declared UI route and the (menu, feature) it is gated under.
type Route struct {
	Path    string
	Menu    *models.Menu
	Feature models.Feature
}

func menuRef(m models.Menu) *models.Menu {
	return &m
}

// Routes is the full list of UI routes the admin application serves. Every entry must be
// inferred to its declared (menu, feature) by InferMenuFeature; routes_test.go enforces it.
var Routes = []Route{
	{Path: "/", Menu: menuRef(models.MenuDashboard), Feature: models.FeatureView},
	{Path: "/dashboard", Menu: menuRef(models.MenuDashboard), Feature: models.FeatureView},

	{Path: "/leads", Menu: menuRef(models.MenuLeads), Feature: models.FeatureView},
	{Path: "/leads/add", Menu: menuRef(models.MenuLeads), Feature: models.FeatureCreate},
	{Path: "/leads/requests", Menu: menuRef(models.MenuLeads), Feature: models.FeatureManage},

	{Path: "/students", Menu: menuRef(models.MenuStudents), Feature: models.FeatureView},
	{Path: "/students/add", Menu: menuRef(models.MenuStudents), Feature: models.FeatureCreate},
	{Path: "/students/:id", Menu: menuRef(models.MenuStudents), Feature: models.FeatureView},
	{Path: "/students/:id/edit", Menu: menuRef(models.MenuStudents), Feature: models.FeatureEdit},

	{Path: "/agents", Menu: menuRef(models.MenuAgents), Feature: models.FeatureView},
	{Path: "/agents/add", Menu: menuRef(models.MenuAgents), Feature: models.FeatureCreate},
	{Path: "/agents/:id", Menu: menuRef(models.MenuAgents), Feature: models.FeatureView},
	{Path: "/agents/:id/edit", Menu: menuRef(models.MenuAgents), Feature: models.FeatureEdit},
	{Path: "/agents/commissions", Menu: menuRef(models.MenuAgents), Feature: models.FeatureView},
	{Path: "/agents/payout", Menu: menuRef(models.MenuAgents), Feature: models.FeatureCreate},

	{Path: "/invoices", Menu: menuRef(models.MenuInvoice), Feature: models.FeatureView},
	{Path: "/invoices/create", Menu: menuRef(models.MenuInvoice), Feature: models.FeatureCreate},
	{Path: "/fees/collect", Menu: menuRef(models.MenuInvoice), Feature: models.FeatureCreate},

	{Path: "/office-expenses", Menu: menuRef(models.MenuOfficeExpenses), Feature: models.FeatureView},
	{Path: "/office-expenses/add", Menu: menuRef(models.MenuOfficeExpenses), Feature: models.FeatureCreate},

	{Path: "/hostels", Menu: menuRef(models.MenuHostelMess), Feature: models.FeatureView},
	{Path: "/hostels/add", Menu: menuRef(models.MenuHostelMess), Feature: models.FeatureCreate},
	{Path: "/hostels/:id", Menu: menuRef(models.MenuHostelMess), Feature: models.FeatureView},
	{Path: "/hostels/:id/edit", Menu: menuRef(models.MenuHostelMess), Feature: models.FeatureEdit},
	{Path: "/mess", Menu: menuRef(models.MenuHostelMess), Feature: models.FeatureView},
	{Path: "/mess/expenses/add", Menu: menuRef(models.MenuHostelMess), Feature: models.FeatureCreate},

	{Path: "/settings", Menu: menuRef(models.MenuSettings), Feature: models.FeatureView},
	{Path: "/settings/roles/management", Menu: menuRef(models.MenuSettings), Feature: models.FeatureManage},

	{Path: "/salary", Menu: menuRef(models.MenuSalary), Feature: models.FeatureView},
	{Path: "/salary/payroll", Menu: menuRef(models.MenuSalary), Feature: models.FeatureManage},

	{Path: "/personal-expenses", Menu: menuRef(models.MenuPersonalExpenses), Feature: models.FeatureView},
	{Path: "/personal-expenses/add", Menu: menuRef(models.MenuPersonalExpenses), Feature: models.FeatureCreate},

	{Path: "/reports", Menu: menuRef(models.MenuReports), Feature: models.FeatureView},

	{Path: "/universities", Menu: menuRef(models.MenuUniversities), Feature: models.FeatureView},
	{Path: "/universities/master", Menu: menuRef(models.MenuUniversities), Feature: models.FeatureManage},

	{Path: "/profile", Menu: menuRef(models.MenuProfile), Feature: models.FeatureView},
}

// LookupRoute returns the declared route with exactly this path.
func LookupRoute(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
