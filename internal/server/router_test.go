package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"rayenna-crm/internal/config"
	"rayenna-crm/internal/database"
	"rayenna-crm/internal/models"
	"rayenna-crm/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	router *gin.Engine
	db     *gorm.DB
	users  map[string]models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	f := &fixture{
		router: NewRouter(&config.Config{SessionSecret: "test-secret-0123456789", BusinessTimezone: "Asia/Kolkata"}),
		db:     db,
		users:  map[string]models.User{},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	for _, u := range []struct {
		name string
		role models.UserRole
	}{
		{"asha", models.RoleSales},
		{"bala", models.RoleSales},
		{"mgmt", models.RoleManagement},
		{"ops", models.RoleOperations},
	} {
		user := models.User{Username: u.name, PasswordHash: string(hash), Role: u.role}
		require.NoError(t, db.Create(&user).Error)
		f.users[u.name] = user
	}

	require.NoError(t, db.Create(&models.Customer{Name: "Sunrise Farms", ContactEmail: "ravi@sunrise.in"}).Error)
	return f
}

func (f *fixture) seedProjects(t *testing.T) {
	t.Helper()
	asha, bala := f.users["asha"].ID, f.users["bala"].ID
	projects := []*models.Project{
		testutil.NewTestProject("asha current", testutil.WithSalesperson(asha), testutil.WithStatus(models.StatusConfirmed),
			testutil.WithFiscalYear("2024-25"), testutil.WithOrderValue(500000), testutil.WithConfirmationDate(2024, time.May, 10)),
		testutil.NewTestProject("asha last year", testutil.WithSalesperson(asha), testutil.WithStatus(models.StatusCompleted),
			testutil.WithFiscalYear("2023-24"), testutil.WithOrderValue(200000), testutil.WithConfirmationDate(2023, time.June, 2)),
		testutil.NewTestProject("bala current", testutil.WithSalesperson(bala), testutil.WithStatus(models.StatusConfirmed),
			testutil.WithFiscalYear("2024-25"), testutil.WithOrderValue(300000), testutil.WithConfirmationDate(2024, time.November, 5)),
	}
	for _, p := range projects {
		require.NoError(t, f.db.Create(p).Error)
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	w := f.do(t, http.MethodPost, "/login", map[string]string{"username": username, "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func fyRows(t *testing.T, body map[string]any) map[string]float64 {
	t.Helper()
	rows, ok := body["projectValueProfitByFY"].([]any)
	require.True(t, ok)
	out := map[string]float64{}
	for _, r := range rows {
		row := r.(map[string]any)
		out[row["fy"].(string)] = row["totalProjectValue"].(float64)
	}
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDashboard_RequiresLogin(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/dashboard/sales", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/login", map[string]string{"username": "asha", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSalesDashboard_ScopedToSalesperson(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(t)
	cookies := f.login(t, "asha")

	w := f.do(t, http.MethodGet, "/dashboard/sales?fy=2024-25", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)

	totals := body["totals"].(map[string]any)
	assert.Equal(t, float64(500000), totals["totalRevenue"])
	assert.Equal(t, float64(1), totals["projectCount"])

	// the previous FY row is always present for a single-FY selection
	assert.Equal(t, map[string]float64{"2023-24": 200000, "2024-25": 500000}, fyRows(t, body))
	assert.NotContains(t, body, "previousYearSamePeriod")
	assert.Contains(t, body, "statusBreakdown")
	assert.NotContains(t, body, "slaBoard")
}

func TestManagementDashboard_QuarterComparison(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(t)
	cookies := f.login(t, "mgmt")

	w := f.do(t, http.MethodGet, "/dashboard/management?fy=2024-25&quarter=Q1", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)

	totals := body["totals"].(map[string]any)
	assert.Equal(t, float64(500000), totals["totalRevenue"])

	same := body["previousYearSamePeriod"].(map[string]any)
	assert.Equal(t, float64(200000), same["totalRevenue"])

	assert.Equal(t, map[string]float64{"2023-24": 200000, "2024-25": 500000}, fyRows(t, body))
	assert.Contains(t, body, "slaBoard")
	assert.Contains(t, body, "revenueByMonth")
}

func TestDashboard_RoleGuard(t *testing.T) {
	f := newFixture(t)
	cookies := f.login(t, "asha")

	w := f.do(t, http.MethodGet, "/dashboard/operations", nil, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjects_ListMatchesDashboardBucket(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(t)
	cookies := f.login(t, "mgmt")

	w := f.do(t, http.MethodGet, "/projects?fy=2024-25&bucket=revenue&quarter=Q3", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])

	w = f.do(t, http.MethodGet, "/projects?bucket=bogus", nil, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t)
	sales := f.login(t, "asha")

	w := f.do(t, http.MethodPost, "/projects", map[string]any{
		"customerId":       1,
		"title":            "Rooftop 10kW",
		"orderValue":       650000,
		"confirmationDate": "2024-08-14T00:00:00Z",
	}, sales)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "2024-25", created["fiscalYear"])
	assert.Equal(t, string(models.StatusLead), created["status"])
	assert.Equal(t, string(models.StageSurvey), created["stage"])

	id := uint(created["ID"].(float64))
	statusPath := "/projects/" + itoa(id) + "/status"

	// skipping a step is refused
	w = f.do(t, http.MethodPost, statusPath, map[string]string{"status": "CONFIRMED"}, sales)
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, next := range []string{"SITE_SURVEY", "PROPOSAL", "CONFIRMED"} {
		w = f.do(t, http.MethodPost, statusPath, map[string]string{"status": next}, sales)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// installation belongs to operations
	w = f.do(t, http.MethodPost, statusPath, map[string]string{"status": "UNDER_INSTALLATION"}, sales)
	assert.Equal(t, http.StatusForbidden, w.Code)

	ops := f.login(t, "ops")
	w = f.do(t, http.MethodPost, statusPath, map[string]string{"status": "UNDER_INSTALLATION"}, ops)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/projects/"+itoa(id)+"/stage", map[string]string{"stage": "INSTALLATION"}, ops)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	staged := decode(t, w)
	assert.Equal(t, string(models.StageInstallation), staged["stage"])
	assert.Equal(t, float64(30), staged["slaBudgetDays"])
	assert.Equal(t, string(models.IndicatorGreen), staged["statusIndicator"])

	w = f.do(t, http.MethodGet, "/projects/"+itoa(id)+"/history", nil, sales)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	history := decode(t, w)["history"].([]any)
	assert.Len(t, history, 6)

	// another salesperson cannot see the deal
	other := f.login(t, "bala")
	w = f.do(t, http.MethodGet, "/projects/"+itoa(id)+"/history", nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectLifecycle_LeadGetsFYWhenConfirmed(t *testing.T) {
	f := newFixture(t)
	sales := f.login(t, "asha")

	w := f.do(t, http.MethodPost, "/projects", map[string]any{
		"customerId": 1,
		"title":      "Farmhouse 5kW",
		"orderValue": 400000,
	}, sales)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "", created["fiscalYear"], "an unconfirmed lead has no FY")
	assert.Nil(t, created["confirmationDate"])

	id := uint(created["ID"].(float64))
	statusPath := "/projects/" + itoa(id) + "/status"

	w = f.do(t, http.MethodPost, statusPath, map[string]string{"status": "SITE_SURVEY", "confirmationDate": "2025-04-01T00:30:00+05:30"}, sales)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, next := range []string{"SITE_SURVEY", "PROPOSAL"} {
		w = f.do(t, http.MethodPost, statusPath, map[string]string{"status": next}, sales)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// half past midnight on 1 April in India is 31 March in UTC
	w = f.do(t, http.MethodPost, statusPath, map[string]string{"status": "CONFIRMED", "confirmationDate": "2025-04-01T00:30:00+05:30"}, sales)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decode(t, w)
	assert.Equal(t, "2025-26", confirmed["fiscalYear"])
	assert.Equal(t, "2025-04-01T00:00:00Z", confirmed["confirmationDate"])

	var stored models.Project
	require.NoError(t, f.db.First(&stored, id).Error)
	assert.Equal(t, "2025-26", stored.FiscalYear)

	mgmt := f.login(t, "mgmt")

	w = f.do(t, http.MethodGet, "/dashboard/management?fy=2025-26&month=04", nil, mgmt)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(400000), body["totals"].(map[string]any)["totalRevenue"])
	months := body["revenueByMonth"].([]any)
	require.Len(t, months, 1)
	assert.Equal(t, "2025-04", months[0].(map[string]any)["month"])

	w = f.do(t, http.MethodGet, "/dashboard/management?fy=2025-26&quarter=Q4", nil, mgmt)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), decode(t, w)["totals"].(map[string]any)["totalRevenue"])

	w = f.do(t, http.MethodGet, "/dashboard/management?fy=2024-25", nil, mgmt)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), decode(t, w)["totals"].(map[string]any)["totalRevenue"])
}

func TestCreateProject_RejectsMismatchedFYLabel(t *testing.T) {
	f := newFixture(t)
	sales := f.login(t, "asha")

	w := f.do(t, http.MethodPost, "/projects", map[string]any{
		"customerId": 1,
		"title":      "Rooftop 3kW",
		"fiscalYear": "2024-99",
	}, sales)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomers_MaskedForNonSalesRoles(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/customers", nil, f.login(t, "ops"))
	require.Equal(t, http.StatusOK, w.Code)
	customers := decode(t, w)["customers"].([]any)
	require.Len(t, customers, 1)
	assert.Equal(t, "ra***@sunrise.in", customers[0].(map[string]any)["contactEmail"])

	w = f.do(t, http.MethodGet, "/customers", nil, f.login(t, "asha"))
	require.Equal(t, http.StatusOK, w.Code)
	customers = decode(t, w)["customers"].([]any)
	assert.Equal(t, "ravi@sunrise.in", customers[0].(map[string]any)["contactEmail"])

	w = f.do(t, http.MethodPost, "/customers", map[string]string{"name": "sunrise farms"}, f.login(t, "asha"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_RejectsPrivilegedRoles(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/register", map[string]string{"username": "newbie", "password": "secret123", "role": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/register", map[string]string{"username": "newbie", "password": "secret123", "role": "finance"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = f.do(t, http.MethodPost, "/register", map[string]string{"username": "newbie", "password": "secret123", "role": "finance"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
