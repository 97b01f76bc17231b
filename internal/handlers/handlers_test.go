package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carbonledger/data"
	"github.com/localnerve/carbonledger/internal/handlers"
	"github.com/localnerve/carbonledger/internal/middleware"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/localnerve/carbonledger/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testAPI struct {
	app *fiber.App
	db  *gorm.DB

	liter, cubicMeter, kilogram models.UnitOfMeasure
	co2     models.GreenhouseGas
	diesel  models.EmissionFactor
	company models.Company
	truck, unconfigured         models.EmissionsSource
}

// fakeSessions accepts the cookie "valid" as user-1.
func fakeSessions(*fiber.Ctx) middleware.SessionValidator {
	return func(cookie string, roles []string) (*services.Session, error) {
		if cookie != "valid" {
			return nil, errors.New("unknown session")
		}
		return &services.Session{UserID: "user-1"}, nil
	}
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	_, err = services.SeedReferenceData(context.Background(), db, data.ReferenceYAML)
	require.NoError(t, err)

	api := &testAPI{db: db}
	require.NoError(t, db.Where("slug = ?", "l").First(&api.liter).Error)
	require.NoError(t, db.Where("slug = ?", "m3").First(&api.cubicMeter).Error)
	require.NoError(t, db.Where("slug = ?", "kg").First(&api.kilogram).Error)
	require.NoError(t, db.Where("acronym = ?", "CO2").First(&api.co2).Error)
	require.NoError(t, db.Where("name = ?", "Diesel").First(&api.diesel).Error)

	api.company = models.Company{Name: "Acme"}
	require.NoError(t, db.Create(&api.company).Error)
	depot := models.Location{Name: "Depot", CompanyID: api.company.ID}
	require.NoError(t, db.Create(&depot).Error)

	api.truck = models.EmissionsSource{Name: "Truck", LocationID: depot.ID, EmissionFactorID: &api.diesel.ID}
	api.unconfigured = models.EmissionsSource{Name: "Boiler", LocationID: depot.ID}
	require.NoError(t, db.Create(&api.truck).Error)
	require.NoError(t, db.Create(&api.unconfigured).Error)

	api.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.Register(api.app, db, fakeSessions)
	api.app.Use(handlers.NotFound)

	return api
}

func (api *testAPI) do(t *testing.T, method, target string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "cookie_session", Value: cookie})
	}

	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (api *testAPI) create(t *testing.T, consumption float64, date string) models.Activity {
	t.Helper()
	resp := api.do(t, "POST", "/api/activities", services.ActivityInput{
		EmissionSourceID: api.truck.ID,
		Name:             "Fuel",
		Consumption:      consumption,
		Date:             date,
	}, "valid")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[models.Activity](t, resp)
}

func TestCreateSingleActivity(t *testing.T) {
	api := setupAPI(t)

	activity := api.create(t, 100, "2024-03-10")
	assert.Equal(t, "user-1", activity.UserID)
	assert.Equal(t, 2024, activity.Year)
	assert.InDelta(t, 268.78, activity.TotalCO2e, 1e-9)
	assert.Len(t, activity.CO2eByComponent, 2)
}

func TestCreateActivityBatch(t *testing.T) {
	api := setupAPI(t)

	batch := []services.ActivityInput{
		{EmissionSourceID: api.truck.ID, Name: "January", Consumption: 10, Date: "2024-01-15"},
		{EmissionSourceID: api.truck.ID, Name: "February", Consumption: 20, Date: "2024-02-15"},
	}
	resp := api.do(t, "POST", "/api/activities", batch, "valid")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Len(t, decode[[]models.Activity](t, resp), 2)

	resp = api.do(t, "POST", "/api/activities", batch[:1], "valid")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Len(t, decode[[]models.Activity](t, resp), 1)

	batch[1].Date = "February"
	resp = api.do(t, "POST", "/api/activities", batch, "valid")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errResp := decode[utils.ErrorResponseStruct](t, resp)
	assert.Equal(t, "date", errResp.Field)

	var count int64
	require.NoError(t, api.db.Model(&models.Activity{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestCreateActivityRequiresSession(t *testing.T) {
	api := setupAPI(t)
	input := services.ActivityInput{EmissionSourceID: api.truck.ID, Name: "Fuel", Consumption: 1, Date: "2024-03-10"}

	resp := api.do(t, "POST", "/api/activities", input, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = api.do(t, "POST", "/api/activities", input, "expired")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	errResp := decode[utils.ErrorResponseStruct](t, resp)
	assert.Equal(t, "authorization.user", errResp.Type)
}

func TestCreateActivityErrorStatuses(t *testing.T) {
	api := setupAPI(t)

	tests := []struct {
		name   string
		input  services.ActivityInput
		status int
	}{
		{
			name:   "unknown source",
			input:  services.ActivityInput{EmissionSourceID: 9999, Name: "Fuel", Consumption: 1, Date: "2024-03-10"},
			status: fiber.StatusNotFound,
		},
		{
			name:   "source without factor",
			input:  services.ActivityInput{EmissionSourceID: api.unconfigured.ID, Name: "Gas", Consumption: 1, Date: "2024-03-10"},
			status: fiber.StatusUnprocessableEntity,
		},
		{
			name:   "negative consumption",
			input:  services.ActivityInput{EmissionSourceID: api.truck.ID, Name: "Fuel", Consumption: -1, Date: "2024-03-10"},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "incompatible unit",
			input:  services.ActivityInput{EmissionSourceID: api.truck.ID, Name: "Fuel", Consumption: 1, Date: "2024-03-10", UnitID: &api.kilogram.ID},
			status: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(t, "POST", "/api/activities", tt.input, "valid")
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestActivityLifecycle(t *testing.T) {
	api := setupAPI(t)
	activity := api.create(t, 100, "2024-03-10")
	path := fmt.Sprintf("/api/activities/%d", activity.ID)

	resp := api.do(t, "GET", path, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	loaded := decode[models.Activity](t, resp)
	assert.Len(t, loaded.GasesByFactor, 3)

	resp = api.do(t, "PUT", path, services.ActivityInput{
		EmissionSourceID: api.truck.ID,
		Name:             "Fuel",
		Consumption:      200,
		Date:             "2024-03-10",
	}, "valid")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.InDelta(t, 2*268.78, decode[models.Activity](t, resp).TotalCO2e, 1e-9)

	resp = api.do(t, "POST", path+"/quantify", nil, "valid")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.InDelta(t, 2*268.78, decode[models.Activity](t, resp).TotalCO2e, 1e-9)

	resp = api.do(t, "GET", fmt.Sprintf("%s/gases/%d", path, api.co2.ID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	total := decode[handlers.GasTotalResponse](t, resp)
	assert.Equal(t, "537.0000000", total.Value)

	resp = api.do(t, "DELETE", path, nil, "valid")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = api.do(t, "GET", path, nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetActivityBadID(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, "GET", "/api/activities/abc", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "id", decode[utils.ErrorResponseStruct](t, resp).Field)
}

func TestGetDashboard(t *testing.T) {
	api := setupAPI(t)
	api.create(t, 100, "2024-03-10")
	api.create(t, 50, "2024-02-10")

	resp := api.do(t, "GET", fmt.Sprintf("/api/dashboard?company_id=%d&year=2024&month=3", api.company.ID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	summary := decode[services.DashboardSummary](t, resp)
	assert.Equal(t, int64(1), summary.ActivityCount)
	assert.InDelta(t, 268.78, summary.TotalEmissions, 1e-9)
	require.NotEmpty(t, summary.GasEmissions)

	resp = api.do(t, "GET", "/api/dashboard", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, "GET", "/api/dashboard?company_id=424242", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetFactor(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, "GET", fmt.Sprintf("/api/factors/%d", api.diesel.ID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	factor := decode[models.EmissionFactor](t, resp)
	assert.Equal(t, "Diesel", factor.Name)
	assert.Len(t, factor.GasEmissions, 3)
	require.Len(t, factor.Components, 1)
	require.NotNil(t, factor.Components[0].ComponentFactor)

	resp = api.do(t, "GET", "/api/factors/9999", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestConvertUnit(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, "GET", fmt.Sprintf("/api/units/convert?value=1500&from=%d&to=%d", api.liter.ID, api.cubicMeter.ID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	conv := decode[handlers.ConversionResponse](t, resp)
	assert.InDelta(t, 1.5, conv.Converted, 1e-12)
	assert.Equal(t, "m3", conv.To)

	resp = api.do(t, "GET", fmt.Sprintf("/api/units/convert?value=1&from=%d&to=%d", api.liter.ID, api.kilogram.ID), nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, "GET", fmt.Sprintf("/api/units/convert?value=x&from=%d&to=%d", api.liter.ID, api.kilogram.ID), nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "value", decode[utils.ErrorResponseStruct](t, resp).Field)
}

func TestVersionAndNotFound(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, "GET", fmt.Sprintf("/api/factors/%d", api.diesel.ID), nil, "")
	assert.Equal(t, middleware.CurrentAPIVersion, resp.Header.Get("X-Api-Version"))

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/factors/%d", api.diesel.ID), nil)
	req.Header.Set("X-Api-Version", "2.0")
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, "GET", "/api/nothing-here", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
