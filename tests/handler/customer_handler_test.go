package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/http/handler"
	"github.com/salesbridge/crm-api/internal/repository"
	"github.com/salesbridge/crm-api/internal/service"
	"github.com/salesbridge/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createCustomerHandler(db *gorm.DB) *handler.CustomerHandler {
	logger := zap.NewNop()
	customerRepo := repository.NewCustomerRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	contactRepo := repository.NewContactRepository(db)
	dealRepo := repository.NewDealRepository(db)
	stageRepo := repository.NewStageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	customerService := service.NewCustomerService(customerRepo, activityRepo, logger)
	contactService := service.NewContactService(contactRepo, customerRepo, logger)
	dealService := service.NewDealService(dealRepo, customerRepo, stageRepo, activityRepo, notificationRepo, logger)

	return handler.NewCustomerHandler(customerService, contactService, dealService, logger)
}

// withURLParam injects a chi URL parameter into the request context
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCustomerHandler_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createCustomerHandler(db)
	ctx := testutil.TestContext()

	for _, name := range []string{"Alpha Corp", "Beta Inc", "Gamma Ltd"} {
		testutil.CreateTestCustomer(t, db, name)
	}

	t.Run("list all customers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil).WithContext(ctx)

		rr := httptest.NewRecorder()
		h.List(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(3), result.Total)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.PageSize)
	})

	t.Run("list with pagination", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers?page=1&pageSize=2", nil).WithContext(ctx)

		rr := httptest.NewRecorder()
		h.List(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(3), result.Total)
		assert.Equal(t, 2, result.PageSize)
		assert.Equal(t, 2, result.TotalPages)
	})

	t.Run("list with search filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers?search=Alpha", nil).WithContext(ctx)

		rr := httptest.NewRecorder()
		h.List(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(1), result.Total)
	})
}

func TestCustomerHandler_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createCustomerHandler(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Lookup Corp")

	t.Run("get existing customer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers/"+customer.ID.String(), nil).WithContext(ctx)
		req = withURLParam(req, "id", customer.ID.String())

		rr := httptest.NewRecorder()
		h.GetByID(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.CustomerDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, customer.ID, result.ID)
		assert.Equal(t, "Lookup Corp", result.Name)
	})

	t.Run("get non-existent customer", func(t *testing.T) {
		missing := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/customers/"+missing, nil).WithContext(ctx)
		req = withURLParam(req, "id", missing)

		rr := httptest.NewRecorder()
		h.GetByID(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers/not-a-uuid", nil).WithContext(ctx)
		req = withURLParam(req, "id", "not-a-uuid")

		rr := httptest.NewRecorder()
		h.GetByID(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCustomerHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createCustomerHandler(db)
	ctx := testutil.TestContext()

	t.Run("create customer", func(t *testing.T) {
		body, _ := json.Marshal(domain.CreateCustomerRequest{
			Name:  "New Corp",
			Email: "hello@newcorp.example",
		})
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body)).WithContext(ctx)

		rr := httptest.NewRecorder()
		h.Create(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Header().Get("Location"), "/api/v1/customers/")

		var result domain.CustomerDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, "New Corp", result.Name)
		assert.Equal(t, domain.CustomerStatusActive, result.Status)
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		body, _ := json.Marshal(domain.CreateCustomerRequest{
			Name:  "Clone Corp",
			Email: "hello@newcorp.example",
		})
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body)).WithContext(ctx)

		rr := httptest.NewRecorder()
		h.Create(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing required fields", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"name": "No Email"})
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body)).WithContext(ctx)

		rr := httptest.NewRecorder()
		h.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader([]byte("{not json"))).WithContext(ctx)

		rr := httptest.NewRecorder()
		h.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCustomerHandler_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createCustomerHandler(db)
	ctx := testutil.TestContext()

	t.Run("delete customer without deals", func(t *testing.T) {
		customer := testutil.CreateTestCustomer(t, db, "Disposable Corp")
		req := httptest.NewRequest(http.MethodDelete, "/customers/"+customer.ID.String(), nil).WithContext(ctx)
		req = withURLParam(req, "id", customer.ID.String())

		rr := httptest.NewRecorder()
		h.Delete(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("delete customer with open deals", func(t *testing.T) {
		customer := testutil.CreateTestCustomer(t, db, "Busy Corp")
		stage := testutil.CreateTestStage(t, db, "Lead", 0)
		testutil.CreateTestDeal(t, db, customer, stage, "Open deal")

		req := httptest.NewRequest(http.MethodDelete, "/customers/"+customer.ID.String(), nil).WithContext(ctx)
		req = withURLParam(req, "id", customer.ID.String())

		rr := httptest.NewRecorder()
		h.Delete(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestCustomerHandler_CreateContact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createCustomerHandler(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Contact Corp")

	body, _ := json.Marshal(domain.CreateContactRequest{
		FirstName: "Kari",
		LastName:  "Nordmann",
		Email:     "kari@contactcorp.example",
	})
	req := httptest.NewRequest(http.MethodPost, "/customers/"+customer.ID.String()+"/contacts", bytes.NewReader(body)).WithContext(ctx)
	req = withURLParam(req, "id", customer.ID.String())

	rr := httptest.NewRecorder()
	h.CreateContact(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var result domain.ContactDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "Kari Nordmann", result.FullName)
	assert.Equal(t, customer.ID, result.CustomerID)
}
