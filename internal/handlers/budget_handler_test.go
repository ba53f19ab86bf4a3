package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"
	"budget-tracker/internal/services/service_mocks"
	"budget-tracker/internal/spending"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestBudgetHandler(t *testing.T) {
	suite.Run(t, new(BudgetHandlerSuite))
}

type BudgetHandlerSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	budgetService *service_mocks.MockBudgetServiceInterface
	handler       *BudgetHandler
	e             *echo.Echo
	userID        uuid.UUID
}

func (s *BudgetHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.budgetService = service_mocks.NewMockBudgetServiceInterface(s.ctrl)
	now := time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC)
	s.handler = NewBudgetHandler(s.budgetService, spending.NewResolverWithClock(time.UTC, func() time.Time { return now }))
	s.e = newTestEcho()
	s.userID = uuid.New()
}

func (s *BudgetHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BudgetHandlerSuite) TestList() {
	s.Run("defaults to the current month", func() {
		food := &models.Category{ID: uuid.New(), Name: "Food", Icon: "utensils", Color: "#F97316"}
		budgets := []models.BudgetWithSpending{
			{
				Budget: models.Budget{ID: uuid.New(), CategoryID: food.ID, Month: 6, Year: 2024, Limit: decimal.NewFromInt(1000), Category: food},
				View:   spending.Evaluate(decimal.NewFromInt(1000), decimal.NewFromInt(1200)),
			},
			{
				Budget: models.Budget{ID: uuid.New(), CategoryID: uuid.New(), Month: 6, Year: 2024, Limit: decimal.NewFromInt(200)},
				View:   spending.Evaluate(decimal.NewFromInt(200), decimal.NewFromInt(20)),
			},
		}
		s.budgetService.EXPECT().ListWithSpending(gomock.Any(), s.userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, period spending.Period) ([]models.BudgetWithSpending, error) {
				s.Equal(6, period.Month)
				s.Equal(2024, period.Year)
				return budgets, nil
			})

		c, rec := newJSONContext(s.e, http.MethodGet, "/api/budgets", nil, &s.userID)

		s.NoError(s.handler.List(c))
		s.Equal(http.StatusOK, rec.Code)

		var response dto.BudgetListResponse
		decodeBody(&s.Suite, rec, &response)
		s.Equal(6, response.Month)
		s.Equal(2024, response.Year)
		s.Require().Len(response.Budgets, 2)

		over := response.Budgets[0]
		s.Equal("Food", over.Category.Name)
		s.Equal("exceeded", over.Status)
		s.Equal(100.0, over.Percentage)
		s.True(over.Remaining.Equal(decimal.NewFromInt(-200)))

		safe := response.Budgets[1]
		s.Equal(models.PlaceholderCategoryName, safe.Category.Name)
		s.Equal("safe", safe.Status)
		s.Equal(10.0, safe.Percentage)
		s.True(safe.Remaining.Equal(decimal.NewFromInt(180)))
	})

	s.Run("explicit month and year", func() {
		s.budgetService.EXPECT().ListWithSpending(gomock.Any(), s.userID, spending.Period{Month: 1, Year: 2023, Location: time.UTC}).
			Return(nil, nil)

		c, rec := newJSONContext(s.e, http.MethodGet, "/api/budgets?month=1&year=2023", nil, &s.userID)

		s.NoError(s.handler.List(c))
		s.JSONEq(`{"budgets":[],"month":1,"year":2023}`, rec.Body.String())
	})

	s.Run("month 13", func() {
		c, _ := newJSONContext(s.e, http.MethodGet, "/api/budgets?month=13&year=2024", nil, &s.userID)

		appErr := requireAppError(&s.Suite, s.handler.List(c), errors.ValidationInvalidDate)
		s.Equal(http.StatusBadRequest, appErr.Status)
	})

	s.Run("unauthenticated", func() {
		c, _ := newJSONContext(s.e, http.MethodGet, "/api/budgets", nil, nil)

		requireAppError(&s.Suite, s.handler.List(c), errors.AuthMissingToken)
	})
}

func (s *BudgetHandlerSuite) TestSet() {
	categoryID := uuid.New()

	s.Run("stored", func() {
		s.budgetService.EXPECT().Upsert(gomock.Any(), s.userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, req *dto.SetBudgetRequest) (*models.Budget, error) {
				s.Equal(categoryID.String(), req.Category)
				s.Equal("750.5", req.Limit.String())
				return &models.Budget{
					ID:         uuid.New(),
					UserID:     s.userID,
					CategoryID: categoryID,
					Month:      req.Month,
					Year:       req.Year,
					Limit:      decimal.RequireFromString("750.50"),
					Category:   &models.Category{ID: categoryID, Name: "Rent"},
				}, nil
			})

		c, rec := newJSONContext(s.e, http.MethodPost, "/api/budgets",
			`{"category":"`+categoryID.String()+`","limit":750.5,"month":7,"year":2024}`, &s.userID)

		s.NoError(s.handler.Set(c))
		s.Equal(http.StatusCreated, rec.Code)

		var response dto.BudgetEnvelope
		decodeBody(&s.Suite, rec, &response)
		s.Equal("Rent", response.Budget.Category.Name)
		s.Equal(7, response.Budget.Month)
		s.True(response.Budget.Limit.Equal(decimal.RequireFromString("750.5")))
	})

	invalid := []struct {
		name string
		body string
	}{
		{name: "zero limit", body: `{"category":"` + categoryID.String() + `","limit":0,"month":7,"year":2024}`},
		{name: "month out of range", body: `{"category":"` + categoryID.String() + `","limit":10,"month":0,"year":2024}`},
		{name: "year out of range", body: `{"category":"` + categoryID.String() + `","limit":10,"month":7,"year":1900}`},
		{name: "missing category", body: `{"limit":10,"month":7,"year":2024}`},
		{name: "malformed json", body: `{"limit":`},
	}
	for _, tc := range invalid {
		s.Run(tc.name, func() {
			c, _ := newJSONContext(s.e, http.MethodPost, "/api/budgets", tc.body, &s.userID)

			requireAppError(&s.Suite, s.handler.Set(c), errors.ValidationGeneral)
		})
	}

	s.Run("category not owned", func() {
		s.budgetService.EXPECT().Upsert(gomock.Any(), s.userID, gomock.Any()).
			Return(nil, repositories.ErrCategoryNotFound)

		c, _ := newJSONContext(s.e, http.MethodPost, "/api/budgets",
			`{"category":"`+categoryID.String()+`","limit":10,"month":7,"year":2024}`, &s.userID)

		requireAppError(&s.Suite, s.handler.Set(c), errors.CategoryNotFound)
	})
}

func (s *BudgetHandlerSuite) TestDelete() {
	budgetID := uuid.New()

	s.Run("deleted", func() {
		s.budgetService.EXPECT().Delete(gomock.Any(), s.userID, budgetID).Return(nil)

		c, rec := newJSONContext(s.e, http.MethodDelete, "/", nil, &s.userID)
		c.SetParamNames("id")
		c.SetParamValues(budgetID.String())

		s.NoError(s.handler.Delete(c))
		s.Contains(rec.Body.String(), "Budget deleted")
	})

	s.Run("not found", func() {
		s.budgetService.EXPECT().Delete(gomock.Any(), s.userID, budgetID).Return(repositories.ErrBudgetNotFound)

		c, _ := newJSONContext(s.e, http.MethodDelete, "/", nil, &s.userID)
		c.SetParamNames("id")
		c.SetParamValues(budgetID.String())

		appErr := requireAppError(&s.Suite, s.handler.Delete(c), errors.BudgetNotFound)
		s.Equal(http.StatusNotFound, appErr.Status)
	})

	s.Run("malformed id", func() {
		c, _ := newJSONContext(s.e, http.MethodDelete, "/", nil, &s.userID)
		c.SetParamNames("id")
		c.SetParamValues("budget-1")

		requireAppError(&s.Suite, s.handler.Delete(c), errors.BudgetInvalidID)
	})
}
