package repositories

import (
	"context"
	"testing"

	"budget-tracker/internal/database"
	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestCategoryRepository(t *testing.T) {
	suite.Run(t, new(CategoryRepositorySuite))
}

type CategoryRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo CategoryRepositoryInterface
	ctx  context.Context
	user *models.User
}

func (s *CategoryRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewCategoryRepository(s.db.DB)
	s.ctx = context.Background()
	s.user = database.CreateTestUser(s.T(), s.db, "owner@example.com")
}

func (s *CategoryRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *CategoryRepositorySuite) TestCreate_AppliesDefaults() {
	category := &models.Category{UserID: s.user.ID, Name: "  Food  "}

	s.NoError(s.repo.Create(s.ctx, category))
	s.NotEqual(uuid.Nil, category.ID)

	found, err := s.repo.GetByIDForUser(s.ctx, category.ID, s.user.ID)
	s.NoError(err)
	s.Equal("Food", found.Name)
	s.Equal(models.DefaultCategoryIcon, found.Icon)
	s.Equal(models.DefaultCategoryColor, found.Color)
}

func (s *CategoryRepositorySuite) TestCreate_RejectsInvalid() {
	err := s.repo.Create(s.ctx, &models.Category{UserID: s.user.ID, Name: "   "})
	s.ErrorIs(err, models.ErrCategoryNameRequired)
}

func (s *CategoryRepositorySuite) TestGetByIDForUser_OtherOwner() {
	other := database.CreateTestUser(s.T(), s.db, "other@example.com")
	category := database.CreateTestCategory(s.T(), s.db, other.ID, "Travel")

	_, err := s.repo.GetByIDForUser(s.ctx, category.ID, s.user.ID)
	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *CategoryRepositorySuite) TestListByUser_SortedByName() {
	database.CreateTestCategory(s.T(), s.db, s.user.ID, "Travel")
	database.CreateTestCategory(s.T(), s.db, s.user.ID, "Bills")
	database.CreateTestCategory(s.T(), s.db, s.user.ID, "Food")
	other := database.CreateTestUser(s.T(), s.db, "other@example.com")
	database.CreateTestCategory(s.T(), s.db, other.ID, "Aardvark")

	categories, err := s.repo.ListByUser(s.ctx, s.user.ID)
	s.NoError(err)
	s.Require().Len(categories, 3)
	s.Equal("Bills", categories[0].Name)
	s.Equal("Food", categories[1].Name)
	s.Equal("Travel", categories[2].Name)
}

func (s *CategoryRepositorySuite) TestListByUser_Empty() {
	categories, err := s.repo.ListByUser(s.ctx, s.user.ID)
	s.NoError(err)
	s.NotNil(categories)
	s.Empty(categories)
}

func (s *CategoryRepositorySuite) TestGetByIDs_SkipsMissingAndForeign() {
	food := database.CreateTestCategory(s.T(), s.db, s.user.ID, "Food")
	other := database.CreateTestUser(s.T(), s.db, "other@example.com")
	foreign := database.CreateTestCategory(s.T(), s.db, other.ID, "Foreign")

	categories, err := s.repo.GetByIDs(s.ctx, s.user.ID, []uuid.UUID{food.ID, foreign.ID, uuid.New()})
	s.NoError(err)
	s.Require().Len(categories, 1)
	s.Equal(food.ID, categories[0].ID)

	categories, err = s.repo.GetByIDs(s.ctx, s.user.ID, nil)
	s.NoError(err)
	s.Empty(categories)
}

func (s *CategoryRepositorySuite) TestUpdateForUser() {
	category := database.CreateTestCategory(s.T(), s.db, s.user.ID, "Food")

	updated, err := s.repo.UpdateForUser(s.ctx, category.ID, s.user.ID, map[string]interface{}{
		"name":  "Groceries",
		"color": "#10B981",
	})
	s.NoError(err)
	s.Equal("Groceries", updated.Name)
	s.Equal("#10B981", updated.Color)
	s.Equal(models.DefaultCategoryIcon, updated.Icon)

	other := database.CreateTestUser(s.T(), s.db, "other@example.com")
	_, err = s.repo.UpdateForUser(s.ctx, category.ID, other.ID, map[string]interface{}{"name": "Stolen"})
	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *CategoryRepositorySuite) TestDeleteForUser() {
	category := database.CreateTestCategory(s.T(), s.db, s.user.ID, "Food")
	other := database.CreateTestUser(s.T(), s.db, "other@example.com")

	err := s.repo.DeleteForUser(s.ctx, category.ID, other.ID)
	s.ErrorIs(err, ErrCategoryNotFound)

	s.NoError(s.repo.DeleteForUser(s.ctx, category.ID, s.user.ID))

	_, err = s.repo.GetByIDForUser(s.ctx, category.ID, s.user.ID)
	s.ErrorIs(err, ErrCategoryNotFound)

	err = s.repo.DeleteForUser(s.ctx, category.ID, s.user.ID)
	s.ErrorIs(err, ErrCategoryNotFound)
}
