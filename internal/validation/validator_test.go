package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
	v *Validator
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}

func (s *ValidatorTestSuite) SetupTest() {
	s.v = NewValidator()
}

type amountPayload struct {
	Amount json.Number `json:"amount" validate:"required,decimal_gt0"`
}

type periodPayload struct {
	Month int `json:"month" validate:"required,month"`
	Year  int `json:"year" validate:"required,budget_year"`
}

type titlePayload struct {
	Title *string `json:"title" validate:"omitempty,notblank,max=10"`
}

func (s *ValidatorTestSuite) TestDecimalGreaterThanZero() {
	testCases := []struct {
		amount string
		valid  bool
	}{
		{"12.50", true},
		{"0.01", true},
		{"1000", true},
		{"0", false},
		{"-5", false},
		{"1.005", false},
		{"abc", false},
	}

	for _, tc := range testCases {
		s.Run(tc.amount, func() {
			err := s.v.Struct(amountPayload{Amount: json.Number(tc.amount)})
			if tc.valid {
				s.NoError(err)
			} else {
				s.Error(err)
			}
		})
	}
}

func (s *ValidatorTestSuite) TestMonthAndYear() {
	s.NoError(s.v.Struct(periodPayload{Month: 1, Year: 1970}))
	s.NoError(s.v.Struct(periodPayload{Month: 12, Year: 9999}))
	s.Error(s.v.Struct(periodPayload{Month: 13, Year: 2024}))
	s.Error(s.v.Struct(periodPayload{Month: 3, Year: 1969}))
}

func (s *ValidatorTestSuite) TestNotBlank_OnOptionalPointer() {
	s.NoError(s.v.Struct(titlePayload{}))

	blank := "   "
	s.Error(s.v.Struct(titlePayload{Title: &blank}))

	ok := "Lunch"
	s.NoError(s.v.Struct(titlePayload{Title: &ok}))
}

func (s *ValidatorTestSuite) TestFormatErrors_UsesJSONNames() {
	err := s.v.Struct(periodPayload{Month: 13, Year: 2024})
	s.Require().Error(err)

	details := FormatErrors(err)
	s.Equal([]string{"month: must be between 1 and 12"}, details)
}

func (s *ValidatorTestSuite) TestGetValidator_Shared() {
	s.Same(GetValidator(), GetValidator())
}
