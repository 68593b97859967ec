package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/grimforge/initiative-api/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "campaign not found",
			expected: "NOT_FOUND: campaign not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "combatant name is required",
			expected: "INVALID_ARGUMENT: combatant name is required",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorWithMeta() {
	err := errors.NotFound("campaign not found").
		WithMeta("campaign_id", "lost-mines").
		WithMeta("combatant_id", "combatant_7")

	s.Assert().Equal("lost-mines", err.Meta["campaign_id"])
	s.Assert().Equal("combatant_7", err.Meta["combatant_id"])
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("redis connection refused")
	wrapped := errors.Wrap(baseErr, "failed to load campaign data")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Equal("failed to load campaign data", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	base := errors.NotFound("campaign not found")
	wrapped := errors.Wrap(base, "failed to switch campaign")

	s.Assert().Equal(errors.CodeNotFound, wrapped.Code)
	s.Assert().True(errors.IsNotFound(wrapped))
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	base := fmt.Errorf("key does not exist")
	wrapped := errors.WrapWithCode(base, errors.CodeNotFound, "campaign not found")

	s.Assert().Equal(errors.CodeNotFound, wrapped.Code)
	s.Assert().Equal(base, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "should stay nil"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should stay nil"))
}

func (s *ErrorsTestSuite) TestGetCode() {
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(errors.NotFound("missing")))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("plain error")))
}

func (s *ErrorsTestSuite) TestGetMessage() {
	s.Assert().Equal("", errors.GetMessage(nil))
	s.Assert().Equal("campaign not found", errors.GetMessage(errors.NotFound("campaign not found")))
	s.Assert().Equal("plain error", errors.GetMessage(fmt.Errorf("plain error")))
}

func (s *ErrorsTestSuite) TestTypeChecks() {
	s.Assert().True(errors.IsNotFound(errors.NotFound("x")))
	s.Assert().True(errors.IsInvalidArgument(errors.InvalidArgument("x")))
	s.Assert().True(errors.IsAlreadyExists(errors.AlreadyExists("x")))
	s.Assert().True(errors.IsFailedPrecondition(errors.FailedPrecondition("x")))
	s.Assert().False(errors.IsNotFound(errors.Internal("x")))
	s.Assert().False(errors.IsNotFound(nil))
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	s.Assert().Equal(404, errors.CodeNotFound.HTTPStatus())
	s.Assert().Equal(400, errors.CodeInvalidArgument.HTTPStatus())
	s.Assert().Equal(409, errors.CodeAlreadyExists.HTTPStatus())
	s.Assert().Equal(412, errors.CodeFailedPrecondition.HTTPStatus())
	s.Assert().Equal(500, errors.CodeInternal.HTTPStatus())
	s.Assert().Equal(500, errors.Code("BOGUS").HTTPStatus())
}
