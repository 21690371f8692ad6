package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewAndMessage() {
	err := New(ErrCodeMalformedBar, "bar is malformed")

	suite.Equal("bar is malformed", err.Error())
	suite.Equal(ErrCodeMalformedBar, GetCode(err))
}

func (suite *ErrorTestSuite) TestWrapPreservesCause() {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrCodeQueryFailed, "query failed", cause)

	suite.True(HasCode(err, ErrCodeQueryFailed))
	suite.ErrorIs(err, cause)
	suite.Contains(err.Error(), "disk on fire")
}

func (suite *ErrorTestSuite) TestWrapfFormats() {
	cause := stderrors.New("boom")
	err := Wrapf(ErrCodeDataSourceUnavailable, cause, "failed to open %s", "range.parquet")

	suite.Contains(err.Error(), "range.parquet")
	suite.ErrorIs(err, cause)
}

func (suite *ErrorTestSuite) TestHasCodeThroughWrapping() {
	inner := Newf(ErrCodeNonMonotonicSeries, "bar %d out of order", 3)
	outer := fmt.Errorf("while reading instance: %w", inner)

	suite.True(HasCode(outer, ErrCodeNonMonotonicSeries))
	suite.False(HasCode(outer, ErrCodeMalformedBar))
	suite.Equal(ErrCodeNonMonotonicSeries, GetCode(outer))
}

func (suite *ErrorTestSuite) TestGetCodeDefaultsToUnknown() {
	suite.Equal(ErrCodeUnknown, GetCode(stderrors.New("plain")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorTestSuite) TestCategoryHelpers() {
	suite.True(IsDataError(New(ErrCodeMalformedBar, "bad bar")))
	suite.True(IsDataError(New(ErrCodeQueryFailed, "bad query")))
	suite.False(IsDataError(New(ErrCodeInvalidThreshold, "bad threshold")))

	suite.True(IsConfigError(New(ErrCodeInvalidStopFraction, "bad stop")))
	suite.False(IsConfigError(New(ErrCodeEmptyTradeSequence, "nothing to validate")))
}

func (suite *ErrorTestSuite) TestInsufficientSampleError() {
	err := NewInsufficientSampleErrorf(20, 7, "dow_Monday",
		"partition %s holds %d trades, need %d", "dow_Monday", 7, 20)

	suite.Contains(err.Error(), "dow_Monday")
	suite.Equal(20, err.Required)
	suite.Equal(7, err.Actual)
	suite.True(IsInsufficientSampleError(fmt.Errorf("wrapped: %w", err)))
}
