package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.Require().NoError(err)
	suite.NotNil(logger.Logger)
}

func (suite *LoggerTestSuite) TestSyncNilInnerLogger() {
	logger := &Logger{Logger: nil}
	suite.NoError(logger.Sync())
}

func (suite *LoggerTestSuite) TestNopLoggerDiscards() {
	logger := NewNopLogger()
	suite.NotNil(logger.Logger)

	// must not panic
	logger.Info("discarded", zap.String("key", "value"))
	logger.Debug("discarded")
	suite.NoError(logger.Sync())
}
