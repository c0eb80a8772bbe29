package testutil

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/storage"
)

// IntegrationTestSuite is the base of end-to-end suites: a scratch
// directory shared by the suite and a storage opener per test.
type IntegrationTestSuite struct {
	suite.Suite

	ctx     context.Context
	cancel  context.CancelFunc
	dir     string
	started time.Time
	opener  *storage.Opener
}

// SetupSuite creates the scratch directory and a five minute deadline.
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.started = time.Now()

	dir, err := os.MkdirTemp("", "tidify-test-*")
	require.NoError(s.T(), err)
	s.dir = dir
}

// TearDownSuite removes the scratch directory.
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()
	if s.dir != "" {
		_ = os.RemoveAll(s.dir)
	}
	s.T().Logf("suite completed in %v", time.Since(s.started))
}

// TearDownTest releases the opener handed out by Deps.
func (s *IntegrationTestSuite) TearDownTest() {
	if s.opener != nil {
		_ = s.opener.Close()
		s.opener = nil
	}
}

// Context returns the suite context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// Deps returns connector dependencies logging to the current test.
func (s *IntegrationTestSuite) Deps() core.Deps {
	logger := zaptest.NewLogger(s.T())
	if s.opener == nil {
		s.opener = storage.NewOpener(storage.Options{}, logger)
	}
	return core.Deps{Storage: s.opener, Logger: logger}
}

// Path returns name inside the scratch directory.
func (s *IntegrationTestSuite) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// CreateTempFile writes content to name in the scratch directory.
func (s *IntegrationTestSuite) CreateTempFile(name, content string) string {
	path := s.Path(name)
	require.NoError(s.T(), os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ReadFile returns the contents of name in the scratch directory.
func (s *IntegrationTestSuite) ReadFile(name string) string {
	data, err := os.ReadFile(s.Path(name))
	require.NoError(s.T(), err)
	return string(data)
}
