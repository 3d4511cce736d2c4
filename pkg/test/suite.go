// Package test provides testing utilities for the event-aggregator.
//
// This package includes:
//   - Suite: Base test suite with context and testify integration
//   - RequireIntegration: env gate for container-backed tests
//
// Usage:
//
//	import "github.com/chris-alexander-pop/event-aggregator/pkg/test"
//
//	type MyTestSuite struct {
//		test.Suite
//	}
//
//	func (s *MyTestSuite) TestSomething() {
//		s.NoError(doSomething(s.Ctx))
//	}
//
//	func TestMySuite(t *testing.T) {
//		test.Run(t, new(MyTestSuite))
//	}
package test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
)

// Suite wraps testify's suite with a per-test context.
type Suite struct {
	suite.Suite
	Ctx context.Context
}

// SetupTest is called before each test in the suite.
func (s *Suite) SetupTest() {
	s.Ctx = context.Background()
}

// Run is a helper function to run a suite from a standard Test* function.
func Run(t *testing.T, s suite.TestingSuite) {
	suite.Run(t, s)
}

// RequireIntegration skips the test unless TEST_INTEGRATION is set.
// Integration suites start real brokers/databases in containers and are not
// part of the default unit run.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION=1 to run container-backed tests")
	}
}
